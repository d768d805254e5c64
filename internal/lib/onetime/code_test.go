package onetime_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/techwatch-auth/internal/lib/onetime"
)

func TestGenerate(t *testing.T) {
	raw, digest, err := onetime.Generate()
	require.NoError(t, err)

	decoded, err := hex.DecodeString(raw)
	require.NoError(t, err)
	assert.Len(t, decoded, onetime.Size)

	assert.Len(t, digest, 64)
	assert.NotEqual(t, raw, digest)
	assert.Equal(t, onetime.Digest(raw), digest)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		raw, _, err := onetime.Generate()
		require.NoError(t, err)
		_, dup := seen[raw]
		require.False(t, dup, "duplicate code generated")
		seen[raw] = struct{}{}
	}
}

func TestDigest_KnownValue(t *testing.T) {
	// sha256("abc")
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		onetime.Digest("abc"))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "same", a: onetime.Digest("x"), b: onetime.Digest("x"), want: true},
		{name: "different", a: onetime.Digest("x"), b: onetime.Digest("y"), want: false},
		{name: "different length", a: "abc", b: "abcd", want: false},
		{name: "both empty", a: "", b: "", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, onetime.Equal(tt.a, tt.b))
		})
	}
}
