// Package onetime produces the random secrets mailed for email verification
// and password reset, and the digests stored in their place.
package onetime

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Size is the number of random bytes in a raw code (256 bits).
const Size = 32

// Generate returns a hex-encoded random code and its digest.
// Only the digest may be persisted.
func Generate() (raw, digest string, err error) {
	const op = "onetime.Generate"
	buf := make([]byte, Size)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	raw = hex.EncodeToString(buf)
	return raw, Digest(raw), nil
}

// Digest returns the hex-encoded SHA-256 of raw.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
