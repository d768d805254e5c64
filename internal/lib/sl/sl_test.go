package sl_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/techwatch-auth/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "error", attr.Key)
	})
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	log := sl.SetupLogger("production", &buf)
	log.Debug("hidden")
	log.Info("shown", sl.Err(errors.New("boom")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "boom", entry["error"])

	buf.Reset()
	log = sl.SetupLogger("local", &buf)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
