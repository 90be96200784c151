package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewJSONLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Options{Level: "debug", Format: "json", Output: buf})
	require.NoError(t, err)

	logger.Debug("collector finished", zap.String("collector", "user-agent"))
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "wvdetect", entry["logger"])
	assert.Equal(t, "user-agent", entry["collector"])
}

func TestNewRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Options{Level: "warn", Format: "console", Output: buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "shown"))
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)

	_, err = New(Options{Format: "xml"})
	require.ErrorContains(t, err, "unsupported log format")
}
