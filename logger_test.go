package typedprefs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(&buf, LogLevelDebug)

	logger.Debug("Debug message", "arg1", 123)
	logger.Info("Info message")
	logger.Warn("Warn message", "key_warn", "val_warn")
	logger.Error("Error message", "key_err", "val_err")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var records []map[string]any
	for _, line := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}

	assert.Equal(t, "DEBUG", records[0]["level"])
	assert.Equal(t, "Debug message", records[0]["msg"])
	assert.Equal(t, float64(123), records[0]["arg1"])
	assert.Equal(t, "INFO", records[1]["level"])
	assert.Equal(t, "val_warn", records[2]["key_warn"])
	assert.Equal(t, "ERROR", records[3]["level"])
}

func TestSlogLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(&buf, LogLevelInfo)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.SetLevel(LogLevelDebug)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger.SetLevel(LogLevelError)
	logger.Warn("hidden")
	assert.Empty(t, buf.String())
}

func TestNewDefaultLogger(t *testing.T) {
	assert.NotNil(t, NewDefaultLogger())
}
