package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "production", &buf).WithFields(map[string]interface{}{"component": "auth"})

	log.Debug("hidden", nil)
	log.Info("login succeeded", map[string]interface{}{"user_id": "u-1"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "login succeeded", entry["message"])
	assert.Equal(t, "auth", entry["component"])
	assert.Equal(t, "u-1", entry["user_id"])
	assert.NotEmpty(t, entry["time"])
}

func TestWithFieldsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := New("debug", "production", &buf)
	_ = base.WithFields(map[string]interface{}{"request_id": "r-1"})

	base.Warn("plain", nil)
	assert.NotContains(t, buf.String(), "request_id")
}

func TestParseLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("ERROR", "production", &buf)
	log.Warn("dropped", nil)
	assert.Empty(t, buf.String())
	log.Error("kept", nil)
	assert.Contains(t, buf.String(), "kept")
}

func TestDevelopmentConsole(t *testing.T) {
	var buf bytes.Buffer
	New("info", "development", &buf).Info("hello", map[string]interface{}{"port": ":8080"})
	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))))
}
