package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(level LogLevel) (*RolefixLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := NewLogger(&LoggerConfig{
		Level:  level,
		Format: "json",
		Output: buf,
	})
	return logger, buf
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	assert.Empty(t, buf.String(), "messages below the level should be suppressed")

	logger.Warn(ctx, nil, "warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestLoggerFields(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)
	ctx := context.Background()

	logger.With("dry_run", true).Info(ctx, "would rename", "role", "my-role", "new_name", "my_role")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "would rename", entry["msg"])
	assert.Equal(t, true, entry["dry_run"])
	assert.Equal(t, "my-role", entry["role"])
	assert.Equal(t, "my_role", entry["new_name"])
}

func TestLoggerWithComponent(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)

	logger.WithComponent("scanner").Info(context.Background(), "scan complete")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scanner", entry["component"])
}

func TestLoggerErrorField(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo)

	logger.Error(context.Background(), errors.New("boom"), "rename failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}

func TestLoggerDefaults(t *testing.T) {
	logger := NewLogger(nil)
	assert.NotNil(t, logger)
	assert.Equal(t, LevelInfo, logger.level)
}
