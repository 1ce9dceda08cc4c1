package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLoggerLevelFiltering(t *testing.T) {
	logger := NewLogger(LevelWarn)

	// Should not panic at any level; filtering happens internally.
	logger.Debug("debug %s", "message")
	logger.Info("info %s", "message")
	logger.Warn("warn %s", "message")
	logger.Error("error %s", "message")

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.level)
}
