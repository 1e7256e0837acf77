package logger

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, logLevel("", ""))
	assert.Equal(t, zerolog.DebugLevel, logLevel("dev", ""))
	assert.Equal(t, zerolog.ErrorLevel, logLevel("dev", "error"))
	assert.Equal(t, zerolog.WarnLevel, logLevel("", "WARN"))
	// Garbage falls back to the environment default.
	assert.Equal(t, zerolog.InfoLevel, logLevel("", "loud"))
}
