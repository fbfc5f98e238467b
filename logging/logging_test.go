package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfig(t *testing.T) {
	cfg, err := Config("debug", "console")
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Encoding)
	assert.True(t, cfg.Level.Enabled(zapcore.DebugLevel))

	cfg, err = Config("warn", "")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Encoding)
	assert.False(t, cfg.Level.Enabled(zapcore.InfoLevel))
	assert.True(t, cfg.Level.Enabled(zapcore.ErrorLevel))
}

func TestConfigRejectsUnknownValues(t *testing.T) {
	_, err := Config("loud", "json")
	require.Error(t, err)

	_, err = Config("info", "xml")
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	log, err := New("info", "json")
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
