package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")

	log, err := New(Config{Level: "DEBUG", Encoding: "json", OutputPath: path})
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	log.Info("story loaded")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"story loaded"`)
	assert.Contains(t, string(data), `"level":"INFO"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNewFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "chatty", Encoding: "xml", OutputPath: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}
