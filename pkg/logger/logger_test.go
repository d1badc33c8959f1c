package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, levelFromString("DEBUG"))
	require.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	require.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	require.Equal(t, zapcore.InfoLevel, levelFromString("nonsense"))
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventhub.log")
	log, err := Init(Config{Level: "info", File: path})
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Info("hello")
	_ = log.Sync()
}
