package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewDefaultsToInfo(t *testing.T) {
	logger, err := New(Options{Level: "bogus"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.log")
	logger, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("cart saved")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "cart saved")
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, OrNop(nil))
}
