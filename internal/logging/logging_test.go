package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "cyberdefender.log")
	logger, err := New(path, true)
	require.NoError(t, err)

	logger.Debug("fallback used", zap.String("kind", "documents"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"documents"`)
	assert.Contains(t, string(data), "fallback used")
}

func TestNewDefaultLevelSkipsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cyberdefender.log")
	logger, err := New(path, false)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewEmptyPathIsNop(t *testing.T) {
	logger, err := New("", false)
	require.NoError(t, err)
	require.NotNil(t, logger)
}
