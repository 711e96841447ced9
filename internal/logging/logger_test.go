package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "notifeed.log")

	logger, err := New(Options{File: path, Level: "debug"})
	require.NoError(t, err)
	logger.Debug("fetch started")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"msg":"fetch started"`), string(data))
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifeed.log")

	logger, err := New(Options{File: path, Level: "warn"})
	require.NoError(t, err)
	logger.Info("quiet")
	logger.Warn("loud")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "quiet")
	require.Contains(t, string(data), "loud")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	require.Error(t, err)
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("dropped")
}
