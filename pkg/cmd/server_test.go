package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunCommand_InitLoggerFails(t *testing.T) {
	flags := &cmdFlags{
		LogLevel: "WrongLogLevel",
	}

	err := RunCommand(t.Context(), flags)
	assert.ErrorContains(t, err, "failed to init logger")
}

func TestRunCommand_Success(t *testing.T) {
	tmpDir := t.TempDir()

	t.Setenv("API_LISTEN", "127.0.0.1:0")
	t.Setenv("URL_INDEX_FILE_PATH", filepath.Join(tmpDir, "index.txt"))
	t.Setenv("SEED_URLS_FILE_PATH", filepath.Join(tmpDir, "seeds.txt"))
	t.Setenv("STOP_CRAWLER", "true")

	ctx, cancel := context.WithCancel(t.Context())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := RunCommand(ctx, &cmdFlags{LogLevel: "info"})
	assert.NoError(t, err, "expected RunCommand to succeed with valid configuration")
}

func TestRunCommand_LoadConfigFails(t *testing.T) {
	flags := &cmdFlags{
		LogLevel:   "info",
		ConfigPath: "/nonexistent/path/config.yaml",
	}

	err := RunCommand(t.Context(), flags)
	assert.ErrorContains(t, err, "failed to load config")
}

func TestRunCommand_InvalidListenAddress(t *testing.T) {
	tmpDir := t.TempDir()

	t.Setenv("API_LISTEN", "")
	t.Setenv("URL_INDEX_FILE_PATH", filepath.Join(tmpDir, "index.txt"))
	t.Setenv("SEED_URLS_FILE_PATH", filepath.Join(tmpDir, "seeds.txt"))
	t.Setenv("STOP_CRAWLER", "true")

	err := RunCommand(t.Context(), &cmdFlags{LogLevel: "info"})
	assert.Error(t, err)
}

