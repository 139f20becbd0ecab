package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing
func setupEnv(t *testing.T, envVars map[string]string) func() {
	// Save current environment values
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	// Set new environment variables
	for name, value := range envVars {
		err := os.Setenv(name, value)
		require.NoError(t, err, "Failed to set environment variable %s", name)
	}

	// Return cleanup function
	return func() {
		// Restore original environment
		for name, value := range originalValues {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	}
}

// TestLoadDefaults verifies that Load applies the documented defaults when no
// environment variables are set.
func TestLoadDefaults(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"COMIX_SERVER_PORT":           "",
		"COMIX_SERVER_LOG_LEVEL":      "",
		"COMIX_RUNTIME_WORKER_COUNT":  "",
		"COMIX_ENGINE_HASH_ALGORITHM": "",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.Equal(t, 8080, cfg.Server.Port, "Default server port should be 8080")
	assert.Equal(t, "info", cfg.Server.LogLevel, "Default log level should be 'info'")
	assert.Equal(t, ".", cfg.Server.LibraryRoot)
	assert.Equal(t, 2, cfg.Runtime.WorkerCount)
	assert.Equal(t, 64, cfg.Runtime.QueueSize)
	assert.False(t, cfg.Runtime.Inline)
	assert.Equal(t, "blake2b", cfg.Engine.HashAlgorithm)
	assert.Equal(t, "catmullrom", cfg.Engine.ResizeFilter)
	assert.Equal(t, 64<<20, cfg.Engine.MaxImagePixels)
	assert.Equal(t, int64(256<<20), cfg.Engine.MaxEntryBytes)
}

// TestLoadFromEnv verifies that the Load function correctly reads values from environment variables.
func TestLoadFromEnv(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"COMIX_SERVER_PORT":           "9090",
		"COMIX_SERVER_LOG_LEVEL":      "debug",
		"COMIX_RUNTIME_WORKER_COUNT":  "0",
		"COMIX_RUNTIME_INLINE":        "true",
		"COMIX_ENGINE_HASH_ALGORITHM": "blake3",
		"COMIX_ENGINE_RESIZE_FILTER":  "bilinear",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with valid environment variables")
	require.NotNil(t, cfg)
	assert.Equal(t, 9090, cfg.Server.Port, "Server port should be loaded from environment variables")
	assert.Equal(t, "debug", cfg.Server.LogLevel, "Log level should be loaded from environment variables")
	assert.Equal(t, 0, cfg.Runtime.WorkerCount)
	assert.True(t, cfg.Runtime.Inline)
	assert.Equal(t, "blake3", cfg.Engine.HashAlgorithm)
	assert.Equal(t, "bilinear", cfg.Engine.ResizeFilter)
}

// TestLoadFile verifies that values from a config file are used and that
// environment variables still take precedence.
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "comix.yaml")
	content := []byte("server:\n  port: 7070\n  library_root: /srv/comics\nruntime:\n  queue_size: 8\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cleanup := setupEnv(t, map[string]string{
		"COMIX_SERVER_PORT":        "",
		"COMIX_RUNTIME_QUEUE_SIZE": "16",
	})
	defer cleanup()

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/comics", cfg.Server.LibraryRoot)
	assert.Equal(t, 16, cfg.Runtime.QueueSize, "environment should override the file")
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
	assert.Nil(t, cfg)
}

// TestLoadValidationErrors verifies that the Load function correctly validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Invalid port number",
			envVars: map[string]string{"COMIX_SERVER_PORT": "999999"},
		},
		{
			name:    "Invalid log level",
			envVars: map[string]string{"COMIX_SERVER_LOG_LEVEL": "invalid-level"},
		},
		{
			name:    "Negative worker count",
			envVars: map[string]string{"COMIX_RUNTIME_WORKER_COUNT": "-1"},
		},
		{
			name:    "Zero queue size",
			envVars: map[string]string{"COMIX_RUNTIME_QUEUE_SIZE": "0"},
		},
		{
			name:    "Unknown hash algorithm",
			envVars: map[string]string{"COMIX_ENGINE_HASH_ALGORITHM": "md5"},
		},
		{
			name:    "Unknown resize filter",
			envVars: map[string]string{"COMIX_ENGINE_RESIZE_FILTER": "lanczos"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanup := setupEnv(t, tc.envVars)
			defer cleanup()

			cfg, err := Load()

			assert.Error(t, err, "Load() should return an error with invalid configuration")
			if err != nil {
				assert.Contains(t, err.Error(), "validation failed")
			}
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}
