// FILE: logtide-go/loader_test.go
package logtide

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logtide.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadOptions_FromFile(t *testing.T) {
	path := writeConfig(t, `
api_url = "https://logs.example.com"
api_key = "file-key"
batch_size = 25
flush_interval = 2000
drop_policy = "oldest"
debug = true
`)

	opts, err := LoadOptions(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://logs.example.com", opts.APIURL)
	assert.Equal(t, "file-key", opts.APIKey)
	assert.Equal(t, int64(25), opts.BatchSize)
	assert.Equal(t, int64(2000), opts.FlushIntervalMS)
	assert.Equal(t, "oldest", opts.DropPolicy)
	assert.True(t, opts.Debug)

	// Unset keys fall back to the documented defaults
	assert.Equal(t, int64(10000), opts.MaxBufferSize)
	assert.Equal(t, int64(3), opts.MaxRetries)
}

func TestLoadOptions_InvalidFileValues(t *testing.T) {
	path := writeConfig(t, `
api_url = "https://logs.example.com"
api_key = "k"
drop_policy = "everything"
`)

	_, err := LoadOptions(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drop_policy")
}

func TestLoadOptions_MissingCredentialsFail(t *testing.T) {
	path := writeConfig(t, `
batch_size = 10
`)

	_, err := LoadOptions(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_url")
}

func TestConfigPath(t *testing.T) {
	t.Run("explicit absolute file wins", func(t *testing.T) {
		t.Setenv("LOGTIDE_CONFIG_FILE", "/etc/logtide/options.toml")
		t.Setenv("LOGTIDE_CONFIG_DIR", "/ignored")
		assert.Equal(t, "/etc/logtide/options.toml", ConfigPath())
	})

	t.Run("relative file joins config dir", func(t *testing.T) {
		t.Setenv("LOGTIDE_CONFIG_FILE", "options.toml")
		t.Setenv("LOGTIDE_CONFIG_DIR", "/opt/logtide")
		assert.Equal(t, filepath.Join("/opt/logtide", "options.toml"), ConfigPath())
	})

	t.Run("dir alone uses default name", func(t *testing.T) {
		t.Setenv("LOGTIDE_CONFIG_FILE", "")
		t.Setenv("LOGTIDE_CONFIG_DIR", "/opt/logtide")
		assert.Equal(t, filepath.Join("/opt/logtide", "logtide.toml"), ConfigPath())
	})

	t.Run("falls back to home config", func(t *testing.T) {
		t.Setenv("LOGTIDE_CONFIG_FILE", "")
		t.Setenv("LOGTIDE_CONFIG_DIR", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "logtide.toml"), ConfigPath())
	})
}
