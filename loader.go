// FILE: logtide-go/loader.go
package logtide

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// LoadOptions builds Options from a TOML file, LOGTIDE_* environment
// variables and CLI-style args, in CLI > env > file > default precedence.
// A missing file is not an error; the other sources still apply.
func LoadOptions(path string, args []string) (*Options, error) {
	defaults := DefaultOptions("", "")

	cfg, err := lconfig.NewBuilder().
		WithDefaults(&defaults).
		WithEnvPrefix("LOGTIDE_").
		WithFile(path).
		WithArgs(args).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load options: %w", err)
		}
	}

	opts := &Options{}
	if err := cfg.Scan(opts); err != nil {
		return nil, fmt.Errorf("failed to scan options: %w", err)
	}

	opts.normalize()
	return opts, opts.validate()
}

// ConfigPath resolves the default options file location from
// LOGTIDE_CONFIG_FILE and LOGTIDE_CONFIG_DIR, falling back to
// ~/.config/logtide.toml
func ConfigPath() string {
	if configFile := os.Getenv("LOGTIDE_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGTIDE_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGTIDE_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logtide.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logtide.toml")
	}

	return "logtide.toml"
}
