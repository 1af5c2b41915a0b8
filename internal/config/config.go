package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/phlp/studeval/internal/ui/styles"
)

// Config holds the studeval application configuration.
type Config struct {
	BaseDir      string        `toml:"base_dir"`
	Shell        []string      `toml:"shell"`
	Placeholder  string        `toml:"placeholder"`
	DrainTimeout time.Duration `toml:"drain_timeout"`
	KillGrace    time.Duration `toml:"kill_grace"`
	Theme        string        `toml:"theme"`
}

// DefaultPlaceholder is the URL template token replaced by the index.
const DefaultPlaceholder = "{{number}}"

// Default returns the default configuration.
func Default() Config {
	return Config{
		Placeholder:  DefaultPlaceholder,
		DrainTimeout: 2 * time.Second,
		KillGrace:    500 * time.Millisecond,
	}
}

// BaseDirFor returns the configured base directory, or the directory of
// sheetPath when none is configured.
func (c *Config) BaseDirFor(sheetPath string) (string, error) {
	if c.BaseDir != "" {
		return c.BaseDir, nil
	}
	abs, err := filepath.Abs(sheetPath)
	if err != nil {
		return "", err
	}
	return filepath.Dir(abs), nil
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the path to the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "studeval", "config.toml"), nil
}

// Load reads config from ~/.config/studeval/config.toml and applies
// environment overrides.
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return applyEnv(Default())
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path, see Load.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg)
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnv(cfg)
}

// applyEnv applies environment overrides, then validates and normalizes.
func applyEnv(cfg Config) (Config, error) {
	if dir := os.Getenv("STUDEVAL_BASE_DIR"); dir != "" {
		cfg.BaseDir = dir
	}
	if shell := strings.Fields(os.Getenv("STUDEVAL_SHELL")); len(shell) > 0 {
		cfg.Shell = shell
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}

	// Expand ~ in base_dir (shell doesn't expand in config files)
	expanded, err := expandPath(cfg.BaseDir)
	if err != nil {
		return Default(), fmt.Errorf("expand base_dir: %w", err)
	}
	cfg.BaseDir = expanded

	if strings.TrimSpace(cfg.Placeholder) == "" {
		cfg.Placeholder = DefaultPlaceholder
	}
	def := Default()
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = def.DrainTimeout
	}
	if cfg.KillGrace == 0 {
		cfg.KillGrace = def.KillGrace
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if err := ValidatePath(c.BaseDir, "base_dir"); err != nil {
		return err
	}
	if err := checkDuration("drain_timeout", c.DrainTimeout); err != nil {
		return err
	}
	if err := checkDuration("kill_grace", c.KillGrace); err != nil {
		return err
	}
	for i, arg := range c.Shell {
		if strings.TrimSpace(arg) == "" {
			return fmt.Errorf("shell[%d] is blank", i)
		}
	}
	return checkOneOf("theme", c.Theme, styles.Names())
}

const defaultConfig = `# studeval configuration

# Base directory for cloned repositories and evaluation data.
# Repositories go to <base_dir>/repos/<NNN>, evaluations to
# <base_dir>/evaluations/<sheet-title>/<NNN>.
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# Leave unset to use the directory of the evaluation sheet.
# base_dir = "~/grading"

# Shell used to run category commands. The command string is appended
# as the last argument.
# shell = ["/bin/sh", "-c"]

# Token in repository_url_template replaced by the zero-padded number
# when a sheet does not set repository_number_placeholder.
placeholder = "{{number}}"

# How long to wait for output after a command exited, and how long a
# cancelled command may take to exit before it is killed.
drain_timeout = "2s"
kill_grace = "500ms"

# Color theme: "default", "nord" or "none"
# theme = "default"
`

// Init creates a default config file at ~/.config/studeval/config.toml
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}
	return path, nil
}
