// Package client is the tareas API client and the session/task state the
// CLI and terminal UI are driven by.
package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AppName       = "tareas"
	ConfigFile    = "config.yaml"
	TokenFile     = "token"
	DefaultAPIURL = "http://localhost:8080"

	apiURLEnv = "TAREAS_API_URL"
)

type Config struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`

	// Dir is where the config and token files live.
	Dir string `yaml:"-"`
}

// DefaultConfigDir uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// LoadConfig reads config.yaml from dir (the default dir when empty). A
// missing file is not an error. TAREAS_API_URL overrides the file.
func LoadConfig(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{APIURL: DefaultAPIURL, Timeout: 10 * time.Second, Dir: dir}

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	if url := os.Getenv(apiURLEnv); url != "" {
		cfg.APIURL = url
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.Dir = dir
	return cfg, nil
}

func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// Save writes the config file, creating the directory with mode 0700.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Dir, ConfigFile), data, 0o600)
}
