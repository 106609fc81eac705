package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied by Load when a field is absent from the file.
const (
	DefaultPageSize        = 10
	DefaultScrollThreshold = 3
	DefaultCooldown        = time.Second
)

// Config represents the global ~/.siteline/config.toml.
type Config struct {
	DefaultProfile  string `toml:"default_profile"`
	ServerURL       string `toml:"server_url"`
	PageSize        int    `toml:"page_size"`
	ScrollThreshold int    `toml:"scroll_threshold"`
	CooldownMS      int    `toml:"cooldown_ms"`
}

// Cooldown returns the pagination cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	if c.CooldownMS <= 0 {
		return DefaultCooldown
	}
	return time.Duration(c.CooldownMS) * time.Millisecond
}

// Load reads config from the given path and applies defaults.
// Returns an error if the file is missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with all defaults applied and no server URL.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.ScrollThreshold <= 0 {
		c.ScrollThreshold = DefaultScrollThreshold
	}
	if c.CooldownMS <= 0 {
		c.CooldownMS = int(DefaultCooldown / time.Millisecond)
	}
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
