// Package config loads the server configuration from YAML with environment
// overrides for the settings most often changed per deployment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAppVersion is stamped into every save. A save written by a
// different app version is discarded on load.
const DefaultAppVersion = "1.0.0"

type Config struct {
	AppVersion string           `yaml:"app_version" json:"app_version"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Entropy    EntropyConfig    `yaml:"entropy" json:"entropy"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

type ServerConfig struct {
	Port     int    `yaml:"port" json:"port"`
	AdminKey string `yaml:"admin_key" json:"-"`

	// Per-client token bucket for mutating endpoints.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" json:"rate_burst"`
}

type StorageConfig struct {
	// Path of the SQLite file. "memory" keeps state in process only.
	Path string `yaml:"path" json:"path"`
	Key  string `yaml:"key" json:"key"`
}

type SimulationConfig struct {
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval"`
	SaveInterval time.Duration `yaml:"save_interval" json:"save_interval"`

	// Seed, when non-zero, makes event selection reproducible.
	Seed uint64 `yaml:"seed" json:"seed"`
}

type EntropyConfig struct {
	RandomOrgKey string `yaml:"random_org_key" json:"-"`
	Batch        int    `yaml:"batch" json:"batch"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// InMemory reports whether the store should live in process memory.
func (s StorageConfig) InMemory() bool {
	return s.Path == "memory"
}

func (s *ServerConfig) ApplyDefaults() {
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.RateLimit == 0 {
		s.RateLimit = 5
	}
	if s.RateBurst == 0 {
		s.RateBurst = 10
	}
}

func (s *StorageConfig) ApplyDefaults() {
	if s.Path == "" {
		s.Path = "data/commons.db"
	}
	if s.Key == "" {
		s.Key = "commons_state"
	}
}

func (s *SimulationConfig) ApplyDefaults() {
	if s.TickInterval <= 0 {
		s.TickInterval = 5 * time.Second
	}
	if s.SaveInterval <= 0 {
		s.SaveInterval = 60 * time.Second
	}
}

func (e *EntropyConfig) ApplyDefaults() {
	if e.Batch == 0 {
		e.Batch = 100
	}
}

func (l *LogConfig) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

func (c *Config) ApplyDefaults() {
	if c.AppVersion == "" {
		c.AppVersion = DefaultAppVersion
	}
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Simulation.ApplyDefaults()
	c.Entropy.ApplyDefaults()
	c.Log.ApplyDefaults()
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

// Load reads path, applies environment overrides and fills defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	var r Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &r); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := r.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("COMMONS_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := getenv("COMMONS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COMMONS_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("COMMONS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("COMMONS_ADMIN_KEY"); v != "" {
		c.Server.AdminKey = v
	}
	if v := getenv("RANDOM_ORG_KEY"); v != "" {
		c.Entropy.RandomOrgKey = v
	}
	return nil
}

// SlogLevel maps the configured level name to a slog level. Unknown names
// fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
