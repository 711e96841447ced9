package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig describes how to reach the notifications service.
type ServerConfig struct {
	// BaseURL is the root URL of the service (e.g., https://api.example.com).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every request to the service.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how many times a rate-limited (429) request is retried.
	// Zero disables retries.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// Timeout returns TimeoutSec as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// LogConfig holds logging preferences.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DevServerConfig holds settings for the local development server.
type DevServerConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
	Token  string `mapstructure:"token" yaml:"token"`
	Seed   int    `mapstructure:"seed" yaml:"seed"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	DevServer DevServerConfig `mapstructure:"devserver" yaml:"devserver"`
}

// ConfigDir returns ~/.config/notifeed, or the working directory when the
// home directory cannot be determined.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notifeed")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/notifeed/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:    "http://localhost:8080",
			TimeoutSec: 15,
		},
		Log: LogConfig{
			File:  filepath.Join(ConfigDir(), "notifeed.log"),
			Level: "info",
		},
		DevServer: DevServerConfig{
			Addr:   ":8080",
			DBPath: filepath.Join(ConfigDir(), "devserver.db"),
			Token:  "dev-token",
			Seed:   12,
		},
	}
}

// newViper returns a viper instance with defaults and NOTIFEED_* environment
// overrides (e.g., NOTIFEED_SERVER_BASE_URL).
func newViper(path string) *viper.Viper {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("notifeed")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.base_url", def.Server.BaseURL)
	v.SetDefault("server.timeout_sec", def.Server.TimeoutSec)
	v.SetDefault("server.max_retries", def.Server.MaxRetries)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("devserver.addr", def.DevServer.Addr)
	v.SetDefault("devserver.db_path", def.DevServer.DBPath)
	v.SetDefault("devserver.token", def.DevServer.Token)
	v.SetDefault("devserver.seed", def.DevServer.Seed)
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults (plus environment overrides) are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	if cfg.Server.TimeoutSec <= 0 {
		cfg.Server.TimeoutSec = 15
	}
	if cfg.Server.MaxRetries < 0 {
		cfg.Server.MaxRetries = 0
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", map[string]any{
		"base_url":    cfg.Server.BaseURL,
		"timeout_sec": cfg.Server.TimeoutSec,
		"max_retries": cfg.Server.MaxRetries,
	})
	v.Set("log", map[string]any{
		"file":  cfg.Log.File,
		"level": cfg.Log.Level,
	})
	v.Set("devserver", map[string]any{
		"addr":    cfg.DevServer.Addr,
		"db_path": cfg.DevServer.DBPath,
		"token":   cfg.DevServer.Token,
		"seed":    cfg.DevServer.Seed,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
