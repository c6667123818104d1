/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/munindb/munin/pkg/store"
)

// Config represents the MuninDB configuration
type Config struct {
	Store   Store   `yaml:"store"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Store contains the store geometry, fixed for the lifetime of the
// process
type Store struct {
	PageSize  int `yaml:"page_size"`
	MaxRecids int `yaml:"max_recids"`
	ArenaSize int `yaml:"arena_size"`
}

// Server contains the REST API configuration
type Server struct {
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration: 1 KiB pages, 100k
// recids, a 64 MiB arena, server on localhost:8080
func DefaultConfig() *Config {
	geometry := store.DefaultConfig()
	return &Config{
		Store: Store{
			PageSize:  geometry.PageSize,
			MaxRecids: geometry.MaxRecids,
			ArenaSize: geometry.ArenaSize,
		},
		Server: Server{
			Bind: "127.0.0.1",
			Port: 8080,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// StoreConfig converts the store section into the geometry the store
// constructor takes
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		PageSize:  c.Store.PageSize,
		MaxRecids: c.Store.MaxRecids,
		ArenaSize: c.Store.ArenaSize,
	}
}

// Validate checks the whole configuration, geometry included
func (c *Config) Validate() error {
	if err := c.StoreConfig().Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port %d out of range", c.Server.Port)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	return nil
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./munin.yaml"
	}

	// For Linux/macOS, use ~/.config/munin/config.yaml
	configDir := filepath.Join(homeDir, ".config", "munin")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
