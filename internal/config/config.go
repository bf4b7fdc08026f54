/*
Package config handles loading and saving bookwise configuration.

Configuration is stored in ~/.bookwise.json:

	{
	  "dbPath": "~/.bookwise/catalog.db",
	  "indexPath": "~/.bookwise/index.bleve",
	  "engine": {
	    "bookThreshold": 0.05,
	    "userThreshold": 0.3,
	    "fallbackCandidates": 100,
	    "batchPageSize": 50,
	    "batchWorkers": 1
	  }
	}
*/
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration structure.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `json:"dbPath"`

	// IndexPath is the Bleve catalog index location. Empty selects an
	// in-memory index.
	IndexPath string `json:"indexPath,omitempty"`

	// Engine tunes the similarity engine.
	Engine *EngineSettings `json:"engine,omitempty"`
}

// EngineSettings tunes similarity computation and batch jobs.
type EngineSettings struct {
	// BookThreshold is the minimum book similarity persisted.
	BookThreshold float64 `json:"bookThreshold,omitempty"`

	// UserThreshold is the minimum user similarity persisted.
	UserThreshold float64 `json:"userThreshold,omitempty"`

	// FallbackCandidates bounds cache-miss dynamic computation.
	FallbackCandidates int `json:"fallbackCandidates,omitempty"`

	// BatchPageSize is the page size of compute-all jobs.
	BatchPageSize int `json:"batchPageSize,omitempty"`

	// BatchWorkers is the worker-pool size of compute-all jobs.
	BatchWorkers int `json:"batchWorkers,omitempty"`
}

// NewConfig creates a configuration with defaults filled in.
func NewConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		DBPath:    filepath.Join(home, ".bookwise", "catalog.db"),
		IndexPath: "",
		Engine: &EngineSettings{
			BookThreshold:      0.05,
			UserThreshold:      0.3,
			FallbackCandidates: 100,
			BatchPageSize:      50,
			BatchWorkers:       1,
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.bookwise.json.
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".bookwise.json"), nil
}

// Load reads the configuration from the default path, falling back to
// defaults when no config file exists yet.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		if _, notFound := err.(*ConfigNotFoundError); notFound {
			return NewConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'bookwise init' to create a default configuration.",
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Fix the JSON syntax or delete the file to start over.",
		}
	}

	// Fill in anything left unset.
	defaults := NewConfig()
	if cfg.DBPath == "" {
		cfg.DBPath = defaults.DBPath
	}
	if cfg.Engine == nil {
		cfg.Engine = defaults.Engine
	}

	return &cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
