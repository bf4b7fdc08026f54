/*
Package config provides tests for configuration loading and saving.
*/
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestNewConfig verifies default values.
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.DBPath == "" {
		t.Error("Expected non-empty default DB path")
	}
	if cfg.Engine == nil {
		t.Fatal("Expected default engine settings")
	}
	if cfg.Engine.BookThreshold != 0.05 {
		t.Errorf("Expected book threshold 0.05, got %v", cfg.Engine.BookThreshold)
	}
	if cfg.Engine.UserThreshold != 0.3 {
		t.Errorf("Expected user threshold 0.3, got %v", cfg.Engine.UserThreshold)
	}
	if cfg.Engine.BatchWorkers != 1 {
		t.Errorf("Expected 1 batch worker by default, got %d", cfg.Engine.BatchWorkers)
	}
}

// TestSaveAndLoadFrom verifies the roundtrip through disk.
func TestSaveAndLoadFrom(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.json")

	cfg := NewConfig()
	cfg.DBPath = "/tmp/test.db"
	cfg.Engine.BookThreshold = 0.1

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.DBPath != "/tmp/test.db" {
		t.Errorf("Expected DB path '/tmp/test.db', got %q", loaded.DBPath)
	}
	if loaded.Engine.BookThreshold != 0.1 {
		t.Errorf("Expected book threshold 0.1, got %v", loaded.Engine.BookThreshold)
	}
}

// TestLoadFromMissing verifies the typed not-found error.
func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if _, ok := err.(*ConfigNotFoundError); !ok {
		t.Errorf("Expected ConfigNotFoundError, got %T", err)
	}
}

// TestLoadFromInvalid verifies the typed parse error.
func TestLoadFromInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("Expected error for invalid config")
	}
	if _, ok := err.(*InvalidConfigError); !ok {
		t.Errorf("Expected InvalidConfigError, got %T", err)
	}
}

// TestLoadFromFillsDefaults verifies unset fields fall back to defaults.
func TestLoadFromFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"indexPath": "/tmp/index.bleve"}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.IndexPath != "/tmp/index.bleve" {
		t.Errorf("Expected explicit index path kept, got %q", cfg.IndexPath)
	}
	if cfg.DBPath == "" {
		t.Error("Expected default DB path filled in")
	}
	if cfg.Engine == nil {
		t.Error("Expected default engine settings filled in")
	}
}
