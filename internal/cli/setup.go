/*
Package cli implements the bookwise admin commands.

Commands construct the engine explicitly: configuration is loaded, storage
opened, and services wired per invocation. Long-running batch commands are
cancellable with Ctrl-C and resume from their checkpoint on the next run.
*/
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/khaile/bookwise/internal/config"
	"github.com/khaile/bookwise/internal/feature"
	"github.com/khaile/bookwise/internal/recommend"
	"github.com/khaile/bookwise/internal/storage"
)

// engine bundles the wired-up services a command works with.
type engine struct {
	cfg   *config.Config
	store *storage.SQLiteStorage
	books *recommend.BookService
	users *recommend.UserService
}

// openEngine loads configuration, opens storage and constructs the
// similarity services.
func openEngine() (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := storage.New(cfg.DBPath)
	if err := store.Init(); err != nil {
		return nil, err
	}

	extractor, err := feature.NewExtractor()
	if err != nil {
		store.Close()
		return nil, err
	}

	engineCfg := cfg.Engine
	if engineCfg == nil {
		engineCfg = config.NewConfig().Engine
	}

	books := recommend.NewBookService(store, store, extractor, recommend.BookServiceOptions{
		MinSimilarity:      engineCfg.BookThreshold,
		FallbackCandidates: engineCfg.FallbackCandidates,
		PageSize:           engineCfg.BatchPageSize,
		Workers:            engineCfg.BatchWorkers,
	})

	users := recommend.NewUserService(store, store, store, recommend.UserServiceOptions{
		MinSimilarity:      engineCfg.UserThreshold,
		FallbackCandidates: engineCfg.FallbackCandidates,
		PageSize:           engineCfg.BatchPageSize,
		Workers:            engineCfg.BatchWorkers,
	})

	return &engine{cfg: cfg, store: store, books: books, users: users}, nil
}

// Close releases the engine's resources.
func (e *engine) Close() error {
	return e.store.Close()
}
