/*
Package importer loads catalog data from external exports into storage.

Two source formats are supported: a JSON catalog export (books, users and
declared preference profiles) and a CSV ratings export. Ratings arrive on
either the canonical 0-10 scale or the legacy 1-5 scale; legacy scores are
converted at this boundary so the engine only ever sees 0-10.
*/
package importer

import (
	"fmt"

	"github.com/khaile/bookwise/internal/storage"
)

// Summary reports what an import run loaded.
type Summary struct {
	Books       int `json:"books"`
	Users       int `json:"users"`
	Preferences int `json:"preferences"`
	Ratings     int `json:"ratings"`

	// Skipped counts malformed records that were logged and dropped.
	Skipped int `json:"skipped"`
}

// Source imports one external data format into storage.
type Source interface {
	// Name identifies the source format.
	Name() string

	// Import loads the file at path into storage.
	Import(path string, store storage.Storage) (Summary, error)
}

// Sources lists all supported import sources.
func Sources() []Source {
	return []Source{
		&CatalogJSON{},
		&RatingsCSV{},
	}
}

// ForName returns the source with the given name.
func ForName(name string) (Source, error) {
	for _, source := range Sources() {
		if source.Name() == name {
			return source, nil
		}
	}
	return nil, fmt.Errorf("unknown import source: %q", name)
}
