package importer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/storage"
)

// CatalogJSON imports a JSON catalog export: books plus users with their
// declared preference profiles.
//
// Format:
//
//	{
//	  "books": [{"id": 1, "title": "...", "categories": [...], ...}],
//	  "users": [{"id": 1, "name": "...", "preferences": {"categories": {"fiction": 0.9}, ...}}]
//	}
type CatalogJSON struct{}

// catalogExport is the on-disk shape of a catalog export.
type catalogExport struct {
	Books []*catalog.Book `json:"books"`
	Users []exportedUser  `json:"users"`
}

// exportedUser carries a user together with an optional inline profile.
type exportedUser struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Preferences *exportedPrefs `json:"preferences,omitempty"`
}

type exportedPrefs struct {
	Categories map[string]float64 `json:"categories"`
	Authors    []string           `json:"authors"`
	Publishers []string           `json:"publishers"`
}

// Name identifies the source format.
func (c *CatalogJSON) Name() string { return "catalog-json" }

// Import loads a catalog export into storage.
func (c *CatalogJSON) Import(path string, store storage.Storage) (Summary, error) {
	var summary Summary

	data, err := os.ReadFile(path)
	if err != nil {
		return summary, fmt.Errorf("failed to read catalog export: %w", err)
	}

	var export catalogExport
	if err := json.Unmarshal(data, &export); err != nil {
		return summary, fmt.Errorf("failed to parse catalog export: %w", err)
	}

	for _, book := range export.Books {
		// A JSON null element decodes to a nil book.
		if book == nil || book.ID <= 0 || book.Title == "" {
			log.Printf("Warning: skipping book with missing id or title")
			summary.Skipped++
			continue
		}
		if err := store.UpsertBook(book); err != nil {
			return summary, err
		}
		summary.Books++
	}

	for _, user := range export.Users {
		if user.ID <= 0 {
			log.Printf("Warning: skipping user with missing id")
			summary.Skipped++
			continue
		}
		if err := store.UpsertUser(&catalog.User{ID: user.ID, Name: user.Name}); err != nil {
			return summary, err
		}
		summary.Users++

		if user.Preferences == nil {
			continue
		}
		profile := &catalog.PreferenceProfile{
			UserID:     user.ID,
			Categories: user.Preferences.Categories,
			Authors:    user.Preferences.Authors,
			Publishers: user.Preferences.Publishers,
		}
		if err := store.UpsertPreferences(profile); err != nil {
			return summary, err
		}
		summary.Preferences++
	}

	return summary, nil
}
