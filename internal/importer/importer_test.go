/*
Package importer provides tests for the import sources.
*/
package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/khaile/bookwise/internal/storage"
)

// newTestStore creates an initialized in-memory storage.
func newTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store := storage.New(":memory:")
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// writeTestFile writes a file into a temp dir and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

// TestForName verifies source lookup by name.
func TestForName(t *testing.T) {
	for _, name := range []string{"catalog-json", "ratings-csv"} {
		source, err := ForName(name)
		if err != nil {
			t.Fatalf("ForName(%q) failed: %v", name, err)
		}
		if source.Name() != name {
			t.Errorf("Expected source %q, got %q", name, source.Name())
		}
	}

	if _, err := ForName("bogus"); err == nil {
		t.Error("Expected error for unknown source")
	}
}

// TestCatalogJSONImport verifies books, users and profiles are loaded.
func TestCatalogJSONImport(t *testing.T) {
	store := newTestStore(t)

	path := writeTestFile(t, "catalog.json", `{
		"books": [
			{"id": 1, "title": "Red Nebula", "categories": ["science fiction"], "authors": ["mara voss"]},
			{"id": 2, "title": "Bread at Home", "categories": ["cooking"]},
			{"title": "No ID"}
		],
		"users": [
			{"id": 1, "name": "Ada", "preferences": {"categories": {"science fiction": 0.9}, "authors": ["mara voss"]}},
			{"id": 2, "name": "Ben"}
		]
	}`)

	summary, err := (&CatalogJSON{}).Import(path, store)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if summary.Books != 2 || summary.Users != 2 || summary.Preferences != 1 {
		t.Errorf("Expected 2 books / 2 users / 1 profile, got %+v", summary)
	}
	if summary.Skipped != 1 {
		t.Errorf("Expected 1 skipped record, got %d", summary.Skipped)
	}

	book, err := store.GetBook(1)
	if err != nil {
		t.Fatalf("GetBook failed: %v", err)
	}
	if book.Title != "Red Nebula" {
		t.Errorf("Expected imported title 'Red Nebula', got %q", book.Title)
	}

	profile, err := store.GetPreferences(1)
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if profile == nil || profile.Categories["science fiction"] != 0.9 {
		t.Errorf("Expected imported profile, got %+v", profile)
	}

	// Ben declared no preferences.
	profile, err = store.GetPreferences(2)
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if profile != nil {
		t.Errorf("Expected nil profile for user without preferences, got %+v", profile)
	}
}

// TestCatalogJSONNullBook verifies a null element in the books array is
// skipped like any other invalid record.
func TestCatalogJSONNullBook(t *testing.T) {
	store := newTestStore(t)

	path := writeTestFile(t, "catalog.json", `{
		"books": [
			{"id": 1, "title": "Red Nebula"},
			null,
			{"id": 2, "title": "Bread at Home"}
		]
	}`)

	summary, err := (&CatalogJSON{}).Import(path, store)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if summary.Books != 2 {
		t.Errorf("Expected 2 books imported, got %d", summary.Books)
	}
	if summary.Skipped != 1 {
		t.Errorf("Expected 1 skipped record, got %d", summary.Skipped)
	}
}

// TestCatalogJSONMalformed verifies unparseable JSON is an error.
func TestCatalogJSONMalformed(t *testing.T) {
	store := newTestStore(t)
	path := writeTestFile(t, "bad.json", `{"books": [`)

	if _, err := (&CatalogJSON{}).Import(path, store); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

// TestRatingsCSVImport verifies ratings load with the header skipped and
// malformed rows dropped.
func TestRatingsCSVImport(t *testing.T) {
	store := newTestStore(t)

	path := writeTestFile(t, "ratings.csv", "user_id,book_id,score\n1,1,8\n1,2,6.5\nnope,3,7\n1,4,99\n")

	summary, err := (&RatingsCSV{}).Import(path, store)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if summary.Ratings != 2 {
		t.Errorf("Expected 2 ratings imported, got %d", summary.Ratings)
	}
	if summary.Skipped != 2 {
		t.Errorf("Expected 2 rows skipped, got %d", summary.Skipped)
	}

	ratings, err := store.GetRatings(1)
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if len(ratings) != 2 {
		t.Fatalf("Expected 2 stored ratings, got %d", len(ratings))
	}
	if ratings[1].Score != 6.5 {
		t.Errorf("Expected score 6.5, got %v", ratings[1].Score)
	}
}

// TestRatingsCSVFiveStarScale verifies legacy 1-5 scores convert to 0-10.
func TestRatingsCSVFiveStarScale(t *testing.T) {
	store := newTestStore(t)

	path := writeTestFile(t, "legacy.csv", "user_id,book_id,score\n1,1,5\n1,2,3\n1,3,8\n")

	summary, err := (&RatingsCSV{FiveStarScale: true}).Import(path, store)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// 8 is outside the 1-5 scale and must be rejected.
	if summary.Ratings != 2 || summary.Skipped != 1 {
		t.Fatalf("Expected 2 imported / 1 skipped, got %+v", summary)
	}

	ratings, err := store.GetRatings(1)
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if ratings[0].Score != 10 {
		t.Errorf("Expected 5 stars converted to 10, got %v", ratings[0].Score)
	}
	if ratings[1].Score != 6 {
		t.Errorf("Expected 3 stars converted to 6, got %v", ratings[1].Score)
	}
}
