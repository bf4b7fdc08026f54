/*
Package search provides tests for catalog search.
*/
package search

import (
	"testing"

	"github.com/khaile/bookwise/internal/catalog"
)

// testBooks is a small catalog for search tests.
var testBooks = []*catalog.Book{
	{
		ID:          1,
		Title:       "Red Nebula",
		Description: "A starship crew crosses a collapsing nebula",
		Categories:  []string{"science fiction"},
		Authors:     []string{"Mara Voss"},
	},
	{
		ID:          2,
		Title:       "The Silent Fleet",
		Description: "A starship admiral hunts a silent fleet",
		Categories:  []string{"science fiction"},
		Authors:     []string{"Jon Keel"},
	},
	{
		ID:          3,
		Title:       "Bread at Home",
		Description: "Simple sourdough methods for home baking",
		Categories:  []string{"cooking"},
		Authors:     []string{"Rosa Milne"},
	},
}

// newTestIndexer creates an in-memory index over the test catalog.
func newTestIndexer(t *testing.T) *Indexer {
	t.Helper()

	indexer, err := NewIndexer()
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	t.Cleanup(func() { indexer.Close() })

	if err := indexer.IndexBooks(testBooks); err != nil {
		t.Fatalf("IndexBooks failed: %v", err)
	}
	return indexer
}

// TestIndexBooks verifies batch indexing and doc count.
func TestIndexBooks(t *testing.T) {
	indexer := newTestIndexer(t)

	count, err := indexer.DocCount()
	if err != nil {
		t.Fatalf("DocCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 indexed books, got %d", count)
	}
}

// TestSearchBM25 verifies keyword search hits the right books.
func TestSearchBM25(t *testing.T) {
	indexer := newTestIndexer(t)

	results, err := indexer.SearchBM25("starship", 10)
	if err != nil {
		t.Fatalf("SearchBM25 failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 hits for 'starship', got %d", len(results))
	}
	for _, r := range results {
		if r.BookID != 1 && r.BookID != 2 {
			t.Errorf("Unexpected hit for 'starship': book %d", r.BookID)
		}
		if r.Score <= 0 {
			t.Errorf("Expected positive relevance score, got %v", r.Score)
		}
	}
}

// TestSearchBM25TitleField verifies the per-field disjunction covers titles.
func TestSearchBM25TitleField(t *testing.T) {
	indexer := newTestIndexer(t)

	results, err := indexer.SearchBM25("nebula", 10)
	if err != nil {
		t.Fatalf("SearchBM25 failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected a hit for 'nebula'")
	}
	if results[0].BookID != 1 {
		t.Errorf("Expected book 1 as top hit, got %d", results[0].BookID)
	}
}

// TestSearchByCategory verifies the category restriction.
func TestSearchByCategory(t *testing.T) {
	indexer := newTestIndexer(t)

	results, err := indexer.SearchByCategory("home", "cooking", 10)
	if err != nil {
		t.Fatalf("SearchByCategory failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(results))
	}
	if results[0].BookID != 3 {
		t.Errorf("Expected book 3, got %d", results[0].BookID)
	}
}

// TestRemoveBook verifies deletion from the index.
func TestRemoveBook(t *testing.T) {
	indexer := newTestIndexer(t)

	if err := indexer.RemoveBook(1); err != nil {
		t.Fatalf("RemoveBook failed: %v", err)
	}

	results, err := indexer.SearchBM25("nebula", 10)
	if err != nil {
		t.Fatalf("SearchBM25 failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no hits after removal, got %d", len(results))
	}
}

// TestSearchHybridReranks verifies similarity fusion can promote a less
// keyword-relevant hit.
func TestSearchHybridReranks(t *testing.T) {
	indexer := newTestIndexer(t)

	// Both sci-fi books match "starship"; the seed scorer strongly prefers
	// book 2.
	seed := func(bookID int64) (float64, bool) {
		if bookID == 2 {
			return 1.0, true
		}
		return 0, false
	}

	results, err := indexer.SearchHybrid("starship", 10, seed, FusionConfig{
		KeywordWeight:    0.1,
		SimilarityWeight: 0.9,
	})
	if err != nil {
		t.Fatalf("SearchHybrid failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(results))
	}
	if results[0].BookID != 2 {
		t.Errorf("Expected seeded book 2 promoted to top, got %d", results[0].BookID)
	}
}

// TestSearchHybridNilScorer verifies hybrid degrades to plain BM25.
func TestSearchHybridNilScorer(t *testing.T) {
	indexer := newTestIndexer(t)

	hybrid, err := indexer.SearchHybrid("sourdough", 10, nil, DefaultFusionConfig)
	if err != nil {
		t.Fatalf("SearchHybrid failed: %v", err)
	}
	if len(hybrid) != 1 || hybrid[0].BookID != 3 {
		t.Errorf("Expected plain BM25 result for book 3, got %v", hybrid)
	}
}
