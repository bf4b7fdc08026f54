/*
Package ingest provides tests for the rating tracker.
*/
package ingest

import (
	"testing"
	"time"

	"github.com/khaile/bookwise/internal/catalog"
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

// TestRecordAndStop verifies queued ratings are flushed on shutdown.
func TestRecordAndStop(t *testing.T) {
	store := newTestStore(t)
	tracker := NewRatingTracker(store)

	tracker.Record(catalog.Rating{UserID: 1, BookID: 1, Score: 8})
	tracker.Record(catalog.Rating{UserID: 1, BookID: 2, Score: 6})
	tracker.Stop()

	ratings, err := store.GetRatings(1)
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if len(ratings) != 2 {
		t.Fatalf("Expected 2 ratings flushed, got %d", len(ratings))
	}
	if ratings[0].BookID != 1 || ratings[0].Score != 8 {
		t.Errorf("Expected rating (1, 8), got (%d, %v)", ratings[0].BookID, ratings[0].Score)
	}
}

// TestPeriodicFlush verifies ratings are flushed without stopping.
func TestPeriodicFlush(t *testing.T) {
	store := newTestStore(t)
	tracker := NewRatingTracker(store)
	defer tracker.Stop()

	tracker.Record(catalog.Rating{UserID: 2, BookID: 1, Score: 9})

	// Wait out a flush interval.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ratings, err := store.GetRatings(2)
		if err != nil {
			t.Fatalf("GetRatings failed: %v", err)
		}
		if len(ratings) == 1 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("Expected rating flushed within 2s")
}

// TestRecordOverwrites verifies re-rating a book replaces the old score.
func TestRecordOverwrites(t *testing.T) {
	store := newTestStore(t)
	tracker := NewRatingTracker(store)

	tracker.Record(catalog.Rating{UserID: 3, BookID: 1, Score: 4})
	tracker.Record(catalog.Rating{UserID: 3, BookID: 1, Score: 9})
	tracker.Stop()

	ratings, err := store.GetRatings(3)
	if err != nil {
		t.Fatalf("GetRatings failed: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("Expected 1 rating after overwrite, got %d", len(ratings))
	}
	if ratings[0].Score != 9 {
		t.Errorf("Expected latest score 9, got %v", ratings[0].Score)
	}
}

// TestStopIdempotent verifies Stop can be called more than once.
func TestStopIdempotent(t *testing.T) {
	store := newTestStore(t)
	tracker := NewRatingTracker(store)

	tracker.Stop()
	tracker.Stop()
}
