/*
Package ingest buffers incoming rating events and flushes them to storage
in the background, so the write path of the surrounding application never
blocks on the database.
*/
package ingest

import (
	"log"
	"sync"
	"time"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/storage"
)

const (
	// queueSize is the buffer size of the event queue. When full, events
	// are dropped rather than blocking the caller.
	queueSize = 1000

	// batchFlushSize triggers an immediate flush when reached.
	batchFlushSize = 50

	// flushInterval is how often pending events are flushed.
	flushInterval = 200 * time.Millisecond
)

// RatingTracker records ratings with non-blocking writes and background
// batch flushing.
type RatingTracker struct {
	store    storage.Storage
	queue    chan catalog.Rating
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRatingTracker creates a tracker and starts its background flusher.
func NewRatingTracker(store storage.Storage) *RatingTracker {
	t := &RatingTracker{
		store:    store,
		queue:    make(chan catalog.Rating, queueSize),
		stopChan: make(chan struct{}),
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Record queues a rating (non-blocking). If the queue is full the rating
// is dropped and a warning is logged.
func (t *RatingTracker) Record(rating catalog.Rating) {
	select {
	case t.queue <- rating:
	default:
		log.Printf("Warning: rating queue full, dropping rating (%d, %d)", rating.UserID, rating.BookID)
	}
}

// Stop shuts the tracker down, flushing everything still queued.
func (t *RatingTracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// QueueLength returns the number of queued, unflushed ratings.
func (t *RatingTracker) QueueLength() int {
	return len(t.queue)
}

// processEvents batches queued ratings and flushes them periodically.
func (t *RatingTracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]catalog.Rating, 0, batchFlushSize)

	for {
		select {
		case rating := <-t.queue:
			batch = append(batch, rating)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}

		case <-t.stopChan:
			// Drain whatever is still queued, then flush and exit.
			for {
				select {
				case rating := <-t.queue:
					batch = append(batch, rating)
					if len(batch) >= batchFlushSize {
						t.flush(batch)
						batch = batch[:0]
					}
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of ratings to storage.
func (t *RatingTracker) flush(ratings []catalog.Rating) {
	for _, rating := range ratings {
		if err := t.store.UpsertRating(rating); err != nil {
			log.Printf("Warning: failed to record rating (%d, %d): %v", rating.UserID, rating.BookID, err)
		}
	}
}
