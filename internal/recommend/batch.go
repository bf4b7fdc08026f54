package recommend

import (
	"context"
	"log"
	"sync"

	"github.com/khaile/bookwise/internal/storage"
)

// BatchSummary reports the outcome of a catalog-wide computation run.
type BatchSummary struct {
	// Processed is the number of entities whose similarities were
	// recomputed and committed.
	Processed int `json:"processed"`

	// Skipped is the number of entities that failed and were skipped.
	// Re-running the batch later is the recovery path; there is no retry.
	Skipped int `json:"skipped"`

	// Records is the total number of similarity records persisted.
	Records int `json:"records"`
}

// batchJob runs one entity-processing function over a list of ids in
// fixed-size pages with a bounded worker pool.
//
// After every completed page the job checkpoints its position, so a crash
// or cancellation mid-run loses at most the in-flight page; per-entity
// transactions already committed stay valid. A per-entity failure is
// logged and skipped; a single malformed entity must not abort the run.
type batchJob struct {
	name     string
	ids      []int64
	pageSize int
	workers  int
	store    storage.Storage

	// process recomputes one entity's similarities and returns the number
	// of records persisted. Each call is atomic (one transaction).
	process func(ctx context.Context, id int64) (int, error)
}

// run executes the job, resuming from a saved checkpoint when one exists.
func (j *batchJob) run(ctx context.Context) (BatchSummary, error) {
	var summary BatchSummary

	pageSize := j.pageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	workers := j.workers
	if workers <= 0 {
		workers = 1
	}

	totalPages := (len(j.ids) + pageSize - 1) / pageSize

	startPage, err := j.store.GetCheckpoint(j.name)
	if err != nil {
		return summary, err
	}
	if startPage >= totalPages {
		// Stale checkpoint from a differently-sized catalog.
		startPage = 0
	}
	if startPage > 0 {
		log.Printf("Resuming %s batch at page %d/%d", j.name, startPage+1, totalPages)
	}

	var mu sync.Mutex

	for page := startPage; page < totalPages; page++ {
		if err := ctx.Err(); err != nil {
			// Checkpoint already points at this page; the run resumes here.
			return summary, err
		}

		start := page * pageSize
		end := start + pageSize
		if end > len(j.ids) {
			end = len(j.ids)
		}

		var wg sync.WaitGroup
		sem := make(chan struct{}, workers)

		for _, id := range j.ids[start:end] {
			wg.Add(1)
			sem <- struct{}{}

			go func(id int64) {
				defer wg.Done()
				defer func() { <-sem }()

				count, err := j.process(ctx, id)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					// A cancelled entity is not a failure: the page reruns
					// in full on resume.
					if ctx.Err() != nil {
						return
					}
					log.Printf("Warning: %s batch: skipping entity %d: %v", j.name, id, err)
					summary.Skipped++
					return
				}
				summary.Processed++
				summary.Records += count
			}(id)
		}

		wg.Wait()

		// Cancellation mid-page must not advance the checkpoint: the
		// interrupted page reruns from its start on resume.
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := j.store.SaveCheckpoint(j.name, page+1); err != nil {
			log.Printf("Warning: failed to checkpoint %s batch: %v", j.name, err)
		}
		log.Printf("%s batch: page %d/%d done (%d processed, %d skipped)",
			j.name, page+1, totalPages, summary.Processed, summary.Skipped)
	}

	if err := j.store.ClearCheckpoint(j.name); err != nil {
		log.Printf("Warning: failed to clear %s batch checkpoint: %v", j.name, err)
	}

	return summary, nil
}
