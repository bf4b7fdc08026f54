/*
Package recommend orchestrates the similarity engine: it builds feature
vectors, computes pairwise similarities across the catalog, persists them
for fast lookup, and serves ranked neighbor and recommendation queries.

Services are plain constructed objects with injected dependencies; there is
no hidden global state. Lifecycle belongs to the caller (a request handler
or a long-lived admin job).
*/
package recommend

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/feature"
	"github.com/khaile/bookwise/internal/similarity"
	"github.com/khaile/bookwise/internal/storage"
)

const (
	// DefaultBookThreshold is the minimum similarity persisted for book
	// pairs. A tunable noise floor: near-zero rows carry no ranking value.
	DefaultBookThreshold = 0.05

	// DefaultFallbackCandidates bounds cache-miss fallback computation to
	// the most-reviewed books.
	DefaultFallbackCandidates = 100

	// DefaultPageSize is the batch page size for compute-all runs.
	DefaultPageSize = 50

	// bookBatchJob names the checkpoint row of the book compute-all job.
	bookBatchJob = "book-similarity"
)

// BookServiceOptions tunes a BookService. Zero values select defaults.
type BookServiceOptions struct {
	// MinSimilarity is the persistence threshold (default 0.05).
	MinSimilarity float64

	// FallbackCandidates bounds dynamic cache-miss computation (default 100).
	FallbackCandidates int

	// PageSize is the batch page size (default 50).
	PageSize int

	// Workers is the worker-pool size for batch runs (default 1, serial).
	// Per-entity persistence stays atomic at any setting.
	Workers int
}

// BookService computes and serves book-book similarities.
type BookService struct {
	store     storage.Storage
	books     catalog.BookRepository
	extractor *feature.Extractor
	opts      BookServiceOptions

	// vectors is the in-memory layer of the get-or-recompute vector cache.
	// Vectors are pure functions of current book state, so concurrent
	// recomputation is idempotent and last-write-wins needs no lock beyond
	// map access.
	mu      sync.RWMutex
	vectors map[int64]*feature.BookVector
}

// SimilarBook is one ranked neighbor of a subject book.
type SimilarBook struct {
	Book  *catalog.Book `json:"book"`
	Score float64       `json:"score"`

	// Details carries the per-aspect breakdown when requested.
	Details *similarity.Breakdown `json:"breakdown,omitempty"`
}

// NewBookService creates a book similarity service.
func NewBookService(store storage.Storage, books catalog.BookRepository, extractor *feature.Extractor, opts BookServiceOptions) *BookService {
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = DefaultBookThreshold
	}
	if opts.FallbackCandidates <= 0 {
		opts.FallbackCandidates = DefaultFallbackCandidates
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	return &BookService{
		store:     store,
		books:     books,
		extractor: extractor,
		opts:      opts,
		vectors:   make(map[int64]*feature.BookVector),
	}
}

// vectorFor returns the feature vector for a book via the get-or-recompute
// cache: memory first, then the persisted cache, then a fresh build.
// With refresh set the cached layers are bypassed and overwritten.
func (s *BookService) vectorFor(book *catalog.Book, refresh bool) *feature.BookVector {
	if !refresh {
		s.mu.RLock()
		cached, ok := s.vectors[book.ID]
		s.mu.RUnlock()
		if ok {
			return cached
		}

		stored, err := s.store.GetBookVector(book.ID)
		if err != nil {
			log.Printf("Warning: failed to load cached vector for book %d: %v", book.ID, err)
		}
		if stored != nil {
			s.mu.Lock()
			s.vectors[book.ID] = stored
			s.mu.Unlock()
			return stored
		}
	}

	vector := feature.BuildBookVector(book.ID, s.extractor.Extract(book))

	s.mu.Lock()
	s.vectors[book.ID] = vector
	s.mu.Unlock()

	if err := s.store.SaveBookVector(vector); err != nil {
		log.Printf("Warning: failed to persist vector for book %d: %v", book.ID, err)
	}

	return vector
}

// ComputeForBook recomputes and persists the similarities of one book
// against every other book in the catalog, and returns the number of
// records persisted.
//
// Cost is O(N) vector builds plus O(N) cosine evaluations; this is meant
// for batch jobs and admin operations, not the per-request path.
func (s *BookService) ComputeForBook(ctx context.Context, bookID int64) (int, error) {
	subject, err := s.books.GetBook(bookID)
	if err != nil {
		return 0, err
	}

	// The subject's vector is always rebuilt; comparison vectors are
	// resolved lazily through the cache.
	subjectVector := s.vectorFor(subject, true)

	others, err := s.books.ListBooks()
	if err != nil {
		return 0, err
	}

	records := make([]storage.BookSimilarity, 0, len(others))
	for _, other := range others {
		if other.ID == subject.ID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		overall, breakdown := similarity.CompareBooks(subjectVector, s.vectorFor(other, false))
		if overall < s.opts.MinSimilarity {
			continue
		}

		records = append(records, storage.NewBookSimilarity(
			subject.ID, other.ID, overall,
			breakdown.Category, breakdown.Keyword, breakdown.Author, breakdown.Description))
	}

	if err := s.store.ReplaceBookSimilarities(subject.ID, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ComputeAll recomputes similarities for every book in the catalog.
//
// The run is O(N²) in cosine evaluations, the dominant cost center of the
// whole system, so it executes as a chunked, checkpointed job: cancelling
// mid-run keeps committed per-book transactions and resumes at the
// interrupted page.
func (s *BookService) ComputeAll(ctx context.Context) (BatchSummary, error) {
	ids, err := s.books.ListBookIDs()
	if err != nil {
		return BatchSummary{}, err
	}

	job := &batchJob{
		name:     bookBatchJob,
		ids:      ids,
		pageSize: s.opts.PageSize,
		workers:  s.opts.Workers,
		store:    s.store,
		process:  s.ComputeForBook,
	}
	return job.run(ctx)
}

// SimilarBooks returns the ranked neighbors of a book.
//
// It first serves from persisted similarity records. When none exist for
// the book (cache miss) it falls back to a bounded dynamic computation
// against the most-reviewed candidate books; dynamic results are ephemeral
// and never persisted.
func (s *BookService) SimilarBooks(ctx context.Context, bookID int64, limit int, minSimilarity float64, includeDetails bool) ([]SimilarBook, error) {
	if limit <= 0 {
		limit = 10
	}
	if minSimilarity < 0 {
		minSimilarity = s.opts.MinSimilarity
	}

	subject, err := s.books.GetBook(bookID)
	if err != nil {
		return nil, err
	}

	cached, err := s.store.HasBookSimilarities(bookID)
	if err != nil {
		return nil, err
	}
	if cached {
		return s.similarFromStore(bookID, limit, minSimilarity, includeDetails)
	}
	return s.similarDynamic(ctx, subject, limit, minSimilarity, includeDetails)
}

// similarFromStore serves a neighbor query from persisted records.
func (s *BookService) similarFromStore(bookID int64, limit int, minSimilarity float64, includeDetails bool) ([]SimilarBook, error) {
	records, err := s.store.BookSimilaritiesFor(bookID, limit, minSimilarity)
	if err != nil {
		return nil, err
	}

	results := make([]SimilarBook, 0, len(records))
	for _, r := range records {
		book, err := s.books.GetBook(r.Other(bookID))
		if err != nil {
			// The neighbor was removed from the catalog after the last
			// batch run; skip the stale record.
			log.Printf("Warning: skipping stale similarity record (%d, %d): %v", r.FirstID, r.SecondID, err)
			continue
		}

		result := SimilarBook{Book: book, Score: r.Overall}
		if includeDetails {
			result.Details = &similarity.Breakdown{
				Category:    r.Category,
				Keyword:     r.Keyword,
				Author:      r.Author,
				Description: r.Description,
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// similarDynamic computes neighbors on the fly against the most-reviewed
// candidates. The popularity bound keeps cache-miss latency acceptable and
// ranks likely-relevant candidates first.
func (s *BookService) similarDynamic(ctx context.Context, subject *catalog.Book, limit int, minSimilarity float64, includeDetails bool) ([]SimilarBook, error) {
	candidates, err := s.books.MostReviewedBooks(s.opts.FallbackCandidates, subject.ID)
	if err != nil {
		return nil, err
	}

	subjectVector := s.vectorFor(subject, false)

	results := make([]SimilarBook, 0, len(candidates))
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		overall, breakdown := similarity.CompareBooks(subjectVector, s.vectorFor(candidate, false))
		if overall < minSimilarity {
			continue
		}

		result := SimilarBook{Book: candidate, Score: overall}
		if includeDetails {
			b := breakdown
			result.Details = &b
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Book.ID < results[j].Book.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// InvalidateVector drops a book's cached vector from both cache layers so
// the next computation rebuilds it. Call after a book's content fields
// change.
func (s *BookService) InvalidateVector(bookID int64) {
	s.mu.Lock()
	delete(s.vectors, bookID)
	s.mu.Unlock()

	if err := s.store.DeleteBookVector(bookID); err != nil {
		log.Printf("Warning: failed to drop cached vector for book %d: %v", bookID, err)
	}
}

// Stats aggregates the persisted book similarity records.
func (s *BookService) Stats() (*storage.SimilarityStats, error) {
	stats, err := s.store.BookSimilarityStats()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate book similarities: %w", err)
	}
	return stats, nil
}
