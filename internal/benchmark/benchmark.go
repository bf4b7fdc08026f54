/*
Package benchmark estimates the cost of catalog-wide similarity runs.

A full compute-all pass evaluates N·(N-1)/2 pairs. Rather than running the
whole O(N²) job, the benchmark times a bounded sample of real vector builds
and comparisons and extrapolates, so operators can size batch windows
before scheduling one.
*/
package benchmark

import (
	"fmt"
	"time"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/feature"
	"github.com/khaile/bookwise/internal/similarity"
)

// DefaultSampleSize is how many books the sample covers.
const DefaultSampleSize = 50

// Result contains the extrapolated batch cost estimate.
type Result struct {
	// Books is the catalog size.
	Books int `json:"books"`

	// TotalPairs is N·(N-1)/2 for the whole catalog.
	TotalPairs int64 `json:"totalPairs"`

	// SampledPairs is how many comparisons were actually timed.
	SampledPairs int `json:"sampledPairs"`

	// PairMicros is the measured average time per comparison.
	PairMicros float64 `json:"pairMicros"`

	// EstimatedFullRun extrapolates the full compute-all duration.
	EstimatedFullRun time.Duration `json:"estimatedFullRun"`
}

// EstimateBatch times vector building and pairwise comparison over a
// sample of the catalog and extrapolates to the full O(N²) run.
func EstimateBatch(books []*catalog.Book, extractor *feature.Extractor, sampleSize int) (*Result, error) {
	if len(books) < 2 {
		return nil, fmt.Errorf("need at least 2 books to benchmark, have %d", len(books))
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if sampleSize > len(books) {
		sampleSize = len(books)
	}

	sample := books[:sampleSize]

	vectors := make([]*feature.BookVector, len(sample))
	for i, book := range sample {
		vectors[i] = feature.BuildBookVector(book.ID, extractor.Extract(book))
	}

	start := time.Now()
	pairs := 0
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			similarity.CompareBooks(vectors[i], vectors[j])
			pairs++
		}
	}
	elapsed := time.Since(start)

	n := int64(len(books))
	totalPairs := n * (n - 1) / 2
	pairMicros := float64(elapsed.Microseconds()) / float64(pairs)

	return &Result{
		Books:            len(books),
		TotalPairs:       totalPairs,
		SampledPairs:     pairs,
		PairMicros:       pairMicros,
		EstimatedFullRun: time.Duration(pairMicros*float64(totalPairs)) * time.Microsecond,
	}, nil
}

// FormatResult renders a human-readable estimate.
func FormatResult(r *Result) string {
	return fmt.Sprintf(
		"Catalog: %d books (%d pairs)\nSampled: %d comparisons at %.1f µs/pair\nEstimated full run: %s",
		r.Books, r.TotalPairs, r.SampledPairs, r.PairMicros, r.EstimatedFullRun.Round(time.Second))
}
