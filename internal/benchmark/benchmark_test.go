/*
Package benchmark provides tests for batch cost estimation.
*/
package benchmark

import (
	"strings"
	"testing"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/feature"
)

// testCatalog builds n synthetic books.
func testCatalog(n int) []*catalog.Book {
	books := make([]*catalog.Book, 0, n)
	for i := 0; i < n; i++ {
		books = append(books, &catalog.Book{
			ID:          int64(i + 1),
			Title:       "Book",
			Description: "A starship crew crosses a collapsing nebula near a desert planet",
			Categories:  []string{"science fiction", "adventure"},
			Authors:     []string{"mara voss"},
		})
	}
	return books
}

// TestEstimateBatch verifies the pair arithmetic and extrapolation.
func TestEstimateBatch(t *testing.T) {
	extractor, err := feature.NewExtractor()
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	result, err := EstimateBatch(testCatalog(10), extractor, 5)
	if err != nil {
		t.Fatalf("EstimateBatch failed: %v", err)
	}

	if result.Books != 10 {
		t.Errorf("Expected 10 books, got %d", result.Books)
	}
	// 10·9/2 pairs in the catalog, 5·4/2 sampled.
	if result.TotalPairs != 45 {
		t.Errorf("Expected 45 total pairs, got %d", result.TotalPairs)
	}
	if result.SampledPairs != 10 {
		t.Errorf("Expected 10 sampled pairs, got %d", result.SampledPairs)
	}
	if result.EstimatedFullRun < 0 {
		t.Errorf("Expected non-negative estimate, got %v", result.EstimatedFullRun)
	}
}

// TestEstimateBatchSampleClamped verifies an oversized sample is clamped.
func TestEstimateBatchSampleClamped(t *testing.T) {
	extractor, err := feature.NewExtractor()
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	result, err := EstimateBatch(testCatalog(3), extractor, 100)
	if err != nil {
		t.Fatalf("EstimateBatch failed: %v", err)
	}
	if result.SampledPairs != 3 {
		t.Errorf("Expected 3 sampled pairs from 3 books, got %d", result.SampledPairs)
	}
}

// TestEstimateBatchTooSmall verifies the minimum catalog size.
func TestEstimateBatchTooSmall(t *testing.T) {
	extractor, err := feature.NewExtractor()
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	if _, err := EstimateBatch(testCatalog(1), extractor, 10); err == nil {
		t.Error("Expected error for a single-book catalog")
	}
}

// TestFormatResult verifies the human-readable rendering.
func TestFormatResult(t *testing.T) {
	extractor, err := feature.NewExtractor()
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	result, err := EstimateBatch(testCatalog(5), extractor, 5)
	if err != nil {
		t.Fatalf("EstimateBatch failed: %v", err)
	}

	out := FormatResult(result)
	if !strings.Contains(out, "5 books") {
		t.Errorf("Expected book count in output, got %q", out)
	}
	if !strings.Contains(out, "Estimated full run") {
		t.Errorf("Expected estimate line in output, got %q", out)
	}
}
