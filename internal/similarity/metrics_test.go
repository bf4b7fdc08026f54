/*
Package similarity provides tests for the metric math.
*/
package similarity

import (
	"math"
	"testing"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/feature"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// TestCosine verifies cosine similarity over sparse vectors.
func TestCosine(t *testing.T) {
	a := feature.Vector{"fiction": 1.0, "fantasy": 1.0}
	b := feature.Vector{"fiction": 1.0, "fantasy": 1.0}

	if got := Cosine(a, b); !almostEqual(got, 1.0) {
		t.Errorf("Expected cosine 1.0 for identical vectors, got %v", got)
	}

	c := feature.Vector{"history": 1.0}
	if got := Cosine(a, c); got != 0.0 {
		t.Errorf("Expected cosine 0.0 for disjoint vectors, got %v", got)
	}
}

// TestCosineZeroNorm verifies the defined-zero policy for empty vectors.
func TestCosineZeroNorm(t *testing.T) {
	a := feature.Vector{"fiction": 1.0}

	if got := Cosine(a, feature.Vector{}); got != 0.0 {
		t.Errorf("Expected cosine 0.0 against empty vector, got %v", got)
	}
	if got := Cosine(feature.Vector{}, feature.Vector{}); got != 0.0 {
		t.Errorf("Expected cosine 0.0 for two empty vectors, got %v", got)
	}
}

// TestCosineSymmetry verifies Cosine(a,b) == Cosine(b,a).
func TestCosineSymmetry(t *testing.T) {
	a := feature.Vector{"fiction": 1.0, "fantasy": 0.5, "magic": 0.2}
	b := feature.Vector{"fiction": 0.3, "history": 1.0}

	if Cosine(a, b) != Cosine(b, a) {
		t.Error("Expected cosine to be symmetric")
	}
}

// TestCompareBooksSharedCategoriesOnly verifies the weighted blend: two
// books sharing identical categories but nothing else score exactly the
// category weight.
func TestCompareBooksSharedCategoriesOnly(t *testing.T) {
	a := feature.BuildBookVector(1, feature.Features{
		Categories: []string{"fiction", "fantasy"},
		Authors:    []string{"frank herbert"},
		Terms:      []string{"desert"},
	})
	b := feature.BuildBookVector(2, feature.Features{
		Categories: []string{"fiction", "fantasy"},
		Authors:    []string{"ursula le guin"},
		Terms:      []string{"ocean"},
	})

	overall, breakdown := CompareBooks(a, b)

	if !almostEqual(breakdown.Category, 1.0) {
		t.Errorf("Expected category component 1.0, got %v", breakdown.Category)
	}
	if breakdown.Author != 0.0 || breakdown.Description != 0.0 || breakdown.Keyword != 0.0 {
		t.Errorf("Expected zero non-category components, got %+v", breakdown)
	}
	if !almostEqual(overall, 0.4) {
		t.Errorf("Expected overall 0.4 (category weight), got %v", overall)
	}
}

// TestCompareBooksIdentical verifies identical feature sets score 1.0.
func TestCompareBooksIdentical(t *testing.T) {
	f := feature.Features{
		Categories: []string{"fiction"},
		Keywords:   []string{"desert"},
		Authors:    []string{"frank herbert"},
		Terms:      []string{"spice", "planet"},
	}
	a := feature.BuildBookVector(1, f)
	b := feature.BuildBookVector(2, f)

	overall, _ := CompareBooks(a, b)
	if !almostEqual(overall, 1.0) {
		t.Errorf("Expected overall 1.0 for identical features, got %v", overall)
	}
}

// TestCompareBooksBounded verifies scores stay in [0,1] and symmetric.
func TestCompareBooksBounded(t *testing.T) {
	a := feature.BuildBookVector(1, feature.Features{
		Categories: []string{"fiction", "fantasy"},
		Keywords:   []string{"magic", "dragon"},
		Terms:      []string{"castle", "castle", "sword"},
	})
	b := feature.BuildBookVector(2, feature.Features{
		Categories: []string{"fiction"},
		Keywords:   []string{"dragon"},
		Terms:      []string{"castle"},
	})

	ab, _ := CompareBooks(a, b)
	ba, _ := CompareBooks(b, a)

	if ab < 0 || ab > 1 {
		t.Errorf("Expected score in [0,1], got %v", ab)
	}
	if !almostEqual(ab, ba) {
		t.Errorf("Expected symmetric scores, got %v and %v", ab, ba)
	}
}

// TestJaccard verifies set overlap similarity.
func TestJaccard(t *testing.T) {
	a := []string{"tor", "penguin"}
	b := []string{"penguin", "harper"}

	// |{penguin}| / |{tor, penguin, harper}|
	if got := Jaccard(a, b); !almostEqual(got, 1.0/3.0) {
		t.Errorf("Expected Jaccard 1/3, got %v", got)
	}

	if got := Jaccard(a, a); !almostEqual(got, 1.0) {
		t.Errorf("Expected Jaccard 1.0 for identical sets, got %v", got)
	}

	if got := Jaccard(nil, b); got != 0.0 {
		t.Errorf("Expected Jaccard 0.0 for empty side, got %v", got)
	}

	// Duplicates must not inflate the counts.
	if got := Jaccard([]string{"tor", "tor"}, []string{"tor", "tor", "tor"}); !almostEqual(got, 1.0) {
		t.Errorf("Expected Jaccard 1.0 with duplicates collapsed, got %v", got)
	}
}

// TestPearsonPerfectCorrelation verifies r=1 for linearly aligned ratings.
func TestPearsonPerfectCorrelation(t *testing.T) {
	a := map[int64]float64{1: 2, 2: 4, 3: 6}
	b := map[int64]float64{1: 3, 2: 5, 3: 7}

	r, ok := Pearson(a, b)
	if !ok {
		t.Fatal("Expected Pearson to succeed")
	}
	if !almostEqual(r, 1.0) {
		t.Errorf("Expected r=1.0, got %v", r)
	}
}

// TestPearsonInverseCorrelation verifies r=-1 for opposed ratings.
func TestPearsonInverseCorrelation(t *testing.T) {
	a := map[int64]float64{1: 1, 2: 5, 3: 9}
	b := map[int64]float64{1: 9, 2: 5, 3: 1}

	r, ok := Pearson(a, b)
	if !ok {
		t.Fatal("Expected Pearson to succeed")
	}
	if !almostEqual(r, -1.0) {
		t.Errorf("Expected r=-1.0, got %v", r)
	}
}

// TestPearsonInsufficientOverlap verifies fewer than 2 co-rated books is
// reported as no signal.
func TestPearsonInsufficientOverlap(t *testing.T) {
	a := map[int64]float64{1: 8, 2: 6}
	b := map[int64]float64{1: 7, 3: 9}

	if _, ok := Pearson(a, b); ok {
		t.Error("Expected Pearson to fail with 1 co-rated book")
	}

	if _, ok := Pearson(a, map[int64]float64{}); ok {
		t.Error("Expected Pearson to fail with no overlap")
	}
}

// TestPearsonZeroVariance verifies constant ratings are reported as no
// signal instead of dividing by zero.
func TestPearsonZeroVariance(t *testing.T) {
	a := map[int64]float64{1: 7, 2: 7, 3: 7}
	b := map[int64]float64{1: 3, 2: 8, 3: 5}

	if _, ok := Pearson(a, b); ok {
		t.Error("Expected Pearson to fail with zero variance on one side")
	}
}

// TestRatingSimilarityRescale verifies the [-1,1] -> [0,1] rescale.
func TestRatingSimilarityRescale(t *testing.T) {
	// Perfectly aligned: (1+1)/2 = 1.
	aligned := map[int64]float64{1: 2, 2: 4, 3: 6}
	alignedB := map[int64]float64{1: 3, 2: 5, 3: 7}
	if got := RatingSimilarity(aligned, alignedB); !almostEqual(got, 1.0) {
		t.Errorf("Expected rating similarity 1.0, got %v", got)
	}

	// Perfectly opposed: (-1+1)/2 = 0.
	opposed := map[int64]float64{1: 9, 2: 5, 3: 1}
	if got := RatingSimilarity(map[int64]float64{1: 1, 2: 5, 3: 9}, opposed); !almostEqual(got, 0.0) {
		t.Errorf("Expected rating similarity 0.0, got %v", got)
	}

	// Insufficient signal: defined 0.
	if got := RatingSimilarity(map[int64]float64{1: 8}, map[int64]float64{1: 8}); got != 0.0 {
		t.Errorf("Expected rating similarity 0.0 for insufficient overlap, got %v", got)
	}
}

// TestPreferenceSimilarityMissingProfile verifies a nil profile yields 0.
func TestPreferenceSimilarityMissingProfile(t *testing.T) {
	profile := &catalog.PreferenceProfile{
		Categories: map[string]float64{"fiction": 1.0},
	}

	if got := PreferenceSimilarity(nil, profile); got != 0.0 {
		t.Errorf("Expected 0.0 with nil profile, got %v", got)
	}
	if got := PreferenceSimilarity(profile, nil); got != 0.0 {
		t.Errorf("Expected 0.0 with nil profile, got %v", got)
	}
}

// TestPreferenceSimilarityBlend verifies the 0.6/0.3/0.1 sub-blend.
func TestPreferenceSimilarityBlend(t *testing.T) {
	a := &catalog.PreferenceProfile{
		Categories: map[string]float64{"fiction": 1.0},
		Authors:    []string{"frank herbert"},
		Publishers: []string{"tor"},
	}
	b := &catalog.PreferenceProfile{
		Categories: map[string]float64{"fiction": 1.0},
		Authors:    []string{"frank herbert"},
		Publishers: []string{"tor"},
	}

	if got := PreferenceSimilarity(a, b); !almostEqual(got, 1.0) {
		t.Errorf("Expected preference similarity 1.0 for identical profiles, got %v", got)
	}

	// Only categories shared: 0.6 × 1.0.
	c := &catalog.PreferenceProfile{
		Categories: map[string]float64{"fiction": 1.0},
		Authors:    []string{"ursula le guin"},
		Publishers: []string{"harper"},
	}
	if got := PreferenceSimilarity(a, c); !almostEqual(got, 0.6) {
		t.Errorf("Expected preference similarity 0.6, got %v", got)
	}
}

// TestCompareUsers verifies the 0.6 preference / 0.4 rating blend.
func TestCompareUsers(t *testing.T) {
	profile := &catalog.PreferenceProfile{
		Categories: map[string]float64{"fiction": 1.0},
		Authors:    []string{"frank herbert"},
		Publishers: []string{"tor"},
	}
	ratings := map[int64]float64{1: 2, 2: 4, 3: 6}
	alignedRatings := map[int64]float64{1: 3, 2: 5, 3: 7}

	overall, preference, rating := CompareUsers(profile, profile, ratings, alignedRatings)

	if !almostEqual(preference, 1.0) {
		t.Errorf("Expected preference component 1.0, got %v", preference)
	}
	if !almostEqual(rating, 1.0) {
		t.Errorf("Expected rating component 1.0, got %v", rating)
	}
	if !almostEqual(overall, 1.0) {
		t.Errorf("Expected overall 1.0, got %v", overall)
	}

	// Missing profile: overall falls back to 0.4 × rating.
	overall, preference, _ = CompareUsers(nil, profile, ratings, alignedRatings)
	if preference != 0.0 {
		t.Errorf("Expected preference 0.0 without profile, got %v", preference)
	}
	if !almostEqual(overall, 0.4) {
		t.Errorf("Expected overall 0.4, got %v", overall)
	}
}
