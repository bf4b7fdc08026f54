/*
Package similarity implements the metric math of the recommendation engine:
cosine similarity over sparse vectors, per-aspect breakdowns for book
vectors, Jaccard set overlap, and Pearson rating correlation.

All scores are bounded to [0,1]. A score of 0 is the defined result for
"no features in common" or "not enough shared signal", never an error.
*/
package similarity

import (
	"math"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/feature"
)

const (
	// preferenceWeight and ratingWeight blend the two user sub-scores.
	preferenceWeight = 0.6
	ratingWeight     = 0.4

	// Preference sub-blend: declared category cosine, author overlap,
	// publisher overlap.
	prefCategoryWeight  = 0.6
	prefAuthorWeight    = 0.3
	prefPublisherWeight = 0.1

	// minCoRated is the minimum number of co-rated books required for a
	// meaningful Pearson correlation.
	minCoRated = 2
)

// Cosine returns the cosine similarity of two sparse non-negative vectors.
//
// The union of both key sets defines the comparison dimension; missing keys
// contribute 0. If either norm is 0 the result is 0.0, the defined policy
// for disjoint or empty feature sets, not an error.
func Cosine(a, b feature.Vector) float64 {
	normA := a.NormSquared()
	normB := b.NormSquared()
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return a.Dot(b) / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Breakdown holds the per-aspect component scores of a book pair.
type Breakdown struct {
	Category    float64 `json:"category"`
	Keyword     float64 `json:"keyword"`
	Author      float64 `json:"author"`
	Description float64 `json:"description"`
}

// aspect returns the component score for one aspect.
func (b Breakdown) aspect(a feature.Aspect) float64 {
	switch a {
	case feature.AspectCategory:
		return b.Category
	case feature.AspectKeyword:
		return b.Keyword
	case feature.AspectAuthor:
		return b.Author
	case feature.AspectDescription:
		return b.Description
	}
	return 0
}

// CompareBooks computes the similarity of two book vectors: the per-aspect
// cosine breakdown plus the overall score, which blends the aspect scores
// with the fixed aspect weights (0.4 category, 0.3 keyword, 0.2 author,
// 0.1 description).
//
// Keeping the aspects separate lets callers both rank by the overall score
// and explain a ranking by its components.
func CompareBooks(a, b *feature.BookVector) (float64, Breakdown) {
	breakdown := Breakdown{
		Category:    Cosine(a.Aspect(feature.AspectCategory), b.Aspect(feature.AspectCategory)),
		Keyword:     Cosine(a.Aspect(feature.AspectKeyword), b.Aspect(feature.AspectKeyword)),
		Author:      Cosine(a.Aspect(feature.AspectAuthor), b.Aspect(feature.AspectAuthor)),
		Description: Cosine(a.Aspect(feature.AspectDescription), b.Aspect(feature.AspectDescription)),
	}

	var overall float64
	for _, aspect := range feature.Aspects {
		overall += feature.AspectWeights[aspect] * breakdown.aspect(aspect)
	}

	return overall, breakdown
}

// Jaccard returns the set-overlap similarity of two name lists:
// |intersection| / |union|. Two empty lists yield 0.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := make(map[string]bool, len(a))
	for _, name := range a {
		setA[name] = true
	}

	union := len(setA)
	intersection := 0
	seen := make(map[string]bool, len(b))
	for _, name := range b {
		if seen[name] {
			continue
		}
		seen[name] = true
		if setA[name] {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Pearson returns the Pearson correlation of the scores both maps assign to
// their common keys, in [-1,1]. If fewer than minCoRated keys are shared,
// or either side has zero variance on the shared keys, it returns (0, false).
func Pearson(a, b map[int64]float64) (float64, bool) {
	var common []int64
	for id := range a {
		if _, ok := b[id]; ok {
			common = append(common, id)
		}
	}
	if len(common) < minCoRated {
		return 0, false
	}

	n := float64(len(common))
	var meanA, meanB float64
	for _, id := range common {
		meanA += a[id]
		meanB += b[id]
	}
	meanA /= n
	meanB /= n

	var numerator, sumSqA, sumSqB float64
	for _, id := range common {
		da := a[id] - meanA
		db := b[id] - meanB
		numerator += da * db
		sumSqA += da * da
		sumSqB += db * db
	}

	if sumSqA == 0 || sumSqB == 0 {
		return 0, false
	}

	return numerator / math.Sqrt(sumSqA*sumSqB), true
}

// RatingSimilarity computes the rating-pattern similarity of two users from
// their bookID -> score maps. The raw Pearson correlation in [-1,1] is
// rescaled to [0,1] via (r+1)/2 so it composes with the non-negative
// preference score. Insufficient signal (fewer than 2 co-rated books, or
// constant ratings) is a defined 0, not an error.
func RatingSimilarity(a, b map[int64]float64) float64 {
	r, ok := Pearson(a, b)
	if !ok {
		return 0.0
	}
	return (r + 1) / 2
}

// PreferenceSimilarity computes the declared-preference similarity of two
// users: weighted category cosine (60%), preferred-author Jaccard (30%)
// and preferred-publisher Jaccard (10%). A missing profile on either side
// yields 0.
func PreferenceSimilarity(a, b *catalog.PreferenceProfile) float64 {
	if a == nil || b == nil {
		return 0.0
	}

	categories := Cosine(feature.PreferenceVector(a.Categories), feature.PreferenceVector(b.Categories))
	authors := Jaccard(a.Authors, b.Authors)
	publishers := Jaccard(a.Publishers, b.Publishers)

	return prefCategoryWeight*categories + prefAuthorWeight*authors + prefPublisherWeight*publishers
}

// CompareUsers blends declared-preference similarity (60%) with
// rating-pattern similarity (40%) and returns the overall score plus both
// components.
func CompareUsers(prefA, prefB *catalog.PreferenceProfile, ratingsA, ratingsB map[int64]float64) (overall, preference, rating float64) {
	preference = PreferenceSimilarity(prefA, prefB)
	rating = RatingSimilarity(ratingsA, ratingsB)
	overall = preferenceWeight*preference + ratingWeight*rating
	return overall, preference, rating
}
