// Data models for persisted similarity records. A record represents an
// undirected pairwise relationship, stored in canonical order: the lower
// id always occupies the first slot.

package storage

// BookSimilarity is a persisted book-book similarity with its per-aspect
// component scores.
type BookSimilarity struct {
	// FirstID is the lower book id of the pair.
	FirstID int64 `json:"firstId"`

	// SecondID is the higher book id of the pair.
	SecondID int64 `json:"secondId"`

	// Overall is the combined weighted similarity in [0,1].
	Overall float64 `json:"overall"`

	// Per-aspect component scores in [0,1].
	Category    float64 `json:"category"`
	Keyword     float64 `json:"keyword"`
	Author      float64 `json:"author"`
	Description float64 `json:"description"`
}

// NewBookSimilarity builds a record in canonical order regardless of the
// argument order.
func NewBookSimilarity(aID, bID int64, overall, category, keyword, author, description float64) BookSimilarity {
	if aID > bID {
		aID, bID = bID, aID
	}
	return BookSimilarity{
		FirstID:     aID,
		SecondID:    bID,
		Overall:     overall,
		Category:    category,
		Keyword:     keyword,
		Author:      author,
		Description: description,
	}
}

// Other returns the id on the opposite side of the pair from subjectID.
func (r BookSimilarity) Other(subjectID int64) int64 {
	if r.FirstID == subjectID {
		return r.SecondID
	}
	return r.FirstID
}

// UserSimilarity is a persisted user-user similarity with its preference
// and rating component scores.
type UserSimilarity struct {
	FirstID  int64 `json:"firstId"`
	SecondID int64 `json:"secondId"`

	// Overall blends preference (60%) and rating (40%) similarity.
	Overall float64 `json:"overall"`

	// Preference is the declared-preference component in [0,1].
	Preference float64 `json:"preference"`

	// Rating is the rating-pattern (Pearson) component in [0,1].
	Rating float64 `json:"rating"`
}

// NewUserSimilarity builds a record in canonical order regardless of the
// argument order.
func NewUserSimilarity(aID, bID int64, overall, preference, rating float64) UserSimilarity {
	if aID > bID {
		aID, bID = bID, aID
	}
	return UserSimilarity{
		FirstID:    aID,
		SecondID:   bID,
		Overall:    overall,
		Preference: preference,
		Rating:     rating,
	}
}

// Other returns the id on the opposite side of the pair from subjectID.
func (r UserSimilarity) Other(subjectID int64) int64 {
	if r.FirstID == subjectID {
		return r.SecondID
	}
	return r.FirstID
}

// histogramBins is the number of equal-width score buckets in a stats
// distribution (0.0-0.1, 0.1-0.2, ..., 0.9-1.0].
const histogramBins = 10

// SimilarityStats aggregates a similarity table for admin reporting.
type SimilarityStats struct {
	// Count is the number of stored pair records.
	Count int `json:"count"`

	// Avg, Max and Min describe the overall score column.
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
	Min float64 `json:"min"`

	// Components maps component name to its average score.
	Components map[string]float64 `json:"components"`

	// Histogram counts records per 0.1-wide overall-score bucket.
	Histogram [histogramBins]int `json:"histogram"`
}
