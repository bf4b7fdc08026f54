package search

import (
	"sort"
)

// FusionConfig defines weights for hybrid score fusion.
type FusionConfig struct {
	KeywordWeight    float64
	SimilarityWeight float64
}

// DefaultFusionConfig balances keyword relevance (70%) against content
// similarity to the seed book (30%). BM25 scores are unbounded while
// similarity scores live in [0,1], so keyword relevance keeps the larger
// share to stay the primary ranking signal.
var DefaultFusionConfig = FusionConfig{
	KeywordWeight:    0.7,
	SimilarityWeight: 0.3,
}

// SeedScorer returns the content similarity of a candidate book to some
// fixed seed book, and whether a score is known. Typically backed by the
// persisted similarity records of the recommendation engine.
type SeedScorer func(bookID int64) (float64, bool)

// SearchHybrid performs keyword search and re-ranks hits by fusing the BM25
// score with content similarity to a seed book ("more like this one, about
// that topic"). With a nil scorer it degrades to plain BM25.
func (i *Indexer) SearchHybrid(queryText string, limit int, seed SeedScorer, config FusionConfig) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	// Over-fetch so re-ranking has candidates to promote.
	keywordResults, err := i.SearchBM25(queryText, limit*2)
	if err != nil {
		return nil, err
	}

	if seed == nil {
		if len(keywordResults) > limit {
			keywordResults = keywordResults[:limit]
		}
		return keywordResults, nil
	}

	fused := make([]Result, 0, len(keywordResults))
	for _, result := range keywordResults {
		score := config.KeywordWeight * result.Score
		if sim, ok := seed(result.BookID); ok {
			score += config.SimilarityWeight * sim
		}
		fused = append(fused, Result{BookID: result.BookID, Score: score})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].BookID < fused[j].BookID
	})

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}
