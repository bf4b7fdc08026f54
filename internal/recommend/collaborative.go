package recommend

import (
	"context"
	"fmt"
	"log"
	"sort"
)

const (
	// neighborhoodSize is how many similar users vote on recommendations.
	neighborhoodSize = 20

	// likedThreshold is the minimum rating (0-10 scale) for a book to count
	// as liked by a similar user.
	likedThreshold = 7.0

	// ratingScale normalizes a 0-10 rating into a voting weight.
	ratingScale = 10.0
)

// Recommendation is one collaboratively recommended book.
type Recommendation struct {
	BookID int64   `json:"bookId"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`

	// Reason explains the recommendation ("liked by N similar readers").
	Reason string `json:"reason"`
}

// Recommendations produces collaborative-filtering recommendations for a
// user: books liked (rated >= 7/10) by the user's most similar neighbors
// that the user has not rated yet.
//
// Each candidate book is scored by weighted voting (the sum over similar
// users of similarity × rating/10), so a book liked by many moderately
// similar users can outrank one liked by a single highly similar user.
// The result list is always computed fresh; it is never persisted.
func (s *UserService) Recommendations(ctx context.Context, userID int64, limit int, minSimilarity float64) ([]Recommendation, error) {
	if limit <= 0 {
		limit = 10
	}

	neighbors, err := s.SimilarUsers(ctx, userID, neighborhoodSize, minSimilarity)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return []Recommendation{}, nil
	}

	ratings, err := s.users.GetRatings(userID)
	if err != nil {
		return nil, err
	}
	alreadyRated := make(map[int64]bool, len(ratings))
	for _, r := range ratings {
		alreadyRated[r.BookID] = true
	}

	scores := make(map[int64]float64)
	supporters := make(map[int64]int)

	for _, neighbor := range neighbors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		neighborRatings, err := s.users.GetRatings(neighbor.UserID)
		if err != nil {
			return nil, err
		}

		for _, r := range neighborRatings {
			if r.Score < likedThreshold || alreadyRated[r.BookID] {
				continue
			}
			scores[r.BookID] += neighbor.Score * (r.Score / ratingScale)
			supporters[r.BookID]++
		}
	}

	recommendations := make([]Recommendation, 0, len(scores))
	for bookID, score := range scores {
		book, err := s.books.GetBook(bookID)
		if err != nil {
			// Rated book no longer in the catalog.
			log.Printf("Warning: skipping recommendation for missing book %d: %v", bookID, err)
			continue
		}

		reason := fmt.Sprintf("liked by %d similar readers", supporters[bookID])
		if supporters[bookID] == 1 {
			reason = "liked by a similar reader"
		}

		recommendations = append(recommendations, Recommendation{
			BookID: bookID,
			Title:  book.Title,
			Score:  score,
			Reason: reason,
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		return recommendations[i].BookID < recommendations[j].BookID
	})

	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	return recommendations, nil
}
