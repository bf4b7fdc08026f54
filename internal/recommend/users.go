package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/similarity"
	"github.com/khaile/bookwise/internal/storage"
)

const (
	// DefaultUserThreshold is the minimum similarity persisted for user
	// pairs. Higher than the book threshold because user features are
	// sparser and noisier.
	DefaultUserThreshold = 0.3

	// userBatchJob names the checkpoint row of the user compute-all job.
	userBatchJob = "user-similarity"
)

// UserServiceOptions tunes a UserService. Zero values select defaults.
type UserServiceOptions struct {
	// MinSimilarity is the persistence threshold (default 0.3).
	MinSimilarity float64

	// FallbackCandidates bounds dynamic cache-miss computation to the
	// most-active users (default 100).
	FallbackCandidates int

	// PageSize is the batch page size (default 50).
	PageSize int

	// Workers is the worker-pool size for batch runs (default 1, serial).
	Workers int
}

// UserService computes and serves user-user similarities and
// collaborative-filtering recommendations.
type UserService struct {
	store storage.Storage
	users catalog.UserRepository
	books catalog.BookRepository
	opts  UserServiceOptions
}

// SimilarUser is one ranked neighbor of a subject user.
type SimilarUser struct {
	UserID     int64   `json:"userId"`
	Score      float64 `json:"score"`
	Preference float64 `json:"preference"`
	Rating     float64 `json:"rating"`
}

// NewUserService creates a user similarity service.
func NewUserService(store storage.Storage, users catalog.UserRepository, books catalog.BookRepository, opts UserServiceOptions) *UserService {
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = DefaultUserThreshold
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

	return &UserService{
		store: store,
		users: users,
		books: books,
		opts:  opts,
	}
}

// userSignals bundles the two similarity inputs of one user.
type userSignals struct {
	profile *catalog.PreferenceProfile
	ratings map[int64]float64
}

// signalsFor loads a user's preference profile and rating map.
func (s *UserService) signalsFor(userID int64) (userSignals, error) {
	profile, err := s.users.GetPreferences(userID)
	if err != nil {
		return userSignals{}, err
	}

	ratings, err := s.users.GetRatings(userID)
	if err != nil {
		return userSignals{}, err
	}

	return userSignals{
		profile: profile,
		ratings: catalog.RatingsByBook(ratings),
	}, nil
}

// ComputeForUser recomputes and persists the similarities of one user
// against every other user, and returns the number of records persisted.
func (s *UserService) ComputeForUser(ctx context.Context, userID int64) (int, error) {
	if _, err := s.users.GetUser(userID); err != nil {
		return 0, err
	}

	subject, err := s.signalsFor(userID)
	if err != nil {
		return 0, err
	}

	others, err := s.users.ListUserIDs()
	if err != nil {
		return 0, err
	}

	records := make([]storage.UserSimilarity, 0, len(others))
	for _, otherID := range others {
		if otherID == userID {
			continue
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		other, err := s.signalsFor(otherID)
		if err != nil {
			return 0, err
		}

		overall, preference, rating := similarity.CompareUsers(
			subject.profile, other.profile, subject.ratings, other.ratings)
		if overall < s.opts.MinSimilarity {
			continue
		}

		records = append(records, storage.NewUserSimilarity(userID, otherID, overall, preference, rating))
	}

	if err := s.store.ReplaceUserSimilarities(userID, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ComputeAll recomputes similarities for every user, chunked and
// checkpointed like the book batch.
func (s *UserService) ComputeAll(ctx context.Context) (BatchSummary, error) {
	ids, err := s.users.ListUserIDs()
	if err != nil {
		return BatchSummary{}, err
	}

	job := &batchJob{
		name:     userBatchJob,
		ids:      ids,
		pageSize: s.opts.PageSize,
		workers:  s.opts.Workers,
		store:    s.store,
		process:  s.ComputeForUser,
	}
	return job.run(ctx)
}

// SimilarUsers returns the ranked neighbors of a user: persisted records
// when present, otherwise a bounded dynamic computation against the
// most-active users (never persisted).
func (s *UserService) SimilarUsers(ctx context.Context, userID int64, limit int, minSimilarity float64) ([]SimilarUser, error) {
	if limit <= 0 {
		limit = 10
	}
	if minSimilarity < 0 {
		minSimilarity = s.opts.MinSimilarity
	}

	if _, err := s.users.GetUser(userID); err != nil {
		return nil, err
	}

	cached, err := s.store.HasUserSimilarities(userID)
	if err != nil {
		return nil, err
	}

	if cached {
		records, err := s.store.UserSimilaritiesFor(userID, limit, minSimilarity)
		if err != nil {
			return nil, err
		}

		results := make([]SimilarUser, 0, len(records))
		for _, r := range records {
			results = append(results, SimilarUser{
				UserID:     r.Other(userID),
				Score:      r.Overall,
				Preference: r.Preference,
				Rating:     r.Rating,
			})
		}
		return results, nil
	}

	return s.similarDynamic(ctx, userID, limit, minSimilarity)
}

// similarDynamic computes user neighbors on the fly against the most-active
// candidates.
func (s *UserService) similarDynamic(ctx context.Context, userID int64, limit int, minSimilarity float64) ([]SimilarUser, error) {
	subject, err := s.signalsFor(userID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.users.MostActiveUsers(s.opts.FallbackCandidates, userID)
	if err != nil {
		return nil, err
	}

	results := make([]SimilarUser, 0, len(candidates))
	for _, candidateID := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate, err := s.signalsFor(candidateID)
		if err != nil {
			return nil, err
		}

		overall, preference, rating := similarity.CompareUsers(
			subject.profile, candidate.profile, subject.ratings, candidate.ratings)
		if overall < minSimilarity {
			continue
		}

		results = append(results, SimilarUser{
			UserID:     candidateID,
			Score:      overall,
			Preference: preference,
			Rating:     rating,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].UserID < results[j].UserID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Stats aggregates the persisted user similarity records.
func (s *UserService) Stats() (*storage.SimilarityStats, error) {
	stats, err := s.store.UserSimilarityStats()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user similarities: %w", err)
	}
	return stats, nil
}
