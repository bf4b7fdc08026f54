/*
Package storage implements the persistent layer of the similarity engine.

It provides SQLite-based storage (modernc.org/sqlite, pure Go, CGo-free)
for the book catalog, users, ratings, preference profiles, the
feature-vector cache, pairwise similarity records, and batch-job
checkpoints.

Similarity records are canonical: the lower entity id is always stored in
the first slot, so each undirected pair exists exactly once regardless of
which side initiated the computation.
*/
package storage

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/feature"
)

// Storage defines the persistence operations the engine depends on.
type Storage interface {
	catalog.BookRepository
	catalog.UserRepository

	// Init opens the database and runs migrations.
	Init() error

	// Close closes the database connection.
	Close() error

	// UpsertBook inserts or replaces a catalog book.
	UpsertBook(book *catalog.Book) error

	// UpsertUser inserts or replaces a user.
	UpsertUser(user *catalog.User) error

	// UpsertRating inserts or replaces a rating.
	UpsertRating(rating catalog.Rating) error

	// UpsertPreferences inserts or replaces a user's preference profile.
	UpsertPreferences(profile *catalog.PreferenceProfile) error

	// SaveBookVector caches a computed feature vector (last write wins).
	SaveBookVector(vector *feature.BookVector) error

	// GetBookVector retrieves a cached feature vector, or nil if absent.
	GetBookVector(bookID int64) (*feature.BookVector, error)

	// DeleteBookVector drops a cached feature vector so the next
	// computation rebuilds it from current book state.
	DeleteBookVector(bookID int64) error

	// ReplaceBookSimilarities atomically deletes every stored similarity
	// touching bookID and inserts the given records in one transaction.
	ReplaceBookSimilarities(bookID int64, records []BookSimilarity) error

	// BookSimilaritiesFor returns stored similarities touching bookID,
	// ordered by score descending, filtered by minScore, truncated to limit.
	BookSimilaritiesFor(bookID int64, limit int, minScore float64) ([]BookSimilarity, error)

	// HasBookSimilarities reports whether any stored similarity touches bookID.
	HasBookSimilarities(bookID int64) (bool, error)

	// ReplaceUserSimilarities mirrors ReplaceBookSimilarities for users.
	ReplaceUserSimilarities(userID int64, records []UserSimilarity) error

	// UserSimilaritiesFor mirrors BookSimilaritiesFor for users.
	UserSimilaritiesFor(userID int64, limit int, minScore float64) ([]UserSimilarity, error)

	// HasUserSimilarities reports whether any stored similarity touches userID.
	HasUserSimilarities(userID int64) (bool, error)

	// BookSimilarityStats aggregates stored book similarities.
	BookSimilarityStats() (*SimilarityStats, error)

	// UserSimilarityStats aggregates stored user similarities.
	UserSimilarityStats() (*SimilarityStats, error)

	// SaveCheckpoint records the next page a batch job should process.
	SaveCheckpoint(job string, nextPage int) error

	// GetCheckpoint returns the next page for a batch job (0 when none).
	GetCheckpoint(job string) (int, error)

	// ClearCheckpoint removes a batch job's checkpoint.
	ClearCheckpoint(job string) error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	mu       sync.Mutex
	initOnce sync.Once
}

// New creates a SQLite storage instance for the given database path.
// Use ":memory:" for an in-memory database (tests).
func New(dbPath string) *SQLiteStorage {
	return &SQLiteStorage{dbPath: dbPath}
}

// Init opens the database, verifies the connection and runs migrations.
func (s *SQLiteStorage) Init() error {
	var initErr error
	s.initOnce.Do(func() {
		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}

		// All access is serialized by the storage mutex; a single
		// connection also keeps ":memory:" databases coherent.
		db.SetMaxOpenConns(1)

		if err := db.Ping(); err != nil {
			db.Close()
			initErr = fmt.Errorf("failed to ping database: %w", err)
			return
		}

		s.db = db

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}
	})
	return initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}
