// SQLite schema migrations and serialization helpers.

package storage

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/khaile/bookwise/internal/feature"
)

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	if s.db == nil {
		return nil
	}

	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "catalog_schema", up: s.migration001CatalogSchema},
		{version: 2, name: "similarity_schema", up: s.migration002SimilaritySchema},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version, m.name); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// setMigrationVersion records a migration as applied.
func (s *SQLiteStorage) setMigrationVersion(version int, name string) error {
	_, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", version, name)
	return err
}

// migration001CatalogSchema creates the catalog tables the engine reads.
func (s *SQLiteStorage) migration001CatalogSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT '',
			categories TEXT NOT NULL DEFAULT '[]',
			authors TEXT NOT NULL DEFAULT '[]',
			publisher TEXT NOT NULL DEFAULT '',
			review_count INTEGER NOT NULL DEFAULT 0,
			average_rating REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_books_review_count
			ON books(review_count DESC)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id INTEGER NOT NULL,
			book_id INTEGER NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (user_id, book_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_book
			ON ratings(book_id)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			user_id INTEGER PRIMARY KEY,
			categories TEXT NOT NULL DEFAULT '{}',
			authors TEXT NOT NULL DEFAULT '[]',
			publishers TEXT NOT NULL DEFAULT '[]'
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create catalog schema: %w", err)
		}
	}
	return nil
}

// migration002SimilaritySchema creates the derived tables the engine owns:
// the vector cache, both similarity tables and batch checkpoints.
func (s *SQLiteStorage) migration002SimilaritySchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS book_vectors (
			book_id INTEGER PRIMARY KEY,
			vector TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS book_similarity (
			first_id INTEGER NOT NULL,
			second_id INTEGER NOT NULL,
			overall REAL NOT NULL,
			category REAL NOT NULL,
			keyword REAL NOT NULL,
			author REAL NOT NULL,
			description REAL NOT NULL,
			PRIMARY KEY (first_id, second_id),
			CHECK (first_id < second_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_book_similarity_first
			ON book_similarity(first_id, overall DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_book_similarity_second
			ON book_similarity(second_id, overall DESC)`,
		`CREATE TABLE IF NOT EXISTS user_similarity (
			first_id INTEGER NOT NULL,
			second_id INTEGER NOT NULL,
			overall REAL NOT NULL,
			preference REAL NOT NULL,
			rating REAL NOT NULL,
			PRIMARY KEY (first_id, second_id),
			CHECK (first_id < second_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_similarity_first
			ON user_similarity(first_id, overall DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_user_similarity_second
			ON user_similarity(second_id, overall DESC)`,
		`CREATE TABLE IF NOT EXISTS batch_checkpoints (
			job TEXT PRIMARY KEY,
			next_page INTEGER NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create similarity schema: %w", err)
		}
	}
	return nil
}

// vectorToJSON serializes a book vector for storage.
func vectorToJSON(vector *feature.BookVector) (string, error) {
	data, err := json.Marshal(vector)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vector: %w", err)
	}
	return string(data), nil
}

// jsonToVector parses a stored JSON vector row.
func jsonToVector(jsonStr string) (*feature.BookVector, error) {
	var vector feature.BookVector
	if err := json.Unmarshal([]byte(jsonStr), &vector); err != nil {
		return nil, err
	}
	return &vector, nil
}

// namesToJSON serializes a name list for a catalog row.
func namesToJSON(names []string) string {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		log.Printf("Warning: failed to marshal name list: %v", err)
		return "[]"
	}
	return string(data)
}

// jsonToNames parses a stored JSON name list.
func jsonToNames(jsonStr string) []string {
	var names []string
	if err := json.Unmarshal([]byte(jsonStr), &names); err != nil {
		log.Printf("Warning: failed to parse name list: %v", err)
		return nil
	}
	return names
}

// weightsToJSON serializes a name -> weight map for a catalog row.
func weightsToJSON(weights map[string]float64) string {
	if weights == nil {
		weights = map[string]float64{}
	}
	data, err := json.Marshal(weights)
	if err != nil {
		log.Printf("Warning: failed to marshal weight map: %v", err)
		return "{}"
	}
	return string(data)
}

// jsonToWeights parses a stored JSON weight map.
func jsonToWeights(jsonStr string) map[string]float64 {
	var weights map[string]float64
	if err := json.Unmarshal([]byte(jsonStr), &weights); err != nil {
		log.Printf("Warning: failed to parse weight map: %v", err)
		return nil
	}
	return weights
}
