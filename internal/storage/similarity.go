package storage

import (
	"database/sql"
	"fmt"

	"github.com/khaile/bookwise/internal/feature"
)

// SaveBookVector caches a computed feature vector. Recomputation simply
// overwrites the previous row (last write wins).
func (s *SQLiteStorage) SaveBookVector(vector *feature.BookVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vectorJSON, err := vectorToJSON(vector)
	if err != nil {
		return err
	}

	query := `
		INSERT OR REPLACE INTO book_vectors (book_id, vector, updated_at)
		VALUES (?, ?, datetime('now'))
	`

	if _, err := s.db.Exec(query, vector.BookID, vectorJSON); err != nil {
		return fmt.Errorf("failed to save vector for book %d: %w", vector.BookID, err)
	}
	return nil
}

// GetBookVector retrieves a cached feature vector, or nil if absent.
func (s *SQLiteStorage) GetBookVector(bookID int64) (*feature.BookVector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var vectorJSON string
	err := s.db.QueryRow("SELECT vector FROM book_vectors WHERE book_id = ?", bookID).Scan(&vectorJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vector for book %d: %w", bookID, err)
	}

	vector, err := jsonToVector(vectorJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vector for book %d: %w", bookID, err)
	}
	return vector, nil
}

// DeleteBookVector drops a cached feature vector.
func (s *SQLiteStorage) DeleteBookVector(bookID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM book_vectors WHERE book_id = ?", bookID); err != nil {
		return fmt.Errorf("failed to delete vector for book %d: %w", bookID, err)
	}
	return nil
}

// ReplaceBookSimilarities atomically replaces every stored similarity
// touching bookID with the given records.
//
// The delete-then-insert happens in one transaction, so concurrent readers
// never observe a partial delete, and two writers racing on the same pair
// resolve structurally rather than through application-level conflict
// handling.
func (s *SQLiteStorage) ReplaceBookSimilarities(bookID int64, records []BookSimilarity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM book_similarity WHERE first_id = ? OR second_id = ?", bookID, bookID); err != nil {
		return fmt.Errorf("failed to delete stale similarities for book %d: %w", bookID, err)
	}

	insert := `
		INSERT OR REPLACE INTO book_similarity
			(first_id, second_id, overall, category, keyword, author, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for _, r := range records {
		if r.FirstID == r.SecondID {
			continue // self-similarity is never persisted
		}
		if _, err := tx.Exec(insert,
			r.FirstID, r.SecondID, r.Overall, r.Category, r.Keyword, r.Author, r.Description); err != nil {
			return fmt.Errorf("failed to insert similarity (%d, %d): %w", r.FirstID, r.SecondID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit similarities for book %d: %w", bookID, err)
	}
	return nil
}

// BookSimilaritiesFor returns stored similarities touching bookID, ordered
// by overall score descending, filtered by minScore, truncated to limit.
func (s *SQLiteStorage) BookSimilaritiesFor(bookID int64, limit int, minScore float64) ([]BookSimilarity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT first_id, second_id, overall, category, keyword, author, description
		FROM book_similarity
		WHERE (first_id = ? OR second_id = ?) AND overall >= ?
		ORDER BY overall DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, bookID, bookID, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similarities for book %d: %w", bookID, err)
	}
	defer rows.Close()

	var records []BookSimilarity
	for rows.Next() {
		var r BookSimilarity
		if err := rows.Scan(&r.FirstID, &r.SecondID, &r.Overall, &r.Category, &r.Keyword, &r.Author, &r.Description); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// HasBookSimilarities reports whether any stored similarity touches bookID.
func (s *SQLiteStorage) HasBookSimilarities(bookID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM book_similarity WHERE first_id = ? OR second_id = ?", bookID, bookID).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count similarities for book %d: %w", bookID, err)
	}
	return count > 0, nil
}

// ReplaceUserSimilarities mirrors ReplaceBookSimilarities for users.
func (s *SQLiteStorage) ReplaceUserSimilarities(userID int64, records []UserSimilarity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM user_similarity WHERE first_id = ? OR second_id = ?", userID, userID); err != nil {
		return fmt.Errorf("failed to delete stale similarities for user %d: %w", userID, err)
	}

	insert := `
		INSERT OR REPLACE INTO user_similarity
			(first_id, second_id, overall, preference, rating)
		VALUES (?, ?, ?, ?, ?)
	`

	for _, r := range records {
		if r.FirstID == r.SecondID {
			continue
		}
		if _, err := tx.Exec(insert, r.FirstID, r.SecondID, r.Overall, r.Preference, r.Rating); err != nil {
			return fmt.Errorf("failed to insert similarity (%d, %d): %w", r.FirstID, r.SecondID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit similarities for user %d: %w", userID, err)
	}
	return nil
}

// UserSimilaritiesFor mirrors BookSimilaritiesFor for users.
func (s *SQLiteStorage) UserSimilaritiesFor(userID int64, limit int, minScore float64) ([]UserSimilarity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT first_id, second_id, overall, preference, rating
		FROM user_similarity
		WHERE (first_id = ? OR second_id = ?) AND overall >= ?
		ORDER BY overall DESC
		LIMIT ?
	`

	rows, err := s.db.Query(query, userID, userID, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similarities for user %d: %w", userID, err)
	}
	defer rows.Close()

	var records []UserSimilarity
	for rows.Next() {
		var r UserSimilarity
		if err := rows.Scan(&r.FirstID, &r.SecondID, &r.Overall, &r.Preference, &r.Rating); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// HasUserSimilarities reports whether any stored similarity touches userID.
func (s *SQLiteStorage) HasUserSimilarities(userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM user_similarity WHERE first_id = ? OR second_id = ?", userID, userID).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count similarities for user %d: %w", userID, err)
	}
	return count > 0, nil
}

// BookSimilarityStats aggregates the book similarity table.
func (s *SQLiteStorage) BookSimilarityStats() (*SimilarityStats, error) {
	components := map[string]string{
		"category":    "category",
		"keyword":     "keyword",
		"author":      "author",
		"description": "description",
	}
	return s.similarityStats("book_similarity", components)
}

// UserSimilarityStats aggregates the user similarity table.
func (s *SQLiteStorage) UserSimilarityStats() (*SimilarityStats, error) {
	components := map[string]string{
		"preference": "preference",
		"rating":     "rating",
	}
	return s.similarityStats("user_similarity", components)
}

// similarityStats aggregates one similarity table: count/avg/max/min of the
// overall column, per-component averages and a 10-bucket score histogram.
func (s *SQLiteStorage) similarityStats(table string, components map[string]string) (*SimilarityStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &SimilarityStats{Components: make(map[string]float64, len(components))}

	query := fmt.Sprintf(
		"SELECT COUNT(*), COALESCE(AVG(overall), 0), COALESCE(MAX(overall), 0), COALESCE(MIN(overall), 0) FROM %s",
		table)
	if err := s.db.QueryRow(query).Scan(&stats.Count, &stats.Avg, &stats.Max, &stats.Min); err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", table, err)
	}

	for name, column := range components {
		var avg float64
		query := fmt.Sprintf("SELECT COALESCE(AVG(%s), 0) FROM %s", column, table)
		if err := s.db.QueryRow(query).Scan(&avg); err != nil {
			return nil, fmt.Errorf("failed to average %s.%s: %w", table, column, err)
		}
		stats.Components[name] = avg
	}

	// Bucket scores into [0,0.1), ..., [0.9,1.0]; a perfect 1.0 lands in
	// the top bucket.
	histQuery := fmt.Sprintf(`
		SELECT MIN(CAST(overall * 10 AS INTEGER), 9) AS bin, COUNT(*)
		FROM %s
		GROUP BY bin
	`, table)

	rows, err := s.db.Query(histQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to build histogram for %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var bin, count int
		if err := rows.Scan(&bin, &count); err != nil {
			return nil, err
		}
		if bin >= 0 && bin < histogramBins {
			stats.Histogram[bin] = count
		}
	}
	return stats, rows.Err()
}

// SaveCheckpoint records the next page a batch job should process.
func (s *SQLiteStorage) SaveCheckpoint(job string, nextPage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR REPLACE INTO batch_checkpoints (job, next_page, updated_at)
		VALUES (?, ?, datetime('now'))
	`
	if _, err := s.db.Exec(query, job, nextPage); err != nil {
		return fmt.Errorf("failed to save checkpoint for job %q: %w", job, err)
	}
	return nil
}

// GetCheckpoint returns the next page for a batch job, or 0 when the job
// has no checkpoint (fresh start).
func (s *SQLiteStorage) GetCheckpoint(job string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nextPage int
	err := s.db.QueryRow("SELECT next_page FROM batch_checkpoints WHERE job = ?", job).Scan(&nextPage)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get checkpoint for job %q: %w", job, err)
	}
	return nextPage, nil
}

// ClearCheckpoint removes a batch job's checkpoint after completion.
func (s *SQLiteStorage) ClearCheckpoint(job string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM batch_checkpoints WHERE job = ?", job); err != nil {
		return fmt.Errorf("failed to clear checkpoint for job %q: %w", job, err)
	}
	return nil
}
