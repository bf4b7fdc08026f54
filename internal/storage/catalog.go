package storage

import (
	"database/sql"
	"fmt"

	"github.com/khaile/bookwise/internal/catalog"
)

// UpsertBook inserts or replaces a catalog book.
func (s *SQLiteStorage) UpsertBook(book *catalog.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR REPLACE INTO books
			(id, title, description, keywords, categories, authors, publisher, review_count, average_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		book.ID,
		book.Title,
		book.Description,
		book.Keywords,
		namesToJSON(book.Categories),
		namesToJSON(book.Authors),
		book.Publisher,
		book.ReviewCount,
		book.AverageRating,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert book %d: %w", book.ID, err)
	}
	return nil
}

// scanBook reads one book row.
func scanBook(row interface{ Scan(...any) error }) (*catalog.Book, error) {
	var book catalog.Book
	var categories, authors string

	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Description,
		&book.Keywords,
		&categories,
		&authors,
		&book.Publisher,
		&book.ReviewCount,
		&book.AverageRating,
	)
	if err != nil {
		return nil, err
	}

	book.Categories = jsonToNames(categories)
	book.Authors = jsonToNames(authors)
	return &book, nil
}

const bookColumns = "id, title, description, keywords, categories, authors, publisher, review_count, average_rating"

// GetBook returns a book by id, or catalog.ErrNotFound.
func (s *SQLiteStorage) GetBook(id int64) (*catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow("SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	return book, nil
}

// ListBookIDs returns all book ids in ascending order.
func (s *SQLiteStorage) ListBookIDs() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id FROM books ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list book ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListBooks returns all books ordered by id.
func (s *SQLiteStorage) ListBooks() ([]*catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT " + bookColumns + " FROM books ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*catalog.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// MostReviewedBooks returns up to limit books by review count descending,
// excluding the given id.
func (s *SQLiteStorage) MostReviewedBooks(limit int, exclude int64) ([]*catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	query := "SELECT " + bookColumns + ` FROM books
		WHERE id != ?
		ORDER BY review_count DESC, id
		LIMIT ?`

	rows, err := s.db.Query(query, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most reviewed books: %w", err)
	}
	defer rows.Close()

	var books []*catalog.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// UpsertUser inserts or replaces a user.
func (s *SQLiteStorage) UpsertUser(user *catalog.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT OR REPLACE INTO users (id, name) VALUES (?, ?)", user.ID, user.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}
	return nil
}

// GetUser returns a user by id, or catalog.ErrNotFound.
func (s *SQLiteStorage) GetUser(id int64) (*catalog.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user catalog.User
	err := s.db.QueryRow("SELECT id, name FROM users WHERE id = ?", id).Scan(&user.ID, &user.Name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// ListUserIDs returns all user ids in ascending order.
func (s *SQLiteStorage) ListUserIDs() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertRating inserts or replaces a rating.
func (s *SQLiteStorage) UpsertRating(rating catalog.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "INSERT OR REPLACE INTO ratings (user_id, book_id, score) VALUES (?, ?, ?)"
	if _, err := s.db.Exec(query, rating.UserID, rating.BookID, rating.Score); err != nil {
		return fmt.Errorf("failed to upsert rating (%d, %d): %w", rating.UserID, rating.BookID, err)
	}
	return nil
}

// GetRatings returns all ratings by a user.
func (s *SQLiteStorage) GetRatings(userID int64) ([]catalog.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT user_id, book_id, score FROM ratings WHERE user_id = ? ORDER BY book_id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ratings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var ratings []catalog.Rating
	for rows.Next() {
		var r catalog.Rating
		if err := rows.Scan(&r.UserID, &r.BookID, &r.Score); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

// MostActiveUsers returns up to limit user ids by rating count descending,
// excluding the given id.
func (s *SQLiteStorage) MostActiveUsers(limit int, exclude int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT user_id FROM ratings
		WHERE user_id != ?
		GROUP BY user_id
		ORDER BY COUNT(*) DESC, user_id
		LIMIT ?
	`

	rows, err := s.db.Query(query, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most active users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertPreferences inserts or replaces a user's preference profile.
func (s *SQLiteStorage) UpsertPreferences(profile *catalog.PreferenceProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR REPLACE INTO preferences (user_id, categories, authors, publishers)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		profile.UserID,
		weightsToJSON(profile.Categories),
		namesToJSON(profile.Authors),
		namesToJSON(profile.Publishers),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences for user %d: %w", profile.UserID, err)
	}
	return nil
}

// GetPreferences returns a user's preference profile, or nil when the user
// never declared one. A missing profile is not an error.
func (s *SQLiteStorage) GetPreferences(userID int64) (*catalog.PreferenceProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var categories, authors, publishers string
	err := s.db.QueryRow(
		"SELECT categories, authors, publishers FROM preferences WHERE user_id = ?", userID).
		Scan(&categories, &authors, &publishers)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences for user %d: %w", userID, err)
	}

	return &catalog.PreferenceProfile{
		UserID:     userID,
		Categories: jsonToWeights(categories),
		Authors:    jsonToNames(authors),
		Publishers: jsonToNames(publishers),
	}, nil
}
