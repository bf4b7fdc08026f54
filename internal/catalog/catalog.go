/*
Package catalog defines the domain entities of the book catalog and the
repository interfaces the similarity engine consumes.

The engine only reads books, users, ratings and preference profiles; it never
mutates them. Ownership of those records stays with the surrounding
application (import pipeline, rating ingest, admin tooling).
*/
package catalog

import "errors"

// ErrNotFound is returned when a referenced entity id does not exist.
var ErrNotFound = errors.New("entity not found")

// Book is a catalog entry. Content fields may be edited externally; the
// similarity engine treats them as read-only input.
type Book struct {
	// ID is the stable identity of the book.
	ID int64 `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Description is free text used for term extraction.
	Description string `json:"description"`

	// Keywords is a comma-separated keyword list.
	Keywords string `json:"keywords"`

	// Categories are category tag names.
	Categories []string `json:"categories"`

	// Authors are author full names.
	Authors []string `json:"authors"`

	// Publisher is the publisher name.
	Publisher string `json:"publisher,omitempty"`

	// ReviewCount is the number of reviews, used for popularity ranking.
	ReviewCount int `json:"reviewCount"`

	// AverageRating is the mean rating on the 0-10 scale.
	AverageRating float64 `json:"averageRating"`
}

// User is a reader account. Only the id matters to the engine; everything
// else it needs comes from ratings and the preference profile.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Rating is a (user, book, score) triple on the canonical 0-10 scale.
//
// The surrounding application historically stored some ratings on a 1-5
// scale; the importer converts those at the boundary so the engine only
// ever sees 0-10.
type Rating struct {
	UserID int64   `json:"userId"`
	BookID int64   `json:"bookId"`
	Score  float64 `json:"score"`
}

// PreferenceProfile holds a user's declared reading preferences.
type PreferenceProfile struct {
	UserID int64 `json:"userId"`

	// Categories maps category name to a declared weight in [0,1].
	Categories map[string]float64 `json:"categories"`

	// Authors are preferred author names (unweighted).
	Authors []string `json:"authors"`

	// Publishers are preferred publisher names (unweighted).
	Publishers []string `json:"publishers"`
}

// BookRepository is the read-side view of the catalog the engine needs.
type BookRepository interface {
	// GetBook returns a book by id, or ErrNotFound.
	GetBook(id int64) (*Book, error)

	// ListBookIDs returns all book ids in ascending order.
	ListBookIDs() ([]int64, error)

	// ListBooks returns all books.
	ListBooks() ([]*Book, error)

	// MostReviewedBooks returns up to limit books ordered by review count
	// descending, excluding the given id. Used to bound cache-miss fallback
	// computation to likely-relevant candidates.
	MostReviewedBooks(limit int, exclude int64) ([]*Book, error)
}

// UserRepository is the read-side view of users, ratings and preferences.
type UserRepository interface {
	// GetUser returns a user by id, or ErrNotFound.
	GetUser(id int64) (*User, error)

	// ListUserIDs returns all user ids in ascending order.
	ListUserIDs() ([]int64, error)

	// GetRatings returns all ratings by a user.
	GetRatings(userID int64) ([]Rating, error)

	// GetPreferences returns a user's declared preference profile, or nil
	// if the user never filled one in. A missing profile is not an error.
	GetPreferences(userID int64) (*PreferenceProfile, error)

	// MostActiveUsers returns up to limit user ids ordered by rating count
	// descending, excluding the given id. Bounds cache-miss fallback for
	// user similarity queries.
	MostActiveUsers(limit int, exclude int64) ([]int64, error)
}

// RatingsByBook converts a rating slice into a bookID -> score map.
func RatingsByBook(ratings []Rating) map[int64]float64 {
	byBook := make(map[int64]float64, len(ratings))
	for _, r := range ratings {
		byBook[r.BookID] = r.Score
	}
	return byBook
}
