package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/storage"
)

// RatingsCSV imports a ratings export with columns user_id,book_id,score.
//
// Scores outside [0,10] are rejected. Exports from the legacy system use a
// 1-5 scale; set FiveStarScale to convert them (score × 2) at the boundary
// so stored ratings are always 0-10.
type RatingsCSV struct {
	// FiveStarScale marks the file as using the legacy 1-5 scale.
	FiveStarScale bool
}

// Name identifies the source format.
func (r *RatingsCSV) Name() string { return "ratings-csv" }

// Import loads a ratings CSV into storage. Malformed rows are logged and
// skipped rather than aborting the import.
func (r *RatingsCSV) Import(path string, store storage.Storage) (Summary, error) {
	var summary Summary

	file, err := os.Open(path)
	if err != nil {
		return summary, fmt.Errorf("failed to open ratings export: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 3

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("Warning: skipping malformed ratings row %d: %v", line, err)
			summary.Skipped++
			continue
		}

		// Skip a header row.
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "user_id") {
			continue
		}

		rating, err := r.parseRow(record)
		if err != nil {
			log.Printf("Warning: skipping ratings row %d: %v", line, err)
			summary.Skipped++
			continue
		}

		if err := store.UpsertRating(rating); err != nil {
			return summary, err
		}
		summary.Ratings++
	}

	return summary, nil
}

// parseRow converts one CSV row into a canonical-scale rating.
func (r *RatingsCSV) parseRow(record []string) (catalog.Rating, error) {
	userID, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return catalog.Rating{}, fmt.Errorf("bad user id %q", record[0])
	}

	bookID, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
	if err != nil {
		return catalog.Rating{}, fmt.Errorf("bad book id %q", record[1])
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return catalog.Rating{}, fmt.Errorf("bad score %q", record[2])
	}

	if r.FiveStarScale {
		if score < 1 || score > 5 {
			return catalog.Rating{}, fmt.Errorf("score %v outside 1-5 scale", score)
		}
		score *= 2
	} else if score < 0 || score > 10 {
		return catalog.Rating{}, fmt.Errorf("score %v outside 0-10 scale", score)
	}

	return catalog.Rating{UserID: userID, BookID: bookID, Score: score}, nil
}
