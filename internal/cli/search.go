package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/khaile/bookwise/internal/search"
)

// NewSearchCmd creates the 'search' command for keyword catalog search.
func NewSearchCmd() *cobra.Command {
	var limit int
	var category string
	var likeBookID int64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by keyword",
		Long: `BM25 keyword search over titles, descriptions, categories and authors.

With --like, hits are re-ranked by blending keyword relevance with stored
content similarity to the given seed book.`,
		Example: `  bookwise search "space opera"
  bookwise search dragons --category fantasy
  bookwise search detective --like 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args[0], limit, category, likeBookID, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of results")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Restrict results to a category")
	cmd.Flags().Int64Var(&likeBookID, "like", 0, "Re-rank by similarity to this book id")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runSearch builds the in-memory index from the catalog and executes the
// query.
func runSearch(queryText string, limit int, category string, likeBookID int64, jsonOutput bool) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	var indexer *search.Indexer
	if eng.cfg.IndexPath != "" {
		indexer, err = search.NewIndexerWithPath(eng.cfg.IndexPath)
	} else {
		indexer, err = search.NewIndexer()
	}
	if err != nil {
		return err
	}
	defer indexer.Close()

	books, err := eng.store.ListBooks()
	if err != nil {
		return err
	}
	if err := indexer.IndexBooks(books); err != nil {
		return err
	}

	var results []search.Result
	switch {
	case category != "":
		results, err = indexer.SearchByCategory(queryText, category, limit)
	case likeBookID > 0:
		records, recErr := eng.store.BookSimilaritiesFor(likeBookID, len(books), 0)
		if recErr != nil {
			return recErr
		}
		scores := make(map[int64]float64, len(records))
		for _, r := range records {
			scores[r.Other(likeBookID)] = r.Overall
		}
		seed := func(bookID int64) (float64, bool) {
			score, ok := scores[bookID]
			return score, ok
		}
		results, err = indexer.SearchHybrid(queryText, limit, seed, search.DefaultFusionConfig)
	default:
		results, err = indexer.SearchBM25(queryText, limit)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No matching books.")
		return nil
	}

	fmt.Printf("Search results for %q:\n\n", queryText)
	for rank, result := range results {
		title := "(unknown)"
		if book, err := eng.store.GetBook(result.BookID); err == nil {
			title = book.Title
		}
		fmt.Printf("  %2d. %s (id %s)  score %.3f\n",
			rank+1, title, strconv.FormatInt(result.BookID, 10), result.Score)
	}
	return nil
}
