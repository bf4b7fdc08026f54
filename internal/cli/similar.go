package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/khaile/bookwise/internal/catalog"
)

// NewSimilarCmd creates the 'similar' command for ranked book neighbors.
func NewSimilarCmd() *cobra.Command {
	var limit int
	var minSimilarity float64
	var details bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "similar <bookID>",
		Short: "List books most similar to a book",
		Long: `Rank the catalog neighbors of a book by content similarity.

Served from persisted similarity records when available; otherwise computed
on the fly against the most-reviewed candidate books.`,
		Example: `  bookwise similar 42
  bookwise similar 42 --limit 5 --details
  bookwise similar 42 --min 0.2 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			return runSimilar(bookID, limit, minSimilarity, details, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of results")
	cmd.Flags().Float64VarP(&minSimilarity, "min", "m", -1, "Minimum similarity (default: configured threshold)")
	cmd.Flags().BoolVarP(&details, "details", "d", false, "Show per-aspect similarity breakdown")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runSimilar prints the ranked neighbors of a book.
//
// API-facing failure semantics: a missing book reports cleanly; the caller
// never sees a stack trace.
func runSimilar(bookID int64, limit int, minSimilarity float64, details, jsonOutput bool) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	results, err := eng.books.SimilarBooks(context.Background(), bookID, limit, minSimilarity, details)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("book %d is not in the catalog", bookID)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No similar books found.")
		return nil
	}

	fmt.Printf("Books similar to %d:\n\n", bookID)
	for rank, result := range results {
		fmt.Printf("  %2d. %s (id %d)  score %.3f\n", rank+1, result.Book.Title, result.Book.ID, result.Score)
		if details && result.Details != nil {
			fmt.Printf("      category %.3f  keyword %.3f  author %.3f  description %.3f\n",
				result.Details.Category, result.Details.Keyword,
				result.Details.Author, result.Details.Description)
		}
	}
	return nil
}

// NewSimilarUsersCmd creates the 'similar-users' command.
func NewSimilarUsersCmd() *cobra.Command {
	var limit int
	var minSimilarity float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "similar-users <userID>",
		Short: "List users most similar to a user",
		Example: `  bookwise similar-users 7
  bookwise similar-users 7 --limit 5 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			return runSimilarUsers(userID, limit, minSimilarity, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of results")
	cmd.Flags().Float64VarP(&minSimilarity, "min", "m", -1, "Minimum similarity (default: configured threshold)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runSimilarUsers prints the ranked neighbors of a user.
func runSimilarUsers(userID int64, limit int, minSimilarity float64, jsonOutput bool) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	results, err := eng.users.SimilarUsers(context.Background(), userID, limit, minSimilarity)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("user %d does not exist", userID)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No similar users found.")
		return nil
	}

	fmt.Printf("Users similar to %d:\n\n", userID)
	for rank, result := range results {
		fmt.Printf("  %2d. user %d  score %.3f  (preference %.3f, rating %.3f)\n",
			rank+1, result.UserID, result.Score, result.Preference, result.Rating)
	}
	return nil
}
