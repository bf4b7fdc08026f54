package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/khaile/bookwise/internal/catalog"
	"github.com/khaile/bookwise/internal/ingest"
)

// NewRateCmd creates the 'rate' command for recording a rating.
func NewRateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate <userID> <bookID> <score>",
		Short: "Record a rating (0-10 scale)",
		Long: `Record one rating on the canonical 0-10 scale. Ratings go through the
buffered ingest path, the same one the application's write endpoints use.`,
		Example: `  bookwise rate 7 42 9`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRate(args)
		},
	}
	return cmd
}

// runRate parses and records one rating.
func runRate(args []string) error {
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}
	bookID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid book id %q", args[1])
	}
	score, err := strconv.ParseFloat(args[2], 64)
	if err != nil || score < 0 || score > 10 {
		return fmt.Errorf("score must be a number between 0 and 10, got %q", args[2])
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if _, err := eng.store.GetUser(userID); err != nil {
		return fmt.Errorf("user %d does not exist", userID)
	}
	if _, err := eng.store.GetBook(bookID); err != nil {
		return fmt.Errorf("book %d is not in the catalog", bookID)
	}

	tracker := ingest.NewRatingTracker(eng.store)
	tracker.Record(catalog.Rating{UserID: userID, BookID: bookID, Score: score})
	tracker.Stop() // flushes the queue

	fmt.Printf("Recorded rating: user %d rated book %d at %.1f/10\n", userID, bookID, score)
	return nil
}
