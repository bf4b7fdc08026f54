package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

// NewComputeBooksCmd creates the 'compute-books' command.
func NewComputeBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compute-books [bookID]",
		Short: "Recompute persisted book similarities",
		Long: `Recompute and persist pairwise book similarities.

Without an argument the whole catalog is processed (O(N²); run this as an
offline job). Ctrl-C checkpoints the run; the next invocation resumes at
the interrupted page.`,
		Example: `  bookwise compute-books        # full catalog
  bookwise compute-books 42     # one book against the catalog`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComputeBooks(args)
		},
	}
}

// runComputeBooks recomputes one book or the whole catalog.
func runComputeBooks(args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(args) == 1 {
		bookID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[0])
		}

		count, err := eng.books.ComputeForBook(ctx, bookID)
		if err != nil {
			return err
		}
		fmt.Printf("Persisted %d similarity records for book %d\n", count, bookID)
		return nil
	}

	summary, err := eng.books.ComputeAll(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Printf("Interrupted after %d books (%d records); rerun to resume\n",
			summary.Processed, summary.Records)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Processed %d books (%d skipped), persisted %d similarity records\n",
		summary.Processed, summary.Skipped, summary.Records)
	return nil
}

// NewComputeUsersCmd creates the 'compute-users' command.
func NewComputeUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compute-users [userID]",
		Short: "Recompute persisted user similarities",
		Long: `Recompute and persist pairwise user similarities (declared preferences
blended with rating-pattern correlation). Without an argument every user is
processed; Ctrl-C checkpoints the run.`,
		Example: `  bookwise compute-users
  bookwise compute-users 7`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComputeUsers(args)
		},
	}
}

// runComputeUsers recomputes one user or all users.
func runComputeUsers(args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(args) == 1 {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		count, err := eng.users.ComputeForUser(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Printf("Persisted %d similarity records for user %d\n", count, userID)
		return nil
	}

	summary, err := eng.users.ComputeAll(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Printf("Interrupted after %d users (%d records); rerun to resume\n",
			summary.Processed, summary.Records)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Processed %d users (%d skipped), persisted %d similarity records\n",
		summary.Processed, summary.Skipped, summary.Records)
	return nil
}
