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

// NewRecommendCmd creates the 'recommend' command for collaborative
// filtering recommendations.
func NewRecommendCmd() *cobra.Command {
	var limit int
	var minSimilarity float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recommend <userID>",
		Short: "Recommend books via collaborative filtering",
		Long: `Recommend books liked by the user's most similar readers that the user
has not rated yet. Candidates are scored by weighted voting across the
similar-user neighborhood, so broad agreement beats a single enthusiast.`,
		Example: `  bookwise recommend 7
  bookwise recommend 7 --limit 5 --min 0.4 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			return runRecommend(userID, limit, minSimilarity, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of recommendations")
	cmd.Flags().Float64VarP(&minSimilarity, "min", "m", -1, "Minimum neighbor similarity (default: configured threshold)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runRecommend prints collaborative recommendations for a user.
func runRecommend(userID int64, limit int, minSimilarity float64, jsonOutput bool) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	recommendations, err := eng.users.Recommendations(context.Background(), userID, limit, minSimilarity)
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("user %d does not exist", userID)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(recommendations)
	}

	if len(recommendations) == 0 {
		fmt.Println("No recommendations yet: similar users haven't rated anything new for you.")
		return nil
	}

	fmt.Printf("Recommendations for user %d:\n\n", userID)
	for rank, rec := range recommendations {
		fmt.Printf("  %2d. %s (id %d)  score %.3f (%s)\n", rank+1, rec.Title, rec.BookID, rec.Score, rec.Reason)
	}
	return nil
}
