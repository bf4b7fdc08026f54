package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khaile/bookwise/internal/storage"
)

// NewStatsCmd creates the 'stats' command for similarity statistics.
func NewStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show persisted similarity statistics",
		Long: `Summarize the persisted similarity tables: record counts, score
aggregates, per-component averages and a score distribution histogram.`,
		Example: `  bookwise stats
  bookwise stats --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runStats prints aggregates of both similarity tables.
func runStats(jsonOutput bool) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	bookStats, err := eng.books.Stats()
	if err != nil {
		return err
	}
	userStats, err := eng.users.Stats()
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]*storage.SimilarityStats{
			"books": bookStats,
			"users": userStats,
		})
	}

	printStats("Book similarities", bookStats)
	fmt.Println()
	printStats("User similarities", userStats)
	return nil
}

// printStats renders one stats block.
func printStats(title string, stats *storage.SimilarityStats) {
	fmt.Printf("%s (%d records)\n", title, stats.Count)
	if stats.Count == 0 {
		fmt.Println("  (none persisted yet; run a compute command)")
		return
	}

	fmt.Printf("  Score:  avg %.3f  min %.3f  max %.3f\n", stats.Avg, stats.Min, stats.Max)
	fmt.Printf("  Components:")
	for name, avg := range stats.Components {
		fmt.Printf("  %s %.3f", name, avg)
	}
	fmt.Println()

	fmt.Printf("  Distribution:\n")
	for bin, count := range stats.Histogram {
		if count == 0 {
			continue
		}
		fmt.Printf("    %.1f-%.1f  %d\n", float64(bin)/10, float64(bin+1)/10, count)
	}
}
