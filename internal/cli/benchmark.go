package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khaile/bookwise/internal/benchmark"
	"github.com/khaile/bookwise/internal/feature"
)

// NewBenchmarkCmd creates the 'benchmark' command for batch cost estimation.
func NewBenchmarkCmd() *cobra.Command {
	var jsonOutput bool
	var sampleSize int

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Estimate how long a full similarity recompute would take",
		Long: `Time a bounded sample of real feature extraction and pairwise
comparisons over the catalog, then extrapolate to the full N·(N-1)/2 pair
count. Use this to size batch windows before scheduling compute-books on a
large catalog.`,
		Example: `  # Estimate with the default sample of 50 books
  bookwise benchmark

  # Larger sample for a steadier estimate
  bookwise benchmark --sample 200

  # Output as JSON
  bookwise benchmark --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(sampleSize, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().IntVar(&sampleSize, "sample", benchmark.DefaultSampleSize, "Number of books to sample")

	return cmd
}

// runBenchmark executes the batch cost estimate.
func runBenchmark(sampleSize int, jsonOutput bool) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	books, err := eng.store.ListBooks()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	extractor, err := feature.NewExtractor()
	if err != nil {
		return err
	}

	result, err := benchmark.EstimateBatch(books, extractor, sampleSize)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	fmt.Println(benchmark.FormatResult(result))
	return nil
}
