/*
Package main is the entry point for the bookwise CLI.

bookwise is a book cataloging and recommendation engine built around
content-based and collaborative similarity: book features (categories,
keywords, authors, description terms) become weighted sparse vectors,
user tastes become preference profiles and rating histories, and both are
compared pairwise and persisted so that lookups stay fast.

Usage:
  bookwise [command]

Available Commands:
  init           Initialize the local database
  import         Import catalog or rating data
  compute-books  Compute and persist book-to-book similarities
  compute-users  Compute and persist user-to-user similarities
  similar        Show books similar to a given book
  similar-users  Show users similar to a given user
  recommend      Recommend books for a user via similar readers
  search         Full-text search over the catalog
  rate           Record a rating
  stats          Show persisted similarity statistics
  benchmark      Estimate full recompute cost
  version        Show version information
  help           Help about any command

Examples:
  # One-time setup
  bookwise init
  bookwise import catalog library.json
  bookwise import ratings reviews.csv --five-star

  # Batch similarity passes
  bookwise compute-books
  bookwise compute-users

  # Queries
  bookwise similar 42 --details
  bookwise recommend 7 --limit 5
  bookwise search "space opera" --like 42
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khaile/bookwise/internal/cli"
	"github.com/khaile/bookwise/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bookwise",
		Short: "Book catalog with similarity-driven recommendations",
		Long: `bookwise catalogs books and recommends them by measuring similarity.

Books are compared on four weighted aspects (categories, keywords, authors,
description terms) using cosine similarity over sparse feature vectors.
Users are compared by blending preference-profile overlap with Pearson
correlation of their rating histories. Both kinds of pairwise scores are
precomputed in batch and persisted, so similar / recommend queries are a
single indexed lookup. When a book or user has no precomputed record yet,
queries fall back to computing against a bounded dynamic candidate set.`,
		Version: version.GetVersion(),
	}

	// Add subcommands
	rootCmd.AddCommand(cli.NewInitCmd())
	rootCmd.AddCommand(cli.NewImportCmd())
	rootCmd.AddCommand(cli.NewComputeBooksCmd())
	rootCmd.AddCommand(cli.NewComputeUsersCmd())
	rootCmd.AddCommand(cli.NewSimilarCmd())
	rootCmd.AddCommand(cli.NewSimilarUsersCmd())
	rootCmd.AddCommand(cli.NewRecommendCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewRateCmd())
	rootCmd.AddCommand(cli.NewStatsCmd())
	rootCmd.AddCommand(cli.NewBenchmarkCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
