package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khaile/bookwise/internal/importer"
)

// NewImportCmd creates the 'import' command for loading catalog exports.
func NewImportCmd() *cobra.Command {
	var fiveStar bool

	cmd := &cobra.Command{
		Use:   "import <source> <file>",
		Short: "Import catalog data from an external export",
		Long: `Load books, users, preferences or ratings into the catalog database.

Sources:
  catalog-json  JSON export with books and users (incl. preference profiles)
  ratings-csv   CSV export with user_id,book_id,score rows`,
		Example: `  bookwise import catalog-json library.json
  bookwise import ratings-csv ratings.csv
  bookwise import ratings-csv legacy.csv --five-star   # 1-5 scale, converted to 0-10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], args[1], fiveStar)
		},
	}

	cmd.Flags().BoolVar(&fiveStar, "five-star", false, "Treat CSV scores as legacy 1-5 scale")

	return cmd
}

// runImport loads one export file into storage.
func runImport(sourceName, path string, fiveStar bool) error {
	source, err := importer.ForName(sourceName)
	if err != nil {
		return err
	}

	if csvSource, ok := source.(*importer.RatingsCSV); ok {
		csvSource.FiveStarScale = fiveStar
	} else if fiveStar {
		return fmt.Errorf("--five-star only applies to ratings-csv")
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	summary, err := source.Import(path, eng.store)
	if err != nil {
		return err
	}

	fmt.Printf("Imported from %s:\n", path)
	if summary.Books > 0 {
		fmt.Printf("  Books:       %d\n", summary.Books)
	}
	if summary.Users > 0 {
		fmt.Printf("  Users:       %d\n", summary.Users)
	}
	if summary.Preferences > 0 {
		fmt.Printf("  Preferences: %d\n", summary.Preferences)
	}
	if summary.Ratings > 0 {
		fmt.Printf("  Ratings:     %d\n", summary.Ratings)
	}
	if summary.Skipped > 0 {
		fmt.Printf("  Skipped:     %d (see warnings above)\n", summary.Skipped)
	}
	return nil
}
