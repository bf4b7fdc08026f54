package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khaile/bookwise/internal/config"
	"github.com/khaile/bookwise/internal/storage"
)

// NewInitCmd creates the 'init' command, which writes a default config and
// creates the database schema.
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration and database",
		Long:  `Write ~/.bookwise.json with default settings and create the SQLite schema.`,
		Example: `  bookwise init
  bookwise import catalog-json books.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit()
		},
	}
}

// runInit writes defaults and initializes the schema.
func runInit() error {
	configPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if err := config.Save(cfg, configPath); err != nil {
		return err
	}
	fmt.Printf("Wrote config: %s\n", configPath)

	store := storage.New(cfg.DBPath)
	if err := store.Init(); err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("Initialized database: %s\n", cfg.DBPath)
	fmt.Println("Next: import a catalog with 'bookwise import catalog-json <file>'")
	return nil
}
