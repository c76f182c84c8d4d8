package cli

import (
	"fmt"
	"log"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/axellelanca/linkshelf/internal/config"
	"github.com/axellelanca/linkshelf/internal/database"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/spf13/cobra"
)

// MigrateCmd represents the 'migrate' command
// This command handles database schema creation and the seed tags
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations and seeds the default tags.",
	Long: `This command connects to the configured database (SQLite, or PostgreSQL
when DATABASE_URL is set) and executes GORM automatic migrations to create the
'bookmarks', 'tags' and 'bookmark_tags' tables, then inserts the default tags
that are missing.`,
	Run: func(command *cobra.Command, args []string) {
		cfg := cmd.Cfg
		if cfg.Storage.Backend == config.BackendJSON {
			fmt.Println("The json backend has no schema; nothing to migrate.")
			return
		}

		db, err := database.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			log.Fatalf("%v", err)
		}

		created, err := database.Seed(repository.NewTagRepository(db))
		if err != nil {
			log.Fatalf("%v", err)
		}

		fmt.Println("Database migrations executed successfully.")
		fmt.Printf("%d seed tag(s) created.\n", created)
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
