package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/axellelanca/linkshelf/internal/config"
	"github.com/axellelanca/linkshelf/internal/filestore"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var fileFlag string

// ImportJSONCmd copies a urls.json document into the relational store.
var ImportJSONCmd = &cobra.Command{
	Use:   "import-json",
	Short: "Imports a JSON bookmark file into the database.",
	Long: `This command reads a JSON bookmark document ({"active": [...], "archived": [...]}
or a plain array of active entries) and inserts every entry into the database,
keeping stored titles. Tags missing from the catalog are dropped.

Example:
  linkshelf import-json --file urls.json`,
	Run: func(command *cobra.Command, args []string) {
		cfg := cmd.Cfg
		if cfg.Storage.Backend != config.BackendSQL {
			fmt.Println("Error: import-json needs storage.backend=sql")
			os.Exit(1)
		}
		if _, err := os.Stat(fileFlag); err != nil {
			fmt.Printf("Error: cannot read %s: %v\n", fileFlag, err)
			os.Exit(1)
		}

		state, err := filestore.NewStore(fileFlag).Load()
		if err != nil {
			log.Fatalf("Failed to load %s: %v", fileFlag, err)
		}

		app, err := cmd.OpenApp(cfg)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer app.Close()

		bar := progressbar.Default(int64(state.Len()), "Importing")
		report, err := app.Service.ImportState(state, func() { _ = bar.Add(1) })
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		_ = bar.Finish()

		fmt.Printf("Imported %d bookmark(s): %d active, %d archived.\n", report.Total(), report.Active, report.Archived)
		if report.Failed > 0 {
			fmt.Printf("%d entr(ies) could not be imported, see the log above.\n", report.Failed)
		}
	},
}

// ExportJSONCmd writes the stored bookmarks as a urls.json document.
var ExportJSONCmd = &cobra.Command{
	Use:   "export-json",
	Short: "Exports all bookmarks to a JSON file.",
	Run: func(command *cobra.Command, args []string) {
		app, err := cmd.OpenApp(cmd.Cfg)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer app.Close()

		state, err := app.Service.ExportState()
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		if err := filestore.NewStore(fileFlag).Save(state); err != nil {
			log.Fatalf("Failed to write %s: %v", fileFlag, err)
		}

		fmt.Printf("Exported %d bookmark(s) to %s.\n", state.Len(), fileFlag)
	},
}

func init() {
	ImportJSONCmd.Flags().StringVar(&fileFlag, "file", "urls.json", "JSON document to import")
	ExportJSONCmd.Flags().StringVar(&fileFlag, "file", "urls.json", "JSON document to write")

	cmd.RootCmd.AddCommand(ImportJSONCmd, ExportJSONCmd)
}
