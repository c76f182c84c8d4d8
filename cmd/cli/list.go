package cli

import (
	"fmt"
	"log"
	"strings"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/spf13/cobra"
)

var (
	queryFlag    string
	archivedFlag bool
)

// ListCmd représente la commande 'list'
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Affiche les favoris actifs, ou archivés avec --archived.",
	Run: func(command *cobra.Command, args []string) {
		app, err := cmd.OpenApp(cmd.Cfg)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer app.Close()

		listing, err := app.Service.ListBookmarks(queryFlag)
		if err != nil {
			log.Fatalf("Failed to list bookmarks: %v", err)
		}

		bookmarks := listing.Active
		if archivedFlag {
			bookmarks = listing.Archived
		}
		if listing.SearchMode {
			fmt.Printf("Résultats pour %q\n", listing.Query)
		}
		if len(bookmarks) == 0 {
			fmt.Println("Aucun favori.")
			return
		}
		for _, b := range bookmarks {
			printBookmark(b)
		}
	},
}

func printBookmark(b models.Bookmark) {
	fmt.Printf("[%d] %s\n     %s\n", b.ID, b.Title, b.URL)
	if len(b.Tags) > 0 {
		fmt.Printf("     tags: %s\n", strings.Join(b.TagNames(), ", "))
	}
}

func init() {
	ListCmd.Flags().StringVar(&queryFlag, "query", "", "Case-insensitive filter on URL and title")
	ListCmd.Flags().BoolVar(&archivedFlag, "archived", false, "List archived bookmarks instead of active ones")

	cmd.RootCmd.AddCommand(ListCmd)
}
