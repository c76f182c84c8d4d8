package cli

import (
	"fmt"
	"log"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/spf13/cobra"
)

// TagsCmd représente la commande 'tags'
var TagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Affiche le catalogue de tags.",
	Run: func(command *cobra.Command, args []string) {
		app, err := cmd.OpenApp(cmd.Cfg)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer app.Close()

		tags, err := app.Service.ListTags()
		if err != nil {
			log.Fatalf("Failed to list tags: %v", err)
		}
		for _, tag := range tags {
			fmt.Printf("%-10s %s\n", tag.Name, tag.Color)
		}
	},
}

func init() {
	cmd.RootCmd.AddCommand(TagsCmd)
}
