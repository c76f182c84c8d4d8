package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/axellelanca/linkshelf/cmd"
	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/spf13/cobra"
)

var (
	urlFlag  string
	tagsFlag string
)

// AddCmd représente la commande 'add'
var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Ajoute un favori et récupère le titre de la page.",
	Long: `Cette commande enregistre une URL, récupère le titre de la page et
associe les tags connus passés en liste séparée par des virgules.

Exemple:
  linkshelf add --url="https://go.dev" --tags="learning,tools"`,
	Run: func(command *cobra.Command, args []string) {
		app, err := cmd.OpenApp(cmd.Cfg)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer app.Close()

		result, err := app.Service.AddBookmark(command.Context(), urlFlag, tagsFlag)
		if err != nil {
			if errors.Is(err, customerrors.ErrInvalidURL) {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			log.Fatalf("Failed to add bookmark: %v", err)
		}

		b := result.Bookmark
		fmt.Printf("Favori ajouté avec succès:\n")
		fmt.Printf("ID: %d\n", b.ID)
		fmt.Printf("Titre: %s\n", b.Title)
		if b.FetchError != "" {
			fmt.Printf("Titre indisponible: %s\n", b.FetchError)
		}
		if len(b.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(b.TagNames(), ", "))
		}
		if len(result.UnknownTags) > 0 {
			fmt.Printf("Tags inconnus ignorés: %s\n", strings.Join(result.UnknownTags, ", "))
		}
	},
}

func init() {
	AddCmd.Flags().StringVar(&urlFlag, "url", "", "The URL to bookmark")
	AddCmd.Flags().StringVar(&tagsFlag, "tags", "", "Comma-separated tag names")
	AddCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(AddCmd)
}
