package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/axellelanca/linkshelf/internal/config"
	"github.com/spf13/cobra"
)

// Cfg is the global variable that will contain the loaded configuration
// It will be accessible to all Cobra commands throughout the application
var Cfg *config.Config

// RootCmd is the base command for the CLI application
// All other commands (run-server, migrate, add, list, tags, import-json, export-json)
// are added as subcommands
var RootCmd = &cobra.Command{
	Use:   "linkshelf",
	Short: "A personal bookmark manager",
	Long: `A personal bookmark manager that stores URLs with their page titles,
lets you tag, archive and search them, and keeps them in SQLite, PostgreSQL
or a JSON file.`,
}

// Execute is the main entry point for the Cobra application
// It is called from 'main.go' and handles command execution and error handling
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Configuration is loaded before any command executes
	cobra.OnInitialize(initConfig)

	// Subcommands register themselves via their own init() functions,
	// which keeps this package free of import cycles.
}

// initConfig loads the application configuration
// This function is called at the beginning of every Cobra command execution
// thanks to `cobra.OnInitialize(initConfig)` set up above
func initConfig() {
	var err error

	Cfg, err = config.LoadConfig()
	if err != nil {
		// A broken config file or an unknown backend would silently point the
		// commands at the wrong store, so stop here.
		log.Fatalf("FATAL: Problem loading configuration: %v", err)
	}
}
