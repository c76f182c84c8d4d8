package cmd

import (
	"fmt"
	"log"

	"github.com/axellelanca/linkshelf/internal/config"
	"github.com/axellelanca/linkshelf/internal/database"
	"github.com/axellelanca/linkshelf/internal/fetcher"
	"github.com/axellelanca/linkshelf/internal/filestore"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/seeds"
	"github.com/axellelanca/linkshelf/internal/services"
	"gorm.io/gorm"
)

// App groups what the commands need once storage is open.
type App struct {
	Service *services.BookmarkService

	// DB is nil for the json backend.
	DB *gorm.DB
}

// Close releases the database connection, if any.
func (a *App) Close() {
	if a.DB != nil {
		database.Close(a.DB)
	}
}

// OpenApp opens the configured storage backend and wires the repositories and
// the bookmark service on top of it.
func OpenApp(cfg *config.Config) (*App, error) {
	titleFetcher := fetcher.NewHTTPTitleFetcher(cfg.Fetcher.Timeout, cfg.Fetcher.UserAgent)

	if cfg.Storage.Backend == config.BackendJSON {
		repo := repository.NewJSONRepository(filestore.NewStore(cfg.Storage.JSONPath), seeds.Catalog())
		log.Printf("Using JSON storage at %s", cfg.Storage.JSONPath)
		return &App{Service: services.NewBookmarkService(repo, repo, titleFetcher)}, nil
	}

	db, err := database.Bootstrap(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	bookmarkRepo := repository.NewBookmarkRepository(db)
	tagRepo := repository.NewTagRepository(db)
	log.Println("Repositories initialisés.")

	return &App{
		Service: services.NewBookmarkService(bookmarkRepo, tagRepo, titleFetcher),
		DB:      db,
	}, nil
}
