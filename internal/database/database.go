// Package database opens the relational store and prepares its schema.
package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/axellelanca/linkshelf/internal/config"
	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/seeds"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL when a database URL is configured and to the
// local SQLite file otherwise.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.UsesPostgres() {
		dialector = postgres.Open(config.NormalizeDatabaseURL(cfg.Database.URL))
	} else {
		dialector = sqlite.Open(sqliteDSN(cfg.Database.Name))
	}

	logLevel := logger.Warn
	if cfg.Server.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", customerrors.ErrDatabaseConnection, cfg.DatabaseTarget(), err)
	}
	return db, nil
}

// sqliteDSN turns foreign key enforcement on, which SQLite leaves off per
// connection by default.
func sqliteDSN(name string) string {
	if strings.Contains(name, "_pragma=foreign_keys") {
		return name
	}
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + "_pragma=foreign_keys(1)"
}

// Migrate creates or updates the bookmarks, tags and bookmark_tags tables.
func Migrate(db *gorm.DB) error {
	// The join table has its own model so the pair is the primary key.
	if err := db.SetupJoinTable(&models.Bookmark{}, "Tags", &models.BookmarkTag{}); err != nil {
		return fmt.Errorf("failed to set up bookmark_tags join table: %w", err)
	}
	if err := db.AutoMigrate(&models.Tag{}, &models.Bookmark{}, &models.BookmarkTag{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Seed creates the seed tags that do not exist yet.
func Seed(tags repository.TagRepository) (int, error) {
	created, err := tags.EnsureTags(seeds.Tags)
	if err != nil {
		return 0, fmt.Errorf("failed to seed tags: %w", err)
	}
	return created, nil
}

// Bootstrap opens the database, migrates it and seeds the tag catalog.
// It must complete before the first request is served.
func Bootstrap(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		Close(db)
		return nil, err
	}
	created, err := Seed(repository.NewTagRepository(db))
	if err != nil {
		Close(db)
		return nil, err
	}
	log.Printf("[BOOTSTRAP] Database %s ready (%d seed tag(s) created).", cfg.DatabaseTarget(), created)
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("[BOOTSTRAP] Failed to get underlying SQL database: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("[BOOTSTRAP] Failed to close database: %v", err)
	}
}
