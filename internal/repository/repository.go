// Package repository defines the data access interfaces for bookmarks and tags
// and their GORM and JSON document implementations.
package repository

import (
	"strings"

	"github.com/axellelanca/linkshelf/internal/models"
)

// BookmarkRepository est une interface qui définit les méthodes d'accès aux données
// des bookmarks. Lookups by id return customerrors.ErrBookmarkNotFound when
// nothing matches.
type BookmarkRepository interface {
	// CreateBookmark stores the bookmark and links it to tagIDs as one unit.
	CreateBookmark(bookmark *models.Bookmark, tagIDs []uint) error
	GetBookmarkByID(id uint) (*models.Bookmark, error)
	// ListBookmarks returns one partition in insertion order. A non-empty query
	// keeps only bookmarks whose URL or title contains it, ignoring case.
	ListBookmarks(archived bool, query string) ([]models.Bookmark, error)
	SetArchived(id uint, archived bool) error
	// DeleteBookmark removes the tag links, then the bookmark.
	DeleteBookmark(id uint) error
	// DetachTag reports whether a link was removed.
	DetachTag(bookmarkID, tagID uint) (bool, error)
	GetTagsForBookmark(id uint) ([]models.Tag, error)
	GetFailedFetches() ([]models.Bookmark, error)
	UpdateTitle(id uint, title, fetchError string) error
	CountBookmarks() (int64, error)
}

// TagRepository gives access to the tag catalog.
type TagRepository interface {
	GetAllTags() ([]models.Tag, error)
	// GetTagsByNames returns the known tags among names, in catalog order.
	GetTagsByNames(names []string) ([]models.Tag, error)
	GetTagByName(name string) (*models.Tag, error)
	// EnsureTags creates the missing tags and returns how many were created.
	EnsureTags(tags []models.Tag) (int, error)
}

// matchesQuery is the in-memory equivalent of the LIKE filter in the GORM store.
func matchesQuery(url, title, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(url), q) || strings.Contains(strings.ToLower(title), q)
}

// likePattern builds a LIKE pattern for a substring match, escaping the
// wildcard characters with a backslash.
func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(query))
	return "%" + escaped + "%"
}
