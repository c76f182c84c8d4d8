package repository

import (
	"errors"
	"fmt"

	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBookmarkRepository est l'implémentation de BookmarkRepository utilisant GORM.
type GormBookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository crée et retourne une nouvelle instance de GormBookmarkRepository.
func NewBookmarkRepository(db *gorm.DB) *GormBookmarkRepository {
	return &GormBookmarkRepository{db: db}
}

// CreateBookmark insère un bookmark et ses liens de tags dans une seule transaction.
// Link rows use insert-or-ignore, so repeated tag ids are harmless. An unknown
// tag id fails the whole insert with ErrTagNotFound.
func (r *GormBookmarkRepository) CreateBookmark(bookmark *models.Bookmark, tagIDs []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkTagIDs(tx, tagIDs); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(bookmark).Error; err != nil {
			return fmt.Errorf("failed to create bookmark: %w", err)
		}
		if len(tagIDs) == 0 {
			return nil
		}
		links := make([]models.BookmarkTag, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			links = append(links, models.BookmarkTag{BookmarkID: bookmark.ID, TagID: tagID})
		}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return fmt.Errorf("failed to link tags to bookmark %d: %w", bookmark.ID, err)
		}
		return nil
	})
	if err != nil {
		bookmark.ID = 0
		return err
	}

	tags, err := r.GetTagsForBookmark(bookmark.ID)
	if err != nil {
		return err
	}
	bookmark.Tags = tags
	return nil
}

// checkTagIDs vérifie que chaque id de tag existe dans le catalogue.
func checkTagIDs(tx *gorm.DB, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	unique := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		unique[id] = struct{}{}
	}
	ids := make([]uint, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}

	var found []uint
	if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to check tags: %w", err)
	}
	if len(found) == len(ids) {
		return nil
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range tagIDs {
		if !known[id] {
			return fmt.Errorf("failed to link tag %d: %w", id, customerrors.ErrTagNotFound)
		}
	}
	return nil
}

// GetBookmarkByID récupère un bookmark et ses tags.
func (r *GormBookmarkRepository) GetBookmarkByID(id uint) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := r.db.Preload("Tags", orderTags).First(&bookmark, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrBookmarkNotFound
		}
		return nil, fmt.Errorf("failed to get bookmark %d: %w", id, err)
	}
	return &bookmark, nil
}

// ListBookmarks récupère une partition, filtrée ou non.
func (r *GormBookmarkRepository) ListBookmarks(archived bool, query string) ([]models.Bookmark, error) {
	q := r.db.Preload("Tags", orderTags).Where("is_archived = ?", archived)
	if query != "" {
		pattern := likePattern(query)
		q = q.Where(`(LOWER(url) LIKE ? ESCAPE '\' OR LOWER(title) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var bookmarks []models.Bookmark
	if err := q.Order("id").Find(&bookmarks).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookmarks (archived=%t): %w", archived, err)
	}
	return bookmarks, nil
}

// SetArchived met à jour le flag d'archivage.
func (r *GormBookmarkRepository) SetArchived(id uint, archived bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var bookmark models.Bookmark
		if err := tx.Select("id").First(&bookmark, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return customerrors.ErrBookmarkNotFound
			}
			return fmt.Errorf("failed to get bookmark %d: %w", id, err)
		}
		if err := tx.Model(&models.Bookmark{}).Where("id = ?", id).Update("is_archived", archived).Error; err != nil {
			return fmt.Errorf("failed to set archived=%t on bookmark %d: %w", archived, id, err)
		}
		return nil
	})
}

// DeleteBookmark supprime les liens de tags puis le bookmark.
func (r *GormBookmarkRepository) DeleteBookmark(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bookmark_id = ?", id).Delete(&models.BookmarkTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete tag links of bookmark %d: %w", id, err)
		}
		result := tx.Delete(&models.Bookmark{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete bookmark %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return customerrors.ErrBookmarkNotFound
		}
		return nil
	})
}

// DetachTag supprime un lien bookmark/tag.
func (r *GormBookmarkRepository) DetachTag(bookmarkID, tagID uint) (bool, error) {
	result := r.db.Where("bookmark_id = ? AND tag_id = ?", bookmarkID, tagID).Delete(&models.BookmarkTag{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to detach tag %d from bookmark %d: %w", tagID, bookmarkID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetTagsForBookmark récupère les tags liés à un bookmark.
func (r *GormBookmarkRepository) GetTagsForBookmark(id uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Model(&models.Tag{}).
		Joins("JOIN bookmark_tags ON bookmark_tags.tag_id = tags.id").
		Where("bookmark_tags.bookmark_id = ?", id).
		Order("tags.id").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for bookmark %d: %w", id, err)
	}
	return tags, nil
}

// GetFailedFetches récupère les bookmarks dont le titre n'a pas pu être récupéré.
func (r *GormBookmarkRepository) GetFailedFetches() ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	if err := r.db.Where("fetch_error <> ''").Order("id").Find(&bookmarks).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookmarks with fetch errors: %w", err)
	}
	return bookmarks, nil
}

// UpdateTitle remplace le titre et l'erreur de récupération.
func (r *GormBookmarkRepository) UpdateTitle(id uint, title, fetchError string) error {
	result := r.db.Model(&models.Bookmark{}).Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "fetch_error": fetchError})
	if result.Error != nil {
		return fmt.Errorf("failed to update title of bookmark %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return customerrors.ErrBookmarkNotFound
	}
	return nil
}

// CountBookmarks compte les bookmarks des deux partitions.
func (r *GormBookmarkRepository) CountBookmarks() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Bookmark{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return count, nil
}

func orderTags(db *gorm.DB) *gorm.DB {
	return db.Order("tags.id")
}
