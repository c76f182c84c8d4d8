package repository

import (
	"errors"
	"fmt"

	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
	"gorm.io/gorm"
)

// GormTagRepository est l'implémentation de TagRepository utilisant GORM.
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository crée et retourne une nouvelle instance de GormTagRepository.
func NewTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// GetAllTags récupère tous les tags.
func (r *GormTagRepository) GetAllTags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve tags: %w", err)
	}
	return tags, nil
}

// GetTagsByNames récupère les tags connus parmi names.
func (r *GormTagRepository) GetTagsByNames(names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := r.db.Where("name IN ?", names).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve tags %v: %w", names, err)
	}
	return tags, nil
}

// GetTagByName récupère un tag par son nom.
func (r *GormTagRepository) GetTagByName(name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag %q: %w", name, err)
	}
	return &tag, nil
}

// EnsureTags crée les tags absents; les tags existants ne sont pas modifiés.
func (r *GormTagRepository) EnsureTags(tags []models.Tag) (int, error) {
	created := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, tag := range tags {
			var existing int64
			if err := tx.Model(&models.Tag{}).Where("name = ?", tag.Name).Count(&existing).Error; err != nil {
				return fmt.Errorf("failed to look up tag %q: %w", tag.Name, err)
			}
			if existing > 0 {
				continue
			}
			row := models.Tag{Name: tag.Name, Color: tag.Color}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create tag %q: %w", tag.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
