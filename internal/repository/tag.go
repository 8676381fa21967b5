package repository

import (
	"context"

	"worklog/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines the interface for tag read operations. Tags are
// written only through EntryRepository.
type TagRepository interface {
	ListDistinct(ctx context.Context) ([]models.TagSummary, error)
	ListByEntry(ctx context.Context, entryID uint) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// ListDistinct returns each (tag, slug) pair once, alphabetically.
func (r *tagRepository) ListDistinct(ctx context.Context) ([]models.TagSummary, error) {
	var tags []models.TagSummary
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Distinct("tag", "slug").
		Order("tag ASC, slug ASC").
		Scan(&tags).Error
	return tags, err
}

func (r *tagRepository) ListByEntry(ctx context.Context, entryID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("id ASC").
		Find(&tags).Error
	return tags, err
}
