package repository

import (
	"context"
	"errors"

	"worklog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryRepository defines the interface for entry data operations. Writes
// that touch tags run in one transaction together with the entry row.
type EntryRepository interface {
	CreateWithTags(ctx context.Context, entry *models.Entry, tags []models.Tag) error
	UpdateWithTags(ctx context.Context, entry *models.Entry, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	GetBySlug(ctx context.Context, slug string) (*models.Entry, error)
	List(ctx context.Context) ([]*models.Entry, error)
	ListByTagSlug(ctx context.Context, tagSlug string) ([]*models.Entry, error)
}

type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func tagsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("tags.id ASC")
}

// CreateWithTags inserts entry and its tags. A slug collision yields
// models.ErrEntryExists and nothing is written.
func (r *entryRepository) CreateWithTags(ctx context.Context, entry *models.Entry, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
			return err
		}
		return insertTags(tx, entry.ID, tags)
	})
	if isUniqueViolation(err) {
		return models.ErrEntryExists
	}
	if err != nil {
		return err
	}
	entry.Tags = tags
	return nil
}

// UpdateWithTags saves entry and replaces its whole tag set: existing tags
// are deleted and tags inserted, so tag IDs never survive an edit.
func (r *entryRepository) UpdateWithTags(ctx context.Context, entry *models.Entry, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(entry).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", entry.ID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		return insertTags(tx, entry.ID, tags)
	})
	if isUniqueViolation(err) {
		return models.ErrEntryExists
	}
	if err != nil {
		return err
	}
	entry.Tags = tags
	return nil
}

// Delete removes the entry and all of its tags. It returns
// gorm.ErrRecordNotFound when no entry has id.
func (r *entryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Entry{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetBySlug returns (nil, nil) when no entry has slug.
func (r *entryRepository) GetBySlug(ctx context.Context, slug string) (*models.Entry, error) {
	var entry models.Entry
	err := r.db.WithContext(ctx).
		Preload("Tags", tagsInOrder).
		Where("slug = ?", slug).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns every entry, newest first.
func (r *entryRepository) List(ctx context.Context) ([]*models.Entry, error) {
	var entries []*models.Entry
	err := r.db.WithContext(ctx).
		Preload("Tags", tagsInOrder).
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}

// ListByTagSlug returns the entries carrying at least one tag with tagSlug,
// newest first and each entry once.
func (r *entryRepository) ListByTagSlug(ctx context.Context, tagSlug string) ([]*models.Entry, error) {
	var entries []*models.Entry
	sub := r.db.Model(&models.Tag{}).Select("entry_id").Where("slug = ?", tagSlug)
	err := r.db.WithContext(ctx).
		Preload("Tags", tagsInOrder).
		Where("id IN (?)", sub).
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}

func insertTags(tx *gorm.DB, entryID uint, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	for i := range tags {
		tags[i].ID = 0
		tags[i].EntryID = entryID
	}
	return tx.Create(&tags).Error
}
