package service

import (
	"context"
	"strings"

	"worklog/internal/cache"
	"worklog/internal/middleware"
	"worklog/internal/models"
	"worklog/internal/observability"
	"worklog/internal/repository"
	"worklog/internal/slug"

	"go.opentelemetry.io/otel/attribute"
)

type EntryService struct {
	entries  repository.EntryRepository
	validate *Validator
}

func NewEntryService(entries repository.EntryRepository) *EntryService {
	return &EntryService{entries: entries, validate: NewValidator()}
}

// Create validates form and stores a new entry with its tags.
func (s *EntryService) Create(ctx context.Context, form EntryForm) (entry *models.Entry, err error) {
	ctx, finish := observability.StartSpan(ctx, "EntryService.Create")
	defer func() { finish(err) }()

	entry = &models.Entry{}
	tags, err := s.apply(entry, form)
	if err != nil {
		return nil, err
	}

	if err := s.entries.CreateWithTags(ctx, entry, tags); err != nil {
		return nil, err
	}

	observability.EntryWrites.WithLabelValues("create").Inc()
	cache.InvalidateEntry(ctx, entry.Slug)
	middleware.Logger.InfoContext(ctx, "entry created", "slug", entry.Slug, "tags", len(tags))
	return entry, nil
}

// Update rewrites the entry stored under currentSlug and replaces its tags.
// The slug follows the new title.
func (s *EntryService) Update(ctx context.Context, currentSlug string, form EntryForm) (entry *models.Entry, err error) {
	ctx, finish := observability.StartSpan(ctx, "EntryService.Update", attribute.String("entry.slug", currentSlug))
	defer func() { finish(err) }()

	entry, err = s.entries.GetBySlug(ctx, currentSlug)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, models.NewNotFoundError("Entry", currentSlug)
	}

	tags, err := s.apply(entry, form)
	if err != nil {
		return nil, err
	}

	if err := s.entries.UpdateWithTags(ctx, entry, tags); err != nil {
		return nil, err
	}

	observability.EntryWrites.WithLabelValues("update").Inc()
	cache.InvalidateEntry(ctx, currentSlug, entry.Slug)
	middleware.Logger.InfoContext(ctx, "entry updated", "slug", entry.Slug, "previous_slug", currentSlug)
	return entry, nil
}

// Delete removes the entry stored under entrySlug together with its tags.
func (s *EntryService) Delete(ctx context.Context, entrySlug string) (err error) {
	ctx, finish := observability.StartSpan(ctx, "EntryService.Delete", attribute.String("entry.slug", entrySlug))
	defer func() { finish(err) }()

	entry, err := s.entries.GetBySlug(ctx, entrySlug)
	if err != nil {
		return err
	}
	if entry == nil {
		return models.NewNotFoundError("Entry", entrySlug)
	}

	if err := s.entries.Delete(ctx, entry.ID); err != nil {
		return err
	}

	observability.EntryWrites.WithLabelValues("delete").Inc()
	cache.InvalidateEntry(ctx, entrySlug)
	middleware.Logger.InfoContext(ctx, "entry deleted", "slug", entrySlug)
	return nil
}

// GetBySlug returns the entry and its tags, read through the cache. An
// unknown slug is a NOT_FOUND AppError.
func (s *EntryService) GetBySlug(ctx context.Context, entrySlug string) (*models.Entry, error) {
	var entry *models.Entry
	err := cache.Aside(ctx, cache.EntryKey(entrySlug), &entry, cache.EntryTTL, func() error {
		found, err := s.entries.GetBySlug(ctx, entrySlug)
		if err != nil {
			return err
		}
		if found == nil {
			return models.NewNotFoundError("Entry", entrySlug)
		}
		entry = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, models.NewNotFoundError("Entry", entrySlug)
	}
	return entry, nil
}

// List returns every entry, newest first.
func (s *EntryService) List(ctx context.Context) ([]*models.Entry, error) {
	return s.entries.List(ctx)
}

// ListByTag returns the entries carrying a tag with tagSlug, newest first.
func (s *EntryService) ListByTag(ctx context.Context, tagSlug string) ([]*models.Entry, error) {
	return s.entries.ListByTagSlug(ctx, tagSlug)
}

// apply validates form and copies it onto entry, returning the tags to store.
func (s *EntryService) apply(entry *models.Entry, form EntryForm) ([]models.Tag, error) {
	if err := s.validate.Validate(form); err != nil {
		return nil, err
	}

	date, err := form.ParsedDate()
	if err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"date": "Not a valid date value. Use DD-MM-YYYY."})
	}

	title := strings.TrimSpace(form.Title)
	entrySlug := slug.Make(title)
	if entrySlug == "" {
		return nil, models.NewFieldValidationError(map[string]string{"title": "Title must contain at least one letter or digit."})
	}

	tags, err := buildTags(form.Tags)
	if err != nil {
		return nil, err
	}

	entry.Title = title
	entry.Date = date
	entry.Duration = form.Duration
	entry.Learned = form.Learned
	entry.Resources = form.Resources
	entry.Slug = entrySlug
	return tags, nil
}
