package service

import (
	"context"

	"worklog/internal/cache"
	"worklog/internal/models"
	"worklog/internal/repository"
)

type TagService struct {
	tags repository.TagRepository
}

func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// ListDistinct returns each (tag, slug) pair once, read through the cache.
func (s *TagService) ListDistinct(ctx context.Context) ([]models.TagSummary, error) {
	var tags []models.TagSummary
	err := cache.Aside(ctx, cache.TagsAllKey, &tags, cache.TagsTTL, func() error {
		var err error
		tags, err = s.tags.ListDistinct(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
