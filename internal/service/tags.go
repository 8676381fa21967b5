package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"worklog/internal/models"
	"worklog/internal/slug"
)

// ParseTags splits raw on commas, trims each fragment and drops empty ones.
// Order and duplicates are kept.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// buildTags turns a raw tag string into unsaved Tag rows.
func buildTags(raw string) ([]models.Tag, error) {
	names := ParseTags(raw)
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if utf8.RuneCountInString(name) > maxTagLen {
			return nil, models.NewFieldValidationError(map[string]string{
				"tags": fmt.Sprintf("Each tag must be at most %d characters.", maxTagLen),
			})
		}
		tagSlug := slug.Make(name)
		if tagSlug == "" {
			return nil, models.NewFieldValidationError(map[string]string{
				"tags": fmt.Sprintf("Tag %q must contain at least one letter or digit.", name),
			})
		}
		tags = append(tags, models.Tag{Name: name, Slug: tagSlug})
	}
	return tags, nil
}
