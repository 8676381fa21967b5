package repository

import (
	"testing"
	"time"

	"worklog/internal/config"
	"worklog/internal/database"
	"worklog/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB returns a migrated in-memory SQLite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newEntry(title, slug string) *models.Entry {
	return &models.Entry{
		Title:     title,
		Date:      time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		Duration:  "2 hours",
		Learned:   "Something useful",
		Resources: "The docs",
		Slug:      slug,
	}
}

func tagsOf(names ...string) []models.Tag {
	tags := make([]models.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, models.Tag{Name: n, Slug: n})
	}
	return tags
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
