package seed

import (
	"context"
	"testing"

	"worklog/internal/config"
	"worklog/internal/database"
	"worklog/internal/repository"
	"worklog/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntryService(t *testing.T) *service.EntryService {
	t.Helper()
	db, err := database.Connect(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return service.NewEntryService(repository.NewEntryRepository(db))
}

func TestBuildEntryForm_IsValid(t *testing.T) {
	f := NewFactory(nil, Options{Seed: 42})
	v := service.NewValidator()

	for i := 0; i < 20; i++ {
		form := f.BuildEntryForm()
		require.NoError(t, v.Validate(form))
		assert.LessOrEqual(t, len(service.ParseTags(form.Tags)), 3)
	}
}

func TestBuildEntryForm_Overrides(t *testing.T) {
	f := NewFactory(nil, Options{Seed: 1})

	form := f.BuildEntryForm(func(e *service.EntryForm) {
		e.Title = "Learned Go"
		e.Tags = "go"
	})
	assert.Equal(t, "Learned Go", form.Title)
	assert.Equal(t, "go", form.Tags)
}

func TestBuildEntryForm_Reproducible(t *testing.T) {
	a := NewFactory(nil, Options{Seed: 7}).BuildEntryForm()
	b := NewFactory(nil, Options{Seed: 7}).BuildEntryForm()
	assert.Equal(t, a.Title, b.Title)
	assert.Equal(t, a.Tags, b.Tags)
}

func TestCreateEntries(t *testing.T) {
	entries := newEntryService(t)
	ctx := context.Background()

	created, err := NewFactory(entries, Options{Seed: 3}).CreateEntries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, created, 5)

	listed, err := entries.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 5)

	slugs := make(map[string]bool)
	for _, e := range listed {
		assert.NotEmpty(t, e.Slug)
		assert.False(t, slugs[e.Slug], "duplicate slug %s", e.Slug)
		slugs[e.Slug] = true
	}
}

func TestCreateEntries_RedrawsCollisions(t *testing.T) {
	entries := newEntryService(t)
	ctx := context.Background()

	first, err := NewFactory(entries, Options{Seed: 11}).CreateEntries(ctx, 1)
	require.NoError(t, err)

	// Same seed: the first draw collides and is redrawn.
	second, err := NewFactory(entries, Options{Seed: 11}).CreateEntries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].Slug, second[0].Slug)

	_, err = entries.GetBySlug(ctx, first[0].Slug)
	require.NoError(t, err)
}
