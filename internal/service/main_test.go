package service

import (
	"errors"
	"os"
	"testing"

	"worklog/internal/cache"
	"worklog/internal/config"
	"worklog/internal/database"
	"worklog/internal/models"
	"worklog/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type testServices struct {
	auth    *AuthService
	entries *EntryService
	tags    *TagService
}

func newTestServices(t *testing.T) testServices {
	t.Helper()
	db := newTestDB(t)
	return testServices{
		auth:    NewAuthService(repository.NewUserRepository(db)),
		entries: NewEntryService(repository.NewEntryRepository(db)),
		tags:    NewTagService(repository.NewTagRepository(db)),
	}
}

// withCache points the package-level cache at a fresh miniredis.
func withCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = cache.Close()
		mr.Close()
	})
	return mr
}

func validEntryForm(title, tags string) EntryForm {
	return EntryForm{
		Title:     title,
		Date:      "14-03-2024",
		Duration:  "2 hours",
		Learned:   "Goroutines and channels",
		Resources: "Effective Go",
		TagForm:   TagForm{Tags: tags},
	}
}

// assertFieldError asserts err is a VALIDATION_ERROR flagging field.
func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, field)
}
