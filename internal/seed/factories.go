// Package seed provides helpers to create demo entries for development and
// manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"worklog/internal/models"
	"worklog/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Options tunes the generated data.
type Options struct {
	// Seed makes the output reproducible; 0 picks a random seed.
	Seed int64
	// MaxDays bounds how far back entry dates go.
	MaxDays int
	// MaxTags bounds the number of tags per entry.
	MaxTags int
}

var topics = []string{
	"go", "sql", "testing", "concurrency", "http", "docker", "git",
	"redis", "postgres", "linux", "algorithms", "css", "python", "security",
}

// Factory builds entry forms with gofakeit and stores them through the
// entry service, so slugs and tags follow the same rules as the web forms.
type Factory struct {
	entries *service.EntryService
	faker   *gofakeit.Faker
	opts    Options
}

// NewFactory creates a factory writing through entries.
func NewFactory(entries *service.EntryService, opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	if opts.MaxTags <= 0 {
		opts.MaxTags = 3
	}
	return &Factory{
		entries: entries,
		faker:   gofakeit.New(opts.Seed),
		opts:    opts,
	}
}

// BuildEntryForm returns a valid, unsaved entry form.
func (f *Factory) BuildEntryForm(overrides ...func(*service.EntryForm)) service.EntryForm {
	tags := make([]string, f.faker.Number(0, f.opts.MaxTags))
	for i := range tags {
		tags[i] = f.faker.RandomString(topics)
	}

	form := service.EntryForm{
		Title:     strings.TrimSuffix(f.faker.Sentence(4), "."),
		Duration:  fmt.Sprintf("%d minutes", f.faker.Number(15, 240)),
		Learned:   f.faker.Paragraph(1, 3, 12, "\n"),
		Resources: f.faker.URL(),
		TagForm:   service.TagForm{Tags: strings.Join(tags, ", ")},
	}
	// Drawn last: the range moves with the clock.
	now := time.Now()
	form.Date = f.faker.DateRange(now.AddDate(0, 0, -f.opts.MaxDays), now).Format(models.DateLayout)

	for _, override := range overrides {
		override(&form)
	}
	return form
}

// CreateEntries stores n generated entries. Generated titles that collide
// with an existing entry are redrawn.
func (f *Factory) CreateEntries(ctx context.Context, n int) ([]*models.Entry, error) {
	created := make([]*models.Entry, 0, n)
	for attempts := 0; len(created) < n; attempts++ {
		if attempts >= n*5 {
			return created, fmt.Errorf("gave up after %d attempts: %d of %d entries created", attempts, len(created), n)
		}

		entry, err := f.entries.Create(ctx, f.BuildEntryForm())
		if errors.Is(err, models.ErrEntryExists) {
			continue
		}
		if err != nil {
			return created, err
		}
		created = append(created, entry)
	}
	return created, nil
}
