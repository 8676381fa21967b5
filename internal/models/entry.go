// Package models contains the worklog records and the application error type.
package models

import (
	"strings"
	"time"
)

// DateLayout is the form representation of Entry.Date (DD-MM-YYYY).
const DateLayout = "02-01-2006"

// dateInputLayout also accepts days and months without a leading zero.
const dateInputLayout = "2-1-2006"

// ParseDate reads a form date such as "14-03-2024" or "1-3-2024".
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateInputLayout, strings.TrimSpace(s))
}

// Entry is a journal post recording a learning session.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Date      time.Time `gorm:"not null" json:"date"`
	Duration  string    `gorm:"not null" json:"duration"`
	Learned   string    `gorm:"type:text;not null" json:"learned"`
	Resources string    `gorm:"type:text;not null" json:"resources"`
	Slug      string    `gorm:"uniqueIndex;size:220;not null" json:"slug"`
	Tags      []Tag     `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateString renders Date in the form layout.
func (e *Entry) DateString() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// TagString joins the entry's tag names with ", ", the form representation
// used to prefill the edit page.
func (e *Entry) TagString() string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}
