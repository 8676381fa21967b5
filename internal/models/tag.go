package models

// Tag is a free-text label attached to an Entry. Tags are recreated on every
// edit, so only Name and Slug are stable across edits, never ID.
type Tag struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"column:tag;size:100;not null" json:"tag"`
	EntryID uint   `gorm:"not null;index" json:"entry_id"`
	Slug    string `gorm:"size:120;not null;index" json:"slug"`
}

// TagSummary is a distinct (tag, slug) pair as listed on the tags page.
type TagSummary struct {
	Name string `gorm:"column:tag" json:"tag"`
	Slug string `json:"slug"`
}
