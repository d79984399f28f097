package article

import (
	"strings"
	"time"
)

// Defaults applied by Validate when a field is missing or empty.
const (
	DefaultTitle  = "Untitled"
	DefaultSlug   = "untitled"
	DefaultAuthor = "Anonymous"
	DefaultStatus = StatusDraft

	// DateLayout is the format of Metadata.Date.
	DateLayout = "2006-01-02"
)

// Validate fills every missing or invalid field of p with its default.
// The date default is today's date. Validate never fails.
func Validate(p Partial) Metadata {
	return ValidateAt(p, time.Now())
}

// ValidateAt is Validate with an explicit clock for the date default.
func ValidateAt(p Partial, now time.Time) Metadata {
	meta := Metadata{
		Title:      orDefault(p.Title, DefaultTitle),
		Excerpt:    orDefault(p.Excerpt, ""),
		Slug:       orDefault(p.Slug, DefaultSlug),
		Status:     DefaultStatus,
		Categories: cloneList(p.Categories),
		Tags:       cloneList(p.Tags),
		Date:       orDefault(p.Date, now.Format(DateLayout)),
		Author:     orDefault(p.Author, DefaultAuthor),
	}

	if p.Status != nil {
		if s := Status(strings.TrimSpace(*p.Status)); s.Valid() {
			meta.Status = s
		}
	}
	if p.Views != nil && *p.Views > 0 {
		meta.Views = *p.Views
	}

	return meta
}

func orDefault(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func cloneList(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}

// SplitList splits a comma-separated form or flag value into trimmed,
// non-empty items.
func SplitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}
