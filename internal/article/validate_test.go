package article

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("time.Parse(%q): %v", s, err)
	}
	return d
}

func intPtr(n int) *int { return &n }

func TestValidate_AllDefaults(t *testing.T) {
	now := mustDate(t, "2026-10-19")
	got := ValidateAt(Partial{}, now)

	want := Metadata{
		Title:      DefaultTitle,
		Excerpt:    "",
		Slug:       DefaultSlug,
		Status:     StatusDraft,
		Categories: []string{},
		Tags:       []string{},
		Date:       "2026-10-19",
		Views:      0,
		Author:     DefaultAuthor,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ValidateAt({}) mismatch (-want +got):\n%s", diff)
	}
	if got.Categories == nil || got.Tags == nil {
		t.Error("list defaults must be empty, not nil")
	}
}

func TestValidate_UsesToday(t *testing.T) {
	got := Validate(Partial{})
	if _, err := time.Parse(DateLayout, got.Date); err != nil {
		t.Errorf("Date = %q, not YYYY-MM-DD: %v", got.Date, err)
	}
}

func TestValidate_EmptyStringsDefault(t *testing.T) {
	empty := ""
	got := ValidateAt(Partial{Title: &empty, Slug: &empty, Author: &empty, Date: &empty}, mustDate(t, "2024-01-01"))

	if got.Title != DefaultTitle || got.Slug != DefaultSlug || got.Author != DefaultAuthor {
		t.Errorf("got %+v, want defaults for empty strings", got)
	}
	if got.Date != "2024-01-01" {
		t.Errorf("Date = %q, want 2024-01-01", got.Date)
	}
}

func TestValidate_Status(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"published", StatusPublished},
		{"draft", StatusDraft},
		{" published ", StatusPublished},
		{"archived", StatusDraft},
		{"", StatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			in := tt.in
			got := ValidateAt(Partial{Status: &in}, time.Now())
			if got.Status != tt.want {
				t.Errorf("Status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestValidate_Views(t *testing.T) {
	if got := ValidateAt(Partial{Views: intPtr(12)}, time.Now()); got.Views != 12 {
		t.Errorf("Views = %d, want 12", got.Views)
	}
	if got := ValidateAt(Partial{Views: intPtr(-4)}, time.Now()); got.Views != 0 {
		t.Errorf("Views = %d, want 0 for negative input", got.Views)
	}
}

func TestValidate_DoesNotAliasLists(t *testing.T) {
	cats := []string{"a"}
	got := ValidateAt(Partial{Categories: cats}, time.Now())
	got.Categories[0] = "changed"
	if cats[0] != "a" {
		t.Error("Validate result aliases the input slice")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"go", []string{"go"}},
		{" go , web ,, ", []string{"go", "web"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitList(tt.in)); diff != "" {
			t.Errorf("SplitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
