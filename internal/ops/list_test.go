package ops

import (
	"testing"

	"github.com/hpungsan/folio/internal/errors"
)

func TestList_NewestFirstWithDrafts(t *testing.T) {
	database := openTestDB(t)
	mustCreate(t, database, CreateInput{Title: "Old", Date: "2023-01-01"})
	mustCreate(t, database, CreateInput{Title: "New", Date: "2024-06-01", Status: "draft"})
	mustCreate(t, database, CreateInput{Title: "Mid", Date: "2024-01-01"})

	out, err := List(database, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var got []string
	for _, item := range out.Items {
		got = append(got, item.Slug)
	}
	want := []string{"new", "mid", "old"}
	if len(got) != len(want) {
		t.Fatalf("slugs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slugs = %v, want %v", got, want)
			break
		}
	}
	if out.Pagination.Total != 3 || out.Pagination.HasMore {
		t.Errorf("pagination = %+v", out.Pagination)
	}
	if out.Sort != "date_desc" {
		t.Errorf("Sort = %q", out.Sort)
	}
}

func TestList_StatusFilterAndPaging(t *testing.T) {
	database := openTestDB(t)
	for _, title := range []string{"A", "B", "C"} {
		mustCreate(t, database, CreateInput{Title: title})
	}
	mustCreate(t, database, CreateInput{Title: "D", Status: "draft"})

	out, err := List(database, ListInput{Status: "published", Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 2 || out.Pagination.Total != 3 || !out.Pagination.HasMore {
		t.Errorf("page 1: %d items, pagination %+v", len(out.Items), out.Pagination)
	}

	out, err = List(database, ListInput{Status: "published", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 1 || out.Pagination.HasMore {
		t.Errorf("page 2: %d items, pagination %+v", len(out.Items), out.Pagination)
	}
}

func TestList_LimitBounds(t *testing.T) {
	database := openTestDB(t)

	out, err := List(database, ListInput{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Pagination.Limit != MaxListLimit || out.Pagination.Offset != 0 {
		t.Errorf("pagination = %+v", out.Pagination)
	}
	if out.Items == nil {
		t.Error("Items = nil, want empty slice")
	}
}

func TestList_InvalidStatus(t *testing.T) {
	database := openTestDB(t)

	if _, err := List(database, ListInput{Status: "archived"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestOverview(t *testing.T) {
	database := openTestDB(t)
	mustCreate(t, database, CreateInput{Title: "One", Views: 10, Categories: []string{"Go"}, Tags: []string{"a", "b"}})
	mustCreate(t, database, CreateInput{Title: "Two", Views: 5, Status: "draft", Categories: []string{"Rust"}})

	out, err := Overview(database)
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if out.Total != 2 || out.Published != 1 || out.Draft != 1 || out.TotalViews != 15 {
		t.Errorf("counts = %+v", out.Counts)
	}
	if out.Categories != 2 || out.Tags != 2 {
		t.Errorf("terms = %d categories, %d tags", out.Categories, out.Tags)
	}
	if len(out.Latest) != 2 {
		t.Errorf("Latest = %d items, want 2", len(out.Latest))
	}
}

func TestTerms(t *testing.T) {
	database := openTestDB(t)
	mustCreate(t, database, CreateInput{Title: "One", Categories: []string{"Web Dev"}, Tags: []string{"HTTP"}})

	for _, kind := range []string{"", "category", "categories"} {
		out, err := Terms(database, TermsInput{Kind: kind})
		if err != nil {
			t.Fatalf("Terms(%q) failed: %v", kind, err)
		}
		if out.Kind != "category" || len(out.Terms) != 1 || out.Terms[0].Slug != "web-dev" {
			t.Errorf("Terms(%q) = %+v", kind, out)
		}
	}

	out, err := Terms(database, TermsInput{Kind: "tags"})
	if err != nil {
		t.Fatalf("Terms(tags) failed: %v", err)
	}
	if out.Kind != "tag" || len(out.Terms) != 1 || out.Terms[0].Name != "HTTP" {
		t.Errorf("Terms(tags) = %+v", out)
	}

	if _, err := Terms(database, TermsInput{Kind: "authors"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}
