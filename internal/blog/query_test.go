package blog

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/folio/internal/article"
)

func post(id int64, slug, date string, cats, tags []string) article.Article {
	if cats == nil {
		cats = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	return article.Article{
		ID: id,
		Metadata: article.Metadata{
			Title:      "Post " + slug,
			Slug:       slug,
			Status:     article.StatusPublished,
			Categories: cats,
			Tags:       tags,
			Date:       date,
			Author:     article.DefaultAuthor,
		},
		Content: "Body of " + slug,
	}
}

func draft(a article.Article) article.Article {
	a.Status = article.StatusDraft
	return a
}

func slugs(articles []article.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Slug
	}
	return out
}

var (
	testCategories = NewTermTable([]article.Term{
		{ID: 1, Name: "Go", Slug: "go"},
		{ID: 2, Name: "Web Dev", Slug: "web-dev"},
	})
	testTags = NewTermTable([]article.Term{
		{ID: 1, Name: "Concurrency", Slug: "concurrency"},
		{ID: 2, Name: "HTTP"},
	})
)

func TestQuery_NewestFirst(t *testing.T) {
	articles := []article.Article{
		post(1, "jan", "2024-01-01", nil, nil),
		post(2, "mar", "2024-03-01", nil, nil),
	}

	page := Query(articles, testCategories, testTags, Filter{})

	if diff := cmp.Diff([]string{"mar", "jan"}, slugs(page.Articles)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if page.Page != DefaultPage || page.Limit != DefaultLimit {
		t.Errorf("page/limit = %d/%d, want %d/%d", page.Page, page.Limit, DefaultPage, DefaultLimit)
	}
}

func TestQuery_SecondPageOfThree(t *testing.T) {
	articles := []article.Article{
		post(1, "a", "2024-01-01", nil, nil),
		post(2, "b", "2024-02-01", nil, nil),
		post(3, "c", "2024-03-01", nil, nil),
	}

	page := Query(articles, testCategories, testTags, Filter{Page: 2, Limit: 1})

	if diff := cmp.Diff([]string{"b"}, slugs(page.Articles)); diff != "" {
		t.Errorf("articles mismatch (-want +got):\n%s", diff)
	}
	if page.Total != 3 {
		t.Errorf("Total = %d, want 3", page.Total)
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}
	if !page.HasPrev() || !page.HasNext() {
		t.Errorf("HasPrev/HasNext = %v/%v, want true/true", page.HasPrev(), page.HasNext())
	}
}

func TestQuery_UnknownCategory(t *testing.T) {
	articles := []article.Article{post(1, "a", "2024-01-01", []string{"Go"}, nil)}

	page := Query(articles, testCategories, testTags, Filter{CategorySlug: "nope"})

	if page.Articles == nil || len(page.Articles) != 0 {
		t.Errorf("Articles = %#v, want empty non-nil slice", page.Articles)
	}
	if page.Total != 0 || page.TotalPages != 0 {
		t.Errorf("Total/TotalPages = %d/%d, want 0/0", page.Total, page.TotalPages)
	}
}

func TestQuery_UnknownTag(t *testing.T) {
	articles := []article.Article{post(1, "a", "2024-01-01", nil, []string{"HTTP"})}

	page := Query(articles, testCategories, testTags, Filter{TagSlug: "nope"})
	if len(page.Articles) != 0 {
		t.Errorf("got %v, want nothing", slugs(page.Articles))
	}
}

func TestQuery_CategoryAndTag(t *testing.T) {
	articles := []article.Article{
		post(1, "both", "2024-01-01", []string{"Go"}, []string{"HTTP"}),
		post(2, "cat-only", "2024-01-02", []string{"Go"}, nil),
		post(3, "tag-only", "2024-01-03", []string{"Web Dev"}, []string{"HTTP"}),
	}

	page := Query(articles, testCategories, testTags, Filter{CategorySlug: "go"})
	if diff := cmp.Diff([]string{"cat-only", "both"}, slugs(page.Articles)); diff != "" {
		t.Errorf("category mismatch (-want +got):\n%s", diff)
	}

	// "HTTP" has no slug in the table, so it is derived.
	page = Query(articles, testCategories, testTags, Filter{CategorySlug: "go", TagSlug: "http"})
	if diff := cmp.Diff([]string{"both"}, slugs(page.Articles)); diff != "" {
		t.Errorf("category+tag mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_Search(t *testing.T) {
	a := post(1, "a", "2024-01-01", nil, nil)
	a.Title = "Understanding Channels"
	b := post(2, "b", "2024-01-02", nil, nil)
	b.Excerpt = "a CHANNEL primer"
	c := post(3, "c", "2024-01-03", nil, nil)
	c.Content = "Nothing relevant here."
	d := post(4, "d", "2024-01-04", nil, nil)
	d.Content = "select over a channel"

	page := Query([]article.Article{a, b, c, d}, testCategories, testTags, Filter{Search: "Channel"})

	if diff := cmp.Diff([]string{"d", "b", "a"}, slugs(page.Articles)); diff != "" {
		t.Errorf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_ExcludesDrafts(t *testing.T) {
	articles := []article.Article{
		post(1, "pub", "2024-01-01", nil, nil),
		draft(post(2, "hidden", "2024-05-01", nil, nil)),
	}

	page := Query(articles, testCategories, testTags, Filter{})
	if diff := cmp.Diff([]string{"pub"}, slugs(page.Articles)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}

func TestQuery_NormalizesPaging(t *testing.T) {
	articles := []article.Article{post(1, "a", "2024-01-01", nil, nil)}

	page := Query(articles, testCategories, testTags, Filter{Page: -3, Limit: 0})
	if page.Page != 1 || page.Limit != DefaultLimit {
		t.Errorf("page/limit = %d/%d, want 1/%d", page.Page, page.Limit, DefaultLimit)
	}
	if len(page.Articles) != 1 {
		t.Errorf("len = %d, want 1", len(page.Articles))
	}
}

func TestQuery_PastLastPage(t *testing.T) {
	articles := []article.Article{
		post(1, "a", "2024-01-01", nil, nil),
		post(2, "b", "2024-01-02", nil, nil),
	}

	page := Query(articles, testCategories, testTags, Filter{Page: 5, Limit: 1})
	if page.Articles == nil || len(page.Articles) != 0 {
		t.Errorf("Articles = %#v, want empty", page.Articles)
	}
	if page.Total != 2 || page.TotalPages != 2 {
		t.Errorf("Total/TotalPages = %d/%d, want 2/2", page.Total, page.TotalPages)
	}
	if page.HasNext() {
		t.Error("HasNext = true past the last page")
	}
}

func TestQuery_HugePagingValues(t *testing.T) {
	articles := []article.Article{
		post(1, "a", "2024-01-01", nil, nil),
		post(2, "b", "2024-01-02", nil, nil),
		post(3, "c", "2024-01-03", nil, nil),
	}

	tests := []struct {
		name       string
		filter     Filter
		wantSlugs  []string
		wantTotalP int
	}{
		{name: "max page", filter: Filter{Page: math.MaxInt, Limit: 10}, wantSlugs: []string{}, wantTotalP: 1},
		{name: "max page and limit", filter: Filter{Page: math.MaxInt, Limit: math.MaxInt}, wantSlugs: []string{}, wantTotalP: 1},
		{name: "max limit", filter: Filter{Page: 1, Limit: math.MaxInt}, wantSlugs: []string{"c", "b", "a"}, wantTotalP: 1},
		{name: "page two of max limit", filter: Filter{Page: 2, Limit: math.MaxInt}, wantSlugs: []string{}, wantTotalP: 1},
		{name: "overflowing product", filter: Filter{Page: math.MaxInt/2 + 2, Limit: 2}, wantSlugs: []string{}, wantTotalP: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Query(articles, testCategories, testTags, tt.filter)

			slugs := []string{}
			for _, a := range page.Articles {
				slugs = append(slugs, a.Slug)
			}
			if diff := cmp.Diff(tt.wantSlugs, slugs); diff != "" {
				t.Errorf("slugs mismatch (-want +got):\n%s", diff)
			}
			if page.Total != 3 || page.TotalPages != tt.wantTotalP {
				t.Errorf("Total/TotalPages = %d/%d, want 3/%d", page.Total, page.TotalPages, tt.wantTotalP)
			}
		})
	}
}

func TestQuery_StableForEqualDates(t *testing.T) {
	articles := []article.Article{
		post(1, "first", "2024-01-01", nil, nil),
		post(2, "second", "2024-01-01", nil, nil),
		post(3, "third", "2024-01-01", nil, nil),
	}

	page := Query(articles, testCategories, testTags, Filter{})
	if diff := cmp.Diff([]string{"first", "second", "third"}, slugs(page.Articles)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_UnparseableDatesLast(t *testing.T) {
	articles := []article.Article{
		post(1, "bad", "someday", nil, nil),
		post(2, "old", "2001-01-01", nil, nil),
		post(3, "ts", "2024-06-01T10:00:00Z", nil, nil),
	}

	page := Query(articles, testCategories, testTags, Filter{})
	if diff := cmp.Diff([]string{"ts", "old", "bad"}, slugs(page.Articles)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_DoesNotReorderInput(t *testing.T) {
	articles := []article.Article{
		post(1, "jan", "2024-01-01", nil, nil),
		post(2, "mar", "2024-03-01", nil, nil),
	}

	Query(articles, testCategories, testTags, Filter{})
	if diff := cmp.Diff([]string{"jan", "mar"}, slugs(articles)); diff != "" {
		t.Errorf("input reordered (-want +got):\n%s", diff)
	}
}

func TestRecommended(t *testing.T) {
	articles := []article.Article{
		post(1, "a", "2024-01-01", nil, nil),
		post(2, "b", "2024-04-01", nil, nil),
		draft(post(3, "c", "2024-09-01", nil, nil)),
		post(4, "d", "2024-02-01", nil, nil),
	}

	got := Recommended(articles, 2)
	if diff := cmp.Diff([]string{"b", "d"}, slugs(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if got := Recommended(articles, 0); len(got) != 0 {
		t.Errorf("limit 0 returned %v", slugs(got))
	}
}
