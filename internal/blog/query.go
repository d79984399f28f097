package blog

import (
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/folio/internal/article"
)

// Query defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Filter selects and pages published articles.
type Filter struct {
	Page         int    `json:"page"`
	Limit        int    `json:"limit"`
	Search       string `json:"search,omitempty"`
	CategorySlug string `json:"category,omitempty"`
	TagSlug      string `json:"tag,omitempty"`
}

// Page is one page of a filtered, date-sorted listing.
type Page struct {
	Articles   []article.Article `json:"articles"`
	Total      int               `json:"total"` // matches before paging
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// HasPrev reports whether a previous page exists.
func (p *Page) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p *Page) HasNext() bool { return p.Page < p.TotalPages }

// Query filters, sorts and pages articles. Steps, in order: published only,
// search (case-insensitive substring of title, excerpt or content), category,
// tag, date descending (stable), page slice. A category or tag slug missing
// from its table matches nothing. A page past the end is empty.
// The input slice is not modified.
func Query(articles []article.Article, categories, tags TermTable, f Filter) *Page {
	page := f.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := f.Limit
	if limit < 1 {
		limit = DefaultLimit
	}

	search := strings.ToLower(f.Search)

	var categoryName, tagName string
	if f.CategorySlug != "" {
		name, ok := categories.NameBySlug(f.CategorySlug)
		if !ok {
			return emptyPage(page, limit)
		}
		categoryName = name
	}
	if f.TagSlug != "" {
		name, ok := tags.NameBySlug(f.TagSlug)
		if !ok {
			return emptyPage(page, limit)
		}
		tagName = name
	}

	matched := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		if !a.Published() {
			continue
		}
		if search != "" && !matchesSearch(&a, search) {
			continue
		}
		if f.CategorySlug != "" && !slices.Contains(a.Categories, categoryName) {
			continue
		}
		if f.TagSlug != "" && !slices.Contains(a.Tags, tagName) {
			continue
		}
		matched = append(matched, a)
	}

	sortByDateDesc(matched)

	total := len(matched)
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	// Pages past the last one are empty. Comparing page numbers keeps
	// (page-1)*limit from being computed when it could overflow.
	result := []article.Article{}
	if page <= totalPages {
		start := (page - 1) * limit
		end := start + min(limit, total-start)
		result = matched[start:end:end]
	}

	return &Page{
		Articles:   result,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

func emptyPage(page, limit int) *Page {
	return &Page{Articles: []article.Article{}, Page: page, Limit: limit}
}

func matchesSearch(a *article.Article, lowered string) bool {
	return strings.Contains(strings.ToLower(a.Title), lowered) ||
		strings.Contains(strings.ToLower(a.Excerpt), lowered) ||
		strings.Contains(strings.ToLower(a.Content), lowered)
}

// Recommended returns the newest published articles, at most limit.
func Recommended(articles []article.Article, limit int) []article.Article {
	published := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		if a.Published() {
			published = append(published, a)
		}
	}
	sortByDateDesc(published)
	if limit < 0 {
		limit = 0
	}
	if len(published) > limit {
		published = published[:limit:limit]
	}
	return published
}

// sortByDateDesc sorts newest first, keeping input order for equal dates.
// Unparseable dates sort as the oldest.
func sortByDateDesc(articles []article.Article) {
	keys := make(map[string]time.Time, len(articles))
	for _, a := range articles {
		if _, ok := keys[a.Date]; !ok {
			keys[a.Date] = parseDate(a.Date)
		}
	}
	slices.SortStableFunc(articles, func(a, b article.Article) int {
		return keys[b.Date].Compare(keys[a.Date])
	})
}

// parseDate accepts YYYY-MM-DD and RFC 3339 timestamps.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(article.DateLayout, s); err == nil {
		return d
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d
	}
	return time.Time{}
}
