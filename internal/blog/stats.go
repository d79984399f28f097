package blog

import "github.com/hpungsan/folio/internal/article"

// Stats are aggregate counts over the published collection.
type Stats struct {
	TotalArticles   int `json:"total_articles"`
	TotalCategories int `json:"total_categories"`
	TotalTags       int `json:"total_tags"`
	TotalViews      int `json:"total_views"`
}

// ComputeStats counts published articles and their views, and the size of
// each term table.
func ComputeStats(articles []article.Article, categories, tags TermTable) *Stats {
	s := &Stats{
		TotalCategories: categories.Len(),
		TotalTags:       tags.Len(),
	}
	for _, a := range articles {
		if !a.Published() {
			continue
		}
		s.TotalArticles++
		s.TotalViews += a.Views
	}
	return s
}
