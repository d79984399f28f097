package blog

import (
	"slices"

	"github.com/hpungsan/folio/internal/article"
)

// Relatedness weights.
const (
	CategoryWeight = 2
	TagWeight      = 1
)

// Scored is an article with its relatedness score.
type Scored struct {
	article.Article
	Score int `json:"score"`
}

// Related ranks published articles other than source by shared categories
// and tags, highest score first (stable for ties), dropping zero scores and
// truncating to limit.
func Related(source article.Article, articles []article.Article, limit int) []Scored {
	scored := make([]Scored, 0)
	for _, candidate := range articles {
		if candidate.ID == source.ID || !candidate.Published() {
			continue
		}
		score := Score(source, candidate)
		if score == 0 {
			continue
		}
		scored = append(scored, Scored{Article: candidate, Score: score})
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		return b.Score - a.Score
	})

	if limit < 0 {
		limit = 0
	}
	if len(scored) > limit {
		scored = scored[:limit:limit]
	}
	return scored
}

// Score is the relatedness of candidate to source.
//
// Overlap is counted per element of the candidate's list found anywhere in
// the source's list, so a name repeated in the candidate's list counts once
// per repetition.
func Score(source, candidate article.Article) int {
	return CategoryWeight*overlap(candidate.Categories, source.Categories) +
		TagWeight*overlap(candidate.Tags, source.Tags)
}

func overlap(candidate, source []string) int {
	n := 0
	for _, name := range candidate {
		if slices.Contains(source, name) {
			n++
		}
	}
	return n
}
