package blog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpungsan/folio/internal/article"
)

func TestRelated_SharedCategory(t *testing.T) {
	a := post(1, "a", "2024-01-01", []string{"x"}, nil)
	b := post(2, "b", "2024-01-01", []string{"x"}, nil)
	c := post(3, "c", "2024-01-01", nil, nil)

	got := Related(a, []article.Article{a, b, c}, 5)

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1: %v", len(got), got)
	}
	if got[0].Slug != "b" || got[0].Score != 2 {
		t.Errorf("got %s score %d, want b score 2", got[0].Slug, got[0].Score)
	}
}

func TestRelated_RanksAndTruncates(t *testing.T) {
	src := post(1, "src", "2024-01-01", []string{"Go", "Web"}, []string{"http", "tls"})
	tagOnly := post(2, "tag-only", "2024-01-01", nil, []string{"http"})
	strong := post(3, "strong", "2024-01-01", []string{"Go", "Web"}, []string{"tls"})
	catOnly := post(4, "cat-only", "2024-01-01", []string{"Go"}, nil)
	tie := post(5, "tie", "2024-01-01", nil, []string{"http", "tls"})

	got := Related(src, []article.Article{src, tagOnly, strong, catOnly, tie}, 3)

	var names []string
	var scores []int
	for _, s := range got {
		names = append(names, s.Slug)
		scores = append(scores, s.Score)
	}
	if diff := cmp.Diff([]string{"strong", "cat-only", "tie"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{5, 2, 2}, scores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestRelated_SkipsDraftsAndSelf(t *testing.T) {
	src := post(1, "src", "2024-01-01", []string{"x"}, nil)
	hidden := draft(post(2, "hidden", "2024-01-01", []string{"x"}, nil))

	got := Related(src, []article.Article{src, hidden}, 5)
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestRelated_EmptyCollection(t *testing.T) {
	got := Related(post(1, "a", "2024-01-01", nil, nil), nil, 3)
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil", got)
	}
}

func TestScore_CountsRepeatedNames(t *testing.T) {
	src := post(1, "src", "2024-01-01", []string{"x"}, []string{"t"})
	dup := post(2, "dup", "2024-01-01", []string{"x", "x"}, []string{"t", "t", "t"})

	if got := Score(src, dup); got != 2*2+3 {
		t.Errorf("Score = %d, want 7", got)
	}
	// Repeats in the source list do not add anything.
	if got := Score(dup, src); got != 2+1 {
		t.Errorf("Score reversed = %d, want 3", got)
	}
}

func TestStats(t *testing.T) {
	a := post(1, "a", "2024-01-01", nil, nil)
	a.Views = 10
	b := post(2, "b", "2024-01-01", nil, nil)
	b.Views = 5
	c := draft(post(3, "c", "2024-01-01", nil, nil))
	c.Views = 100

	got := ComputeStats([]article.Article{a, b, c}, testCategories, testTags)
	want := &Stats{TotalArticles: 2, TotalCategories: 2, TotalTags: 2, TotalViews: 15}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
