package blog

import (
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/hpungsan/folio/internal/article"
)

// TermTable is an immutable category or tag table with name<->slug lookups.
// When names or slugs repeat, the first entry wins.
type TermTable struct {
	terms  []article.Term
	bySlug map[string]int
	byName map[string]int
}

// NewTermTable builds a table from terms, deriving slugs that are missing.
func NewTermTable(terms []article.Term) TermTable {
	t := TermTable{
		terms:  make([]article.Term, 0, len(terms)),
		bySlug: make(map[string]int, len(terms)),
		byName: make(map[string]int, len(terms)),
	}
	for _, term := range terms {
		if term.Slug == "" {
			term.Slug = TermSlug(term.Name)
		}
		i := len(t.terms)
		t.terms = append(t.terms, term)
		if _, dup := t.bySlug[term.Slug]; !dup {
			t.bySlug[term.Slug] = i
		}
		if _, dup := t.byName[term.Name]; !dup {
			t.byName[term.Name] = i
		}
	}
	return t
}

// Terms returns a copy of the table in source order.
func (t TermTable) Terms() []article.Term {
	out := make([]article.Term, len(t.terms))
	copy(out, t.terms)
	return out
}

// Len returns the number of terms.
func (t TermTable) Len() int {
	return len(t.terms)
}

// NameBySlug resolves a slug to its display name.
func (t TermTable) NameBySlug(s string) (string, bool) {
	i, ok := t.bySlug[s]
	if !ok {
		return "", false
	}
	return t.terms[i].Name, true
}

// SlugByName resolves a display name to its slug. Names missing from the
// table still get a derived slug so links can be built; ok reports whether
// the name was found.
func (t TermTable) SlugByName(name string) (string, bool) {
	i, ok := t.byName[name]
	if !ok {
		return TermSlug(name), false
	}
	return t.terms[i].Slug, true
}

// TermSlug derives a URL-safe slug from a term name.
func TermSlug(name string) string {
	if s, err := slug.Normalize(name); err == nil && s != "" {
		return s
	}
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
