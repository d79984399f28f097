package ops

import (
	"database/sql"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
)

// TermsInput contains parameters for the Terms operation.
type TermsInput struct {
	Kind string `json:"kind"` // "category" or "tag"
}

// TermsOutput contains the result of the Terms operation.
type TermsOutput struct {
	Kind  string         `json:"kind"`
	Terms []article.Term `json:"terms"`
}

// Terms lists the stored categories or tags with their published counts.
func Terms(database *sql.DB, input TermsInput) (*TermsOutput, error) {
	kind, err := termKind(input.Kind)
	if err != nil {
		return nil, err
	}
	terms, err := db.ListTerms(database, kind)
	if err != nil {
		return nil, err
	}
	return &TermsOutput{Kind: kind, Terms: terms}, nil
}

func termKind(kind string) (string, error) {
	switch kind {
	case db.KindCategory, "categories", "":
		return db.KindCategory, nil
	case db.KindTag, "tags":
		return db.KindTag, nil
	}
	return "", errors.NewInvalidRequest("kind must be category or tag")
}

// syncTerms registers a's categories and tags and recomputes every count.
func syncTerms(database *sql.DB, a *article.Article) error {
	if a != nil {
		if err := db.EnsureTerms(database, db.KindCategory, termsFor(a.Categories)); err != nil {
			return err
		}
		if err := db.EnsureTerms(database, db.KindTag, termsFor(a.Tags)); err != nil {
			return err
		}
	}
	return db.RefreshTermCounts(database)
}

func termsFor(names []string) []article.Term {
	terms := make([]article.Term, 0, len(names))
	for _, name := range names {
		terms = append(terms, article.Term{Name: name, Slug: blog.TermSlug(name)})
	}
	return terms
}
