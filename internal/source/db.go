package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
)

// DB serves the admin database as a content tree. Documents are the stored
// articles rendered back to front matter.
type DB struct {
	db *sql.DB
}

// NewDB returns a source over database.
func NewDB(database *sql.DB) *DB {
	return &DB{db: database}
}

func (s *DB) Index(ctx context.Context) ([]article.IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return db.ListIndex(s.db)
}

func (s *DB) Categories(ctx context.Context) ([]article.Term, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return db.ListTerms(s.db, db.KindCategory)
}

func (s *DB) Tags(ctx context.Context) ([]article.Term, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return db.ListTerms(s.db, db.KindTag)
}

func (s *DB) Document(ctx context.Context, locator string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	slug, ok := strings.CutSuffix(locator, ".md")
	if !ok || slug == "" {
		return "", fmt.Errorf("invalid document name %q", locator)
	}
	r, err := db.GetBySlug(s.db, slug)
	if err != nil {
		return "", err
	}
	return article.Marshal(r.Metadata, r.Content), nil
}
