package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/source"
)

// ImportMode controls slug collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail before writing anything
	ImportModeReplace ImportMode = "replace" // overwrite the stored article
	ImportModeSkip    ImportMode = "skip"    // keep the stored article
)

// ImportInput contains parameters for the Import operation.
// Exactly one of Dir or URL names the content tree.
type ImportInput struct {
	Dir  string     `json:"dir"`
	URL  string     `json:"url"`
	Mode ImportMode `json:"mode"` // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Replaced int           `json:"replaced"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError reports one index entry that could not be imported.
type ImportError struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Import copies a content tree into the database.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	dir := strings.TrimSpace(input.Dir)
	url := strings.TrimSpace(input.URL)
	if (dir == "") == (url == "") {
		return nil, errors.NewInvalidRequest("specify exactly one of dir or url")
	}

	var src blog.Source
	if dir != "" {
		if err := ValidateDir(dir, PathCheckRead, cfg); err != nil {
			return nil, err
		}
		src = source.OpenDir(dir)
	} else {
		h, err := source.NewHTTP(url, nil)
		if err != nil {
			return nil, errors.NewInvalidRequest(err.Error())
		}
		src = h
	}

	return ImportFrom(ctx, database, src, input.Mode)
}

// ImportFrom copies the articles and terms served by src into the database.
// Index, category and tag failures abort the import; a document that cannot
// be fetched is reported in Errors and the rest carry on.
func ImportFrom(ctx context.Context, database *sql.DB, src blog.Source, mode ImportMode) (*ImportOutput, error) {
	if mode == "" {
		mode = ImportModeError
	}
	if mode != ImportModeError && mode != ImportModeReplace && mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, skip")
	}

	index, err := src.Index(ctx)
	if err != nil {
		return nil, errors.NewSourceUnavailable("index", err)
	}
	categories, err := src.Categories(ctx)
	if err != nil {
		return nil, errors.NewSourceUnavailable("categories", err)
	}
	tags, err := src.Tags(ctx)
	if err != nil {
		return nil, errors.NewSourceUnavailable("tags", err)
	}

	output := &ImportOutput{Errors: []ImportError{}}

	// Fetch everything first so mode:error can refuse before any write
	now := time.Now()
	articles := make([]article.Article, 0, len(index))
	for _, entry := range index {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := src.Document(ctx, entry.Filename)
		if err != nil {
			output.Errors = append(output.Errors, importError(entry, err))
			continue
		}
		articles = append(articles, blog.FromDocument(entry, raw, now))
	}

	existing := make(map[string]*db.Record, len(articles))
	for _, a := range articles {
		r, err := db.GetBySlug(database, a.Slug)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if mode == ImportModeError {
			return nil, errors.NewSlugAlreadyExists(a.Slug)
		}
		existing[a.Slug] = r
	}

	if err := db.EnsureTerms(database, db.KindCategory, withSlugs(categories)); err != nil {
		return nil, err
	}
	if err := db.EnsureTerms(database, db.KindTag, withSlugs(tags)); err != nil {
		return nil, err
	}

	for _, a := range articles {
		if r, ok := existing[a.Slug]; ok {
			if mode == ImportModeSkip {
				output.Skipped++
				continue
			}
			r.Metadata = a.Metadata
			r.Content = a.Content
			if err := db.Update(database, r); err != nil {
				output.Errors = append(output.Errors, importError(article.IndexEntry{ID: a.ID, Filename: db.DocumentName(a.Slug)}, err))
				continue
			}
			output.Replaced++
		} else {
			if err := insertImported(database, a, now); err != nil {
				output.Errors = append(output.Errors, importError(article.IndexEntry{ID: a.ID, Filename: db.DocumentName(a.Slug)}, err))
				continue
			}
			output.Imported++
		}

		if err := db.EnsureTerms(database, db.KindCategory, termsFor(a.Categories)); err != nil {
			return nil, err
		}
		if err := db.EnsureTerms(database, db.KindTag, termsFor(a.Tags)); err != nil {
			return nil, err
		}
	}

	if err := syncTerms(database, nil); err != nil {
		return nil, err
	}

	return output, nil
}

// insertImported stores a, keeping its id unless another article has it.
func insertImported(database *sql.DB, a article.Article, now time.Time) error {
	if a.ID > 0 {
		if _, err := db.GetByID(database, a.ID); err == nil {
			a.ID = 0
		} else if !errors.Is(err, errors.ErrNotFound) {
			return err
		}
	} else {
		a.ID = 0
	}

	r := &db.Record{Article: a, CreatedAt: now.Unix(), UpdatedAt: now.Unix()}
	return db.Insert(database, r)
}

func withSlugs(terms []article.Term) []article.Term {
	out := make([]article.Term, 0, len(terms))
	for _, t := range terms {
		if t.Slug == "" {
			t.Slug = blog.TermSlug(t.Name)
		}
		out = append(out, t)
	}
	return out
}

func importError(entry article.IndexEntry, err error) ImportError {
	code := string(errors.ErrInternal)
	if fErr, ok := errors.As(err); ok {
		code = string(fErr.Code)
	}
	return ImportError{
		ID:       entry.ID,
		Filename: entry.Filename,
		Code:     code,
		Message:  fmt.Sprint(err),
	}
}
