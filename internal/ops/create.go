package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Title      string   `json:"title"`   // required
	Content    string   `json:"content"` // required, markdown
	Slug       string   `json:"slug"`    // default: derived from title
	Excerpt    string   `json:"excerpt"`
	Status     string   `json:"status"` // default: draft
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Date       string   `json:"date"`   // default: today, YYYY-MM-DD
	Author     string   `json:"author"` // default: Anonymous
	Views      int      `json:"views"`
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

// Validate checks the input after defaults have been applied.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Slug, validation.Required.Error("cannot be derived from the title; set it explicitly"), slugRule),
		validation.Field(&in.Status, validation.Required, statusRule),
		validation.Field(&in.Date, validation.Required, dateRule),
		validation.Field(&in.Views, validation.Min(0)),
		validation.Field(&in.Categories, termNameRule),
		validation.Field(&in.Tags, termNameRule),
	)
}

func (in *CreateInput) applyDefaults() {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Status = strings.TrimSpace(in.Status)
	in.Date = strings.TrimSpace(in.Date)
	in.Author = strings.TrimSpace(in.Author)
	in.Content = strings.TrimSpace(in.Content)

	if in.Slug == "" {
		in.Slug = deriveSlug(in.Title)
	}
	if in.Status == "" {
		in.Status = string(article.DefaultStatus)
	}
	if in.Date == "" {
		in.Date = today()
	}
	if in.Author == "" {
		in.Author = article.DefaultAuthor
	}
	in.Categories = cleanList(in.Categories)
	in.Tags = cleanList(in.Tags)
}

// Create stores a new article.
func Create(ctx context.Context, database *sql.DB, input CreateInput) (*CreateOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input.applyDefaults()
	if err := input.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	exists, err := db.SlugExists(database, input.Slug, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewSlugAlreadyExists(input.Slug)
	}

	now := time.Now().Unix()
	r := &db.Record{
		Article: article.Article{
			Metadata: article.Metadata{
				Title:      input.Title,
				Excerpt:    input.Excerpt,
				Slug:       input.Slug,
				Status:     article.Status(input.Status),
				Categories: input.Categories,
				Tags:       input.Tags,
				Date:       input.Date,
				Views:      input.Views,
				Author:     input.Author,
			},
			Content: input.Content,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Insert(database, r); err != nil {
		// Lost a race with a concurrent create
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewSlugAlreadyExists(input.Slug)
		}
		return nil, err
	}

	if err := syncTerms(database, &r.Article); err != nil {
		return nil, err
	}

	return &CreateOutput{ID: r.ID, Slug: r.Slug}, nil
}
