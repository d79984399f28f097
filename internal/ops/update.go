package ops

import (
	"context"
	"database/sql"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	// Addressing
	ID   int64  `json:"id"`
	Slug string `json:"slug"`

	// Editable fields (nil = don't change)
	NewSlug    *string   `json:"new_slug"`
	Title      *string   `json:"title"`
	Excerpt    *string   `json:"excerpt"`
	Content    *string   `json:"content"`
	Status     *string   `json:"status"`
	Categories *[]string `json:"categories"`
	Tags       *[]string `json:"tags"`
	Date       *string   `json:"date"`
	Author     *string   `json:"author"`
	Views      *int      `json:"views"`
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

func (in UpdateInput) empty() bool {
	return in.NewSlug == nil && in.Title == nil && in.Excerpt == nil && in.Content == nil &&
		in.Status == nil && in.Categories == nil && in.Tags == nil && in.Date == nil &&
		in.Author == nil && in.Views == nil
}

// Validate checks the fields that are being changed.
func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.NewSlug, validation.NilOrNotEmpty, slugRule),
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&in.Content, validation.NilOrNotEmpty),
		validation.Field(&in.Status, validation.NilOrNotEmpty, statusRule),
		validation.Field(&in.Date, validation.NilOrNotEmpty, dateRule),
		validation.Field(&in.Views, validation.Min(0)),
		validation.Field(&in.Categories, termNameRule),
		validation.Field(&in.Tags, termNameRule),
	)
}

func (in *UpdateInput) trim() {
	for _, p := range []*string{in.NewSlug, in.Title, in.Excerpt, in.Content, in.Status, in.Date, in.Author} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// Update modifies an existing article.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*UpdateOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr, err := ValidateAddress(input.ID, input.Slug)
	if err != nil {
		return nil, err
	}

	if input.empty() {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	input.trim()
	if err := input.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	r, err := getByAddress(database, addr)
	if err != nil {
		return nil, err
	}

	if input.NewSlug != nil && *input.NewSlug != r.Slug {
		exists, err := db.SlugExists(database, *input.NewSlug, r.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.NewSlugAlreadyExists(*input.NewSlug)
		}
		r.Slug = *input.NewSlug
	}

	// Apply updates
	if input.Title != nil {
		r.Title = *input.Title
	}
	if input.Excerpt != nil {
		r.Excerpt = *input.Excerpt
	}
	if input.Content != nil {
		r.Content = *input.Content
	}
	if input.Status != nil {
		r.Status = article.Status(*input.Status)
	}
	if input.Categories != nil {
		r.Categories = cleanList(*input.Categories)
	}
	if input.Tags != nil {
		r.Tags = cleanList(*input.Tags)
	}
	if input.Date != nil {
		r.Date = *input.Date
	}
	if input.Author != nil {
		r.Author = *input.Author
		if r.Author == "" {
			r.Author = article.DefaultAuthor
		}
	}
	if input.Views != nil {
		r.Views = *input.Views
	}

	if err := db.Update(database, r); err != nil {
		if err == db.ErrUniqueConstraint {
			return nil, errors.NewSlugAlreadyExists(r.Slug)
		}
		return nil, err
	}

	if err := syncTerms(database, &r.Article); err != nil {
		return nil, err
	}

	return &UpdateOutput{ID: r.ID, Slug: r.Slug}, nil
}
