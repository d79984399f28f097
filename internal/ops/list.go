package ops

import (
	"database/sql"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Status string `json:"status"` // optional: draft or published
	Limit  int    `json:"limit"`  // default: 20, max: 100
	Offset int    `json:"offset"` // default: 0
}

// ArticleSummary is a stored article without its body.
type ArticleSummary struct {
	ID         int64          `json:"id"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Status     article.Status `json:"status"`
	Date       string         `json:"date"`
	Categories []string       `json:"categories"`
	Tags       []string       `json:"tags"`
	Views      int            `json:"views"`
	UpdatedAt  int64          `json:"updated_at"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []ArticleSummary `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sort       string           `json:"sort"`
}

// List retrieves stored article summaries, drafts included, newest first.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	status := article.Status(input.Status)
	if status != "" && !status.Valid() {
		return nil, errors.NewInvalidRequest("status must be draft or published")
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(input.Offset, 0)

	records, total, err := db.ListArticles(database, status, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]ArticleSummary, 0, len(records))
	for _, r := range records {
		items = append(items, summarize(&r))
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "date_desc",
	}, nil
}

func summarize(r *db.Record) ArticleSummary {
	return ArticleSummary{
		ID:         r.ID,
		Slug:       r.Slug,
		Title:      r.Title,
		Status:     r.Status,
		Date:       r.Date,
		Categories: r.Categories,
		Tags:       r.Tags,
		Views:      r.Views,
		UpdatedAt:  r.UpdatedAt,
	}
}
