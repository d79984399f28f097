package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/folio/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
}

// Delete removes an article permanently and refreshes term counts.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr, err := ValidateAddress(input.ID, input.Slug)
	if err != nil {
		return nil, err
	}

	// Resolve slug addressing to an id, and confirm it exists
	r, err := getByAddress(database, addr)
	if err != nil {
		return nil, err
	}

	if err := db.Delete(database, r.ID); err != nil {
		return nil, err
	}

	if err := syncTerms(database, nil); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      r.ID,
		Slug:    r.Slug,
	}, nil
}
