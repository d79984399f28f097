package ops

import (
	"database/sql"

	"github.com/hpungsan/folio/internal/db"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	IncludeBody *bool  `json:"include_body"` // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	db.Record
}

// Fetch retrieves a stored article by id or slug. Drafts are included.
func Fetch(database *sql.DB, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Slug)
	if err != nil {
		return nil, err
	}

	r, err := getByAddress(database, addr)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{Record: *r}
	if input.IncludeBody != nil && !*input.IncludeBody {
		output.Content = ""
	}
	return output, nil
}

func getByAddress(database *sql.DB, addr *Address) (*db.Record, error) {
	if addr.ByID {
		return db.GetByID(database, addr.ID)
	}
	return db.GetBySlug(database, addr.Slug)
}
