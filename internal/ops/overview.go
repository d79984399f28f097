package ops

import (
	"database/sql"

	"github.com/hpungsan/folio/internal/db"
)

// OverviewOutput summarizes the stored content for the admin dashboard.
type OverviewOutput struct {
	db.Counts
	Categories int              `json:"categories"`
	Tags       int              `json:"tags"`
	Latest     []ArticleSummary `json:"latest"`
}

// overviewLatest is how many recently dated articles Overview returns.
const overviewLatest = 5

// Overview counts articles and terms and returns the latest few articles.
func Overview(database *sql.DB) (*OverviewOutput, error) {
	counts, err := db.Overview(database)
	if err != nil {
		return nil, err
	}

	categories, err := db.ListTerms(database, db.KindCategory)
	if err != nil {
		return nil, err
	}
	tags, err := db.ListTerms(database, db.KindTag)
	if err != nil {
		return nil, err
	}

	latest, err := List(database, ListInput{Limit: overviewLatest})
	if err != nil {
		return nil, err
	}

	return &OverviewOutput{
		Counts:     *counts,
		Categories: len(categories),
		Tags:       len(tags),
		Latest:     latest.Items,
	}, nil
}
