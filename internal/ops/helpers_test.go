package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/folio/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// mustCreate stores a published article with the given title.
func mustCreate(t *testing.T, database *sql.DB, input CreateInput) *CreateOutput {
	t.Helper()
	if input.Content == "" {
		input.Content = "Some **markdown** body."
	}
	if input.Status == "" {
		input.Status = "published"
	}
	out, err := Create(context.Background(), database, input)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", input.Title, err)
	}
	return out
}

func stringPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
