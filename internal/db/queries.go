package db

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/errors"
)

// ErrUniqueConstraint is returned when a write violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.FolioError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// Term kinds stored in the terms table.
const (
	KindCategory = "category"
	KindTag      = "tag"
)

// Record is a stored article with its bookkeeping timestamps (unix seconds).
type Record struct {
	article.Article
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Counts summarizes the articles table.
type Counts struct {
	Total      int `json:"total"`
	Published  int `json:"published"`
	Draft      int `json:"draft"`
	TotalViews int `json:"total_views"`
}

const articleColumns = `id, slug, title, excerpt, content, status,
	categories_json, tags_json, date, views, author, created_at, updated_at`

// Insert stores a new article. A zero r.ID is assigned by the database and
// written back into r.
func Insert(db *sql.DB, r *Record) error {
	categoriesJSON, tagsJSON, err := encodeLists(&r.Article)
	if err != nil {
		return err
	}

	var id any
	if r.ID != 0 {
		id = r.ID
	}

	query := `
		INSERT INTO articles (
			id, slug, title, excerpt, content, status,
			categories_json, tags_json, date, views, author, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.Exec(query,
		id, r.Slug, r.Title, r.Excerpt, r.Content, string(r.Status),
		categoriesJSON, tagsJSON, r.Date, r.Views, r.Author, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	if r.ID == 0 {
		newID, err := result.LastInsertId()
		if err != nil {
			return errors.NewInternal(err)
		}
		r.ID = newID
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves an article by id.
func GetByID(db *sql.DB, id int64) (*Record, error) {
	row := db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("article", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// GetBySlug retrieves an article by slug.
func GetBySlug(db *sql.DB, slug string) (*Record, error) {
	row := db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("article", slug)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return r, nil
}

// SlugExists reports whether any article other than excludeID uses slug.
func SlugExists(db *sql.DB, slug string, excludeID int64) (bool, error) {
	var exists int
	err := db.QueryRow(`SELECT 1 FROM articles WHERE slug = ? AND id != ? LIMIT 1`, slug, excludeID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// Update overwrites every mutable field of an existing article and bumps
// updated_at. The id and created_at never change.
func Update(db *sql.DB, r *Record) error {
	categoriesJSON, tagsJSON, err := encodeLists(&r.Article)
	if err != nil {
		return err
	}

	now := time.Now().Unix()

	query := `
		UPDATE articles
		SET slug = ?, title = ?, excerpt = ?, content = ?, status = ?,
			categories_json = ?, tags_json = ?, date = ?, views = ?, author = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := db.Exec(query,
		r.Slug, r.Title, r.Excerpt, r.Content, string(r.Status),
		categoriesJSON, tagsJSON, r.Date, r.Views, r.Author,
		now, r.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("article", strconv.FormatInt(r.ID, 10))
	}

	r.UpdatedAt = now
	return nil
}

// Delete removes an article.
func Delete(db *sql.DB, id int64) error {
	result, err := db.Exec(`DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound("article", strconv.FormatInt(id, 10))
	}
	return nil
}

// ListArticles returns articles newest first, optionally restricted to one
// status, along with the total number of matching rows.
func ListArticles(db *sql.DB, status article.Status, limit, offset int) ([]Record, int, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE status = ?"
		args = append(args, string(status))
	}

	var total int
	if err := db.QueryRow(`SELECT COUNT(*) FROM articles`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + articleColumns + ` FROM articles` + where +
		` ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return records, total, nil
}

// ListIndex returns one index entry per stored article in id order.
// Filenames are "<slug>.md".
func ListIndex(db *sql.DB) ([]article.IndexEntry, error) {
	rows, err := db.Query(`SELECT id, slug, status FROM articles ORDER BY id`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	entries := []article.IndexEntry{}
	for rows.Next() {
		var e article.IndexEntry
		if err := rows.Scan(&e.ID, &e.Slug, &e.Status); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Filename = DocumentName(e.Slug)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// DocumentName is the content-tree filename of the article with slug.
func DocumentName(slug string) string {
	return slug + ".md"
}

// ListTerms returns the terms of one kind in insertion order.
func ListTerms(db *sql.DB, kind string) ([]article.Term, error) {
	rows, err := db.Query(`SELECT id, name, slug, count FROM terms WHERE kind = ? ORDER BY id`, kind)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	terms := []article.Term{}
	for rows.Next() {
		var t article.Term
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Count); err != nil {
			return nil, errors.NewInternal(err)
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return terms, nil
}

// EnsureTerms inserts terms that are not stored yet. A term whose name or
// slug is already taken within its kind is left alone. Every term must carry
// a slug.
func EnsureTerms(db *sql.DB, kind string, terms []article.Term) error {
	if len(terms) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO terms (kind, name, slug) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer stmt.Close()

	for _, t := range terms {
		if t.Name == "" || t.Slug == "" {
			continue
		}
		if _, err := stmt.Exec(kind, t.Name, t.Slug); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// RefreshTermCounts recomputes every term's count as the number of
// published articles that list its name.
func RefreshTermCounts(db *sql.DB) error {
	query := `
		UPDATE terms SET count = (
			SELECT COUNT(DISTINCT a.id)
			FROM articles a, json_each(
				CASE terms.kind WHEN 'category' THEN a.categories_json ELSE a.tags_json END
			) j
			WHERE a.status = 'published' AND j.value = terms.name
		)
	`
	if _, err := db.Exec(query); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Overview counts articles by status and sums their views.
func Overview(db *sql.DB) (*Counts, error) {
	var c Counts
	err := db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(status = 'published'), 0),
			COALESCE(SUM(status = 'draft'), 0),
			COALESCE(SUM(views), 0)
		FROM articles
	`).Scan(&c.Total, &c.Published, &c.Draft, &c.TotalViews)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &c, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single row selected with articleColumns.
func scanRecord(row scanner) (*Record, error) {
	var (
		r              Record
		status         string
		categoriesJSON string
		tagsJSON       string
	)

	err := row.Scan(
		&r.ID, &r.Slug, &r.Title, &r.Excerpt, &r.Content, &status,
		&categoriesJSON, &tagsJSON, &r.Date, &r.Views, &r.Author, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = article.Status(status)
	if r.Categories, err = decodeList(categoriesJSON); err != nil {
		return nil, err
	}
	if r.Tags, err = decodeList(tagsJSON); err != nil {
		return nil, err
	}

	return &r, nil
}

func encodeLists(a *article.Article) (string, string, error) {
	categories, err := encodeList(a.Categories)
	if err != nil {
		return "", "", errors.NewInternal(err)
	}
	tags, err := encodeList(a.Tags)
	if err != nil {
		return "", "", errors.NewInternal(err)
	}
	return categories, tags, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(s string) ([]string, error) {
	items := []string{}
	if s == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	return items, nil
}
