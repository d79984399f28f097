package ops

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/source"
)

// ManifestSchemaVersion is written into every export manifest.
const ManifestSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path          string `json:"path"`           // optional, default: ~/.folio/exports/<name>-<timestamp>
	Name          string `json:"name"`           // optional, default: "site"
	PublishedOnly bool   `json:"published_only"` // leave drafts out of the tree
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	BuildID    string `json:"build_id"`
	ExportedAt int64  `json:"exported_at"`
}

// Manifest describes one exported content tree.
type Manifest struct {
	SchemaVersion string `json:"schema_version"`
	BuildID       string `json:"build_id"`
	ExportedAt    int64  `json:"exported_at"`
	Articles      int    `json:"articles"`
}

// Export writes the stored articles as a static content tree that
// source.Dir and source.HTTP can serve. Every file is replaced atomically;
// files from earlier exports that are no longer indexed are left in place.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(input.Name, now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too; the name is user input
	if err := ValidateDir(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	buildID, err := generateULID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	src := source.NewDB(database)

	index, err := src.Index(ctx)
	if err != nil {
		return nil, err
	}
	if input.PublishedOnly {
		index = publishedEntries(index)
	}
	categories, err := src.Categories(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := src.Tags(ctx)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{source.ArticlesDir, filepath.Dir(source.IndexPath)} {
		if err := os.MkdirAll(filepath.Join(exportPath, filepath.FromSlash(dir)), 0700); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
		}
	}

	for _, entry := range index {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := src.Document(ctx, entry.Filename)
		if err != nil {
			return nil, err
		}
		docPath, err := source.DocumentPath(entry.Filename)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := writeTreeFile(exportPath, docPath, []byte(doc)); err != nil {
			return nil, err
		}
	}

	files := []struct {
		path  string
		value any
	}{
		{source.IndexPath, index},
		{source.CategoriesPath, categories},
		{source.TagsPath, tags},
		{source.ManifestPath, Manifest{
			SchemaVersion: ManifestSchemaVersion,
			BuildID:       buildID,
			ExportedAt:    now.Unix(),
			Articles:      len(index),
		}},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.value, "", "  ")
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := writeTreeFile(exportPath, f.path, append(data, '\n')); err != nil {
			return nil, err
		}
	}

	abs, err := filepath.Abs(exportPath)
	if err != nil {
		abs = exportPath
	}

	return &ExportOutput{
		Path:       abs,
		Count:      len(index),
		BuildID:    buildID,
		ExportedAt: now.Unix(),
	}, nil
}

// writeTreeFile atomically replaces root/rel (rel uses forward slashes).
func writeTreeFile(root, rel string, data []byte) error {
	dest := filepath.Join(root, filepath.FromSlash(rel))

	// The tree holds plain files only.
	if info, err := os.Lstat(dest); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest(fmt.Sprintf("export file %s is a symlink", rel))
	}

	if err := atomic.WriteFile(dest, bytes.NewReader(data)); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to write %s: %w", rel, err))
	}
	return nil
}

func publishedEntries(index []article.IndexEntry) []article.IndexEntry {
	out := make([]article.IndexEntry, 0, len(index))
	for _, e := range index {
		if article.Status(e.Status) == article.StatusPublished {
			out = append(out, e)
		}
	}
	return out
}

// defaultExportPath generates the default export directory.
// Format: ~/.folio/exports/<name>-<timestamp>
func defaultExportPath(name string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "site"
	}
	name = SanitizeForFilename(name)

	return filepath.Join(dir, fmt.Sprintf("%s-%s", name, now.Format("2006-01-02T150405"))), nil
}

// generateULID generates a new ULID.
func generateULID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
