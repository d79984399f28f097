// Package source provides blog.Source implementations: a static content tree
// read from a directory or over HTTP, and the admin database.
package source

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/blog"
)

// Content tree layout, relative to its root.
const (
	IndexPath      = "data/index.json"
	CategoriesPath = "data/categories.json"
	TagsPath       = "data/tags.json"
	ManifestPath   = "data/manifest.json"
	ArticlesDir    = "articles"
)

var (
	_ blog.Source = (*Dir)(nil)
	_ blog.Source = (*HTTP)(nil)
	_ blog.Source = (*DB)(nil)
)

// DocumentPath returns the tree path of the document named by an index
// entry's filename. The name may reach into subdirectories ("2024/post.md")
// but must be a clean slash-separated relative path: absolute names, "." and
// ".." elements, empty elements and backslashes are rejected.
func DocumentPath(locator string) (string, error) {
	if locator == "." || !fs.ValidPath(locator) || strings.Contains(locator, `\`) {
		return "", fmt.Errorf("invalid document name %q", locator)
	}
	return path.Join(ArticlesDir, locator), nil
}

func decodeIndex(data []byte, name string) ([]article.IndexEntry, error) {
	entries := []article.IndexEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return entries, nil
}

func decodeTerms(data []byte, name string) ([]article.Term, error) {
	terms := []article.Term{}
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return terms, nil
}
