package source

import (
	"context"
	"io/fs"
	"os"

	"github.com/hpungsan/folio/internal/article"
)

// Dir reads a content tree from a file system.
type Dir struct {
	fsys fs.FS
}

// NewDir returns a source over fsys.
func NewDir(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys}
}

// OpenDir returns a source over the directory at root.
func OpenDir(root string) *Dir {
	return NewDir(os.DirFS(root))
}

func (d *Dir) Index(ctx context.Context) ([]article.IndexEntry, error) {
	data, err := d.read(ctx, IndexPath)
	if err != nil {
		return nil, err
	}
	return decodeIndex(data, IndexPath)
}

func (d *Dir) Categories(ctx context.Context) ([]article.Term, error) {
	data, err := d.read(ctx, CategoriesPath)
	if err != nil {
		return nil, err
	}
	return decodeTerms(data, CategoriesPath)
}

func (d *Dir) Tags(ctx context.Context) ([]article.Term, error) {
	data, err := d.read(ctx, TagsPath)
	if err != nil {
		return nil, err
	}
	return decodeTerms(data, TagsPath)
}

func (d *Dir) Document(ctx context.Context, locator string) (string, error) {
	p, err := DocumentPath(locator)
	if err != nil {
		return "", err
	}
	data, err := d.read(ctx, p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (d *Dir) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(d.fsys, name)
}
