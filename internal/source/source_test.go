package source

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/errors"
)

const (
	indexJSON = `[
		{"id": 1, "slug": "hello", "filename": "hello.md", "status": "published"},
		{"id": 2, "slug": "draft", "filename": "draft.md", "status": "draft"}
	]`
	categoriesJSON = `[{"id": 1, "name": "Go", "slug": "go", "count": 1}]`
	// Name-only variant: slugs are derived when the table is built.
	tagsJSON = `[{"id": 1, "name": "Standard Library", "count": 1}]`

	helloDoc = "---\ntitle: \"Hello\"\ncategories: [\"Go\"]\ntags: Standard Library\ndate: 2024-02-03\n---\n\nHi there.\n"
)

func testTree() fstest.MapFS {
	return fstest.MapFS{
		IndexPath:           {Data: []byte(indexJSON)},
		CategoriesPath:      {Data: []byte(categoriesJSON)},
		TagsPath:            {Data: []byte(tagsJSON)},
		"articles/hello.md": {Data: []byte(helloDoc)},
		"articles/draft.md": {Data: []byte("just a draft")},
	}
}

func TestDir_ReadsTree(t *testing.T) {
	src := NewDir(testTree())
	ctx := context.Background()

	index, err := src.Index(ctx)
	require.NoError(t, err)
	require.Len(t, index, 2)
	require.Equal(t, article.IndexEntry{ID: 1, Slug: "hello", Filename: "hello.md", Status: "published"}, index[0])

	cats, err := src.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []article.Term{{ID: 1, Name: "Go", Slug: "go", Count: 1}}, cats)

	tags, err := src.Tags(ctx)
	require.NoError(t, err)
	require.Equal(t, "", tags[0].Slug)

	doc, err := src.Document(ctx, "hello.md")
	require.NoError(t, err)
	require.Equal(t, helloDoc, doc)
}

func TestDir_MissingFile(t *testing.T) {
	src := NewDir(fstest.MapFS{})

	_, err := src.Index(context.Background())
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDir_BadJSON(t *testing.T) {
	src := NewDir(fstest.MapFS{IndexPath: {Data: []byte("{not json")}})

	_, err := src.Index(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode data/index.json")
}

func TestDocumentPath(t *testing.T) {
	for _, bad := range []string{
		"", ".", "..", "../secret.md", "/etc/passwd", "2024/../../x.md",
		"2024//x.md", "./x.md", "2024/", `2024\x.md`,
	} {
		_, err := DocumentPath(bad)
		require.Error(t, err, "DocumentPath(%q)", bad)
	}

	for locator, want := range map[string]string{
		"ok.md":         "articles/ok.md",
		"2024/post.md":  "articles/2024/post.md",
		"a/b/deep.md":   "articles/a/b/deep.md",
		"with space.md": "articles/with space.md",
	} {
		p, err := DocumentPath(locator)
		require.NoError(t, err, "DocumentPath(%q)", locator)
		require.Equal(t, want, p)
	}
}

func TestDir_DocumentInSubdirectory(t *testing.T) {
	tree := testTree()
	tree["articles/2024/nested.md"] = &fstest.MapFile{Data: []byte("nested body")}

	doc, err := NewDir(tree).Document(context.Background(), "2024/nested.md")
	require.NoError(t, err)
	require.Equal(t, "nested body", doc)
}

func TestDir_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDir(testTree()).Document(ctx, "hello.md")
	require.ErrorIs(t, err, context.Canceled)
}

// End to end: a cache over a directory tree.
func TestDir_WithCache(t *testing.T) {
	cache := blog.NewCache(NewDir(testTree()), blog.WithClock(func() time.Time {
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
	ctx := context.Background()

	a, err := cache.ArticleBySlug(ctx, "hello")
	require.NoError(t, err)
	require.Equal(t, "Hello", a.Title)
	require.Equal(t, article.StatusPublished, a.Status)
	require.Equal(t, []string{"Standard Library"}, a.Tags)
	require.Equal(t, "Hi there.", a.Content)

	page, err := cache.Articles(ctx, blog.Filter{TagSlug: "standard-library"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	d, err := cache.ArticleBySlug(ctx, "draft")
	require.NoError(t, err)
	require.Equal(t, "2025-01-01", d.Date)
	require.Equal(t, "just a draft", d.Content)
}

func newTreeServer(t *testing.T, tree fstest.MapFS) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("/blog/", http.StripPrefix("/blog/", http.FileServerFS(tree)))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_ReadsTree(t *testing.T) {
	tree := testTree()
	tree["articles/2024/nested.md"] = &fstest.MapFile{Data: []byte("nested body")}
	ts := newTreeServer(t, tree)

	src, err := NewHTTP(ts.URL+"/blog", nil)
	require.NoError(t, err)
	ctx := context.Background()

	index, err := src.Index(ctx)
	require.NoError(t, err)
	require.Len(t, index, 2)

	tags, err := src.Tags(ctx)
	require.NoError(t, err)
	require.Equal(t, "Standard Library", tags[0].Name)

	doc, err := src.Document(ctx, "hello.md")
	require.NoError(t, err)
	require.Equal(t, helloDoc, doc)

	doc, err = src.Document(ctx, "2024/nested.md")
	require.NoError(t, err)
	require.Equal(t, "nested body", doc)
}

func TestHTTP_StatusError(t *testing.T) {
	ts := newTreeServer(t, testTree())

	src, err := NewHTTP(ts.URL+"/blog/", ts.Client())
	require.NoError(t, err)

	_, err = src.Document(context.Background(), "missing.md")
	var statusErr *StatusError
	require.True(t, stderrors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.Contains(t, err.Error(), "404")
}

func TestHTTP_TooLarge(t *testing.T) {
	ts := newTreeServer(t, testTree())

	src, err := NewHTTP(ts.URL+"/blog", nil)
	require.NoError(t, err)
	src.maxBytes = 10

	_, err = src.Index(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds")
}

func TestNewHTTP_InvalidURL(t *testing.T) {
	for _, bad := range []string{"", "not a url", "/relative/only"} {
		_, err := NewHTTP(bad, nil)
		require.Error(t, err, "NewHTTP(%q)", bad)
	}
}

// The cache surfaces an unreachable index as SOURCE_UNAVAILABLE.
func TestHTTP_IndexFailureWithCache(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	src, err := NewHTTP(ts.URL, nil)
	require.NoError(t, err)

	err = blog.NewCache(src).Initialize(context.Background())
	require.True(t, errors.Is(err, errors.ErrSourceUnavailable))
	var statusErr *StatusError
	require.True(t, stderrors.As(err, &statusErr))
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestDB_ServesStoredArticles(t *testing.T) {
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	r := &db.Record{Article: article.Article{
		Metadata: article.Metadata{
			Title:      "Stored",
			Excerpt:    "from the db",
			Slug:       "stored",
			Status:     article.StatusPublished,
			Categories: []string{"Go"},
			Tags:       []string{},
			Date:       "2024-07-07",
			Views:      9,
			Author:     "Ada",
		},
		Content: "Stored body.",
	}}
	require.NoError(t, db.Insert(database, r))
	require.NoError(t, db.EnsureTerms(database, db.KindCategory, []article.Term{{Name: "Go", Slug: "go"}}))

	src := NewDB(database)
	ctx := context.Background()

	index, err := src.Index(ctx)
	require.NoError(t, err)
	require.Equal(t, []article.IndexEntry{{ID: r.ID, Slug: "stored", Filename: "stored.md", Status: "published"}}, index)

	doc, err := src.Document(ctx, "stored.md")
	require.NoError(t, err)

	parsed := article.Parse(doc)
	meta := article.Validate(parsed.Metadata)
	require.Equal(t, r.Metadata, meta)
	require.Equal(t, "Stored body.", parsed.Content)

	_, err = src.Document(ctx, "stored")
	require.Error(t, err)

	_, err = src.Document(ctx, "gone.md")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	cache := blog.NewCache(src)
	cats, err := cache.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Equal(t, "go", cats[0].Slug)
}
