package blog

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/errors"
)

// fakeSource serves canned content and counts calls.
type fakeSource struct {
	mu         sync.Mutex
	index      []article.IndexEntry
	categories []article.Term
	tags       []article.Term
	docs       map[string]string

	indexErr error
	tagsErr  error
	docErrs  map[string]error

	// gate, when set, blocks Index until closed.
	gate chan struct{}

	indexCalls atomic.Int32
	docCalls   atomic.Int32
}

func (f *fakeSource) Index(ctx context.Context) ([]article.IndexEntry, error) {
	f.indexCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	return f.index, nil
}

func (f *fakeSource) Categories(ctx context.Context) ([]article.Term, error) {
	return f.categories, nil
}

func (f *fakeSource) Tags(ctx context.Context) ([]article.Term, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tagsErr != nil {
		return nil, f.tagsErr
	}
	return f.tags, nil
}

func (f *fakeSource) Document(ctx context.Context, locator string) (string, error) {
	f.docCalls.Add(1)
	if err := f.docErrs[locator]; err != nil {
		return "", err
	}
	doc, ok := f.docs[locator]
	if !ok {
		return "", fmt.Errorf("no document %s", locator)
	}
	return doc, nil
}

func doc(title, date, categories, tags string) string {
	return fmt.Sprintf("---\ntitle: %q\nstatus: published\ndate: %s\ncategories: [%s]\ntags: [%s]\n---\n\n# %s\n", title, date, categories, tags, title)
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		index: []article.IndexEntry{
			{ID: 1, Slug: "hello-go", Filename: "hello-go.md", Status: "published"},
			{ID: 2, Slug: "channels", Filename: "channels.md", Status: "published"},
			{ID: 3, Slug: "wip", Filename: "wip.md", Status: "draft"},
		},
		categories: []article.Term{
			{ID: 1, Name: "Go", Slug: "go", Count: 2},
			{ID: 2, Name: "Tooling", Slug: "tooling", Count: 0},
		},
		tags: []article.Term{
			{ID: 1, Name: "concurrency", Slug: "concurrency", Count: 1},
		},
		docs: map[string]string{
			"hello-go.md": doc("Hello Go", "2024-01-01", "Go", ""),
			"channels.md": doc("Channels", "2024-03-01", "Go", "concurrency"),
			"wip.md":      doc("Work in progress", "2024-06-01", "Go", ""),
		},
	}
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func TestCache_LoadsCollection(t *testing.T) {
	src := newFakeSource()
	c := NewCache(src, WithLogger(quietLogger()))
	ctx := context.Background()

	require.False(t, c.Loaded())
	require.NoError(t, c.Initialize(ctx))
	require.True(t, c.Loaded())

	page, err := c.Articles(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, []string{"channels", "hello-go"}, slugs(page.Articles))
	require.Equal(t, 2, page.Total)

	a, err := c.ArticleBySlug(ctx, "channels")
	require.NoError(t, err)
	require.Equal(t, int64(2), a.ID)
	require.Equal(t, "Channels", a.Title)
	require.Equal(t, "# Channels", a.Content)
	require.Equal(t, []string{"concurrency"}, a.Tags)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, src.categories, cats)
}

func TestCache_InitializeOnce(t *testing.T) {
	src := newFakeSource()
	c := NewCache(src, WithLogger(quietLogger()))
	ctx := context.Background()

	for range 3 {
		require.NoError(t, c.Initialize(ctx))
	}
	_, err := c.Stats(ctx)
	require.NoError(t, err)

	require.Equal(t, int32(1), src.indexCalls.Load())
	require.Equal(t, int32(3), src.docCalls.Load())
}

func TestCache_ConcurrentInitializeSharesLoad(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	c := NewCache(src, WithLogger(quietLogger()))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.Initialize(context.Background())
		}()
	}

	// Let the goroutines pile up on the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), src.indexCalls.Load())
}

func TestCache_IndexFailureRetries(t *testing.T) {
	src := newFakeSource()
	src.indexErr = stderrors.New("connection refused")
	c := NewCache(src, WithLogger(quietLogger()))
	ctx := context.Background()

	err := c.Initialize(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrSourceUnavailable))
	require.Contains(t, err.Error(), "index")
	require.False(t, c.Loaded())

	_, err = c.ArticleByID(ctx, 1)
	require.True(t, errors.Is(err, errors.ErrSourceUnavailable))

	src.mu.Lock()
	src.indexErr = nil
	src.mu.Unlock()

	require.NoError(t, c.Initialize(ctx))
	require.True(t, c.Loaded())
	require.Equal(t, int32(3), src.indexCalls.Load())
}

func TestCache_TagsFailureIsFatal(t *testing.T) {
	src := newFakeSource()
	src.tagsErr = stderrors.New("500 Internal Server Error")
	c := NewCache(src, WithLogger(quietLogger()))

	err := c.Initialize(context.Background())
	fErr, ok := errors.As(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrSourceUnavailable, fErr.Code)
	require.Equal(t, "tags", fErr.Details["resource"])
	require.False(t, c.Loaded())
}

func TestCache_ArticleFailureIsPartial(t *testing.T) {
	src := newFakeSource()
	src.docErrs = map[string]error{"hello-go.md": stderrors.New("404 Not Found")}
	var logs bytes.Buffer
	c := NewCache(src, WithLogger(log.New(&logs, "", 0)), WithFetchConcurrency(1))
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx))

	_, err := c.ArticleBySlug(ctx, "hello-go")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	page, err := c.Articles(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, []string{"channels"}, slugs(page.Articles))

	require.Contains(t, logs.String(), "[warn] skipping article 1 (hello-go.md)")
}

func TestCache_LookupMiss(t *testing.T) {
	c := NewCache(newFakeSource(), WithLogger(quietLogger()))
	ctx := context.Background()

	a, err := c.ArticleBySlug(ctx, "missing")
	require.Nil(t, a)
	require.True(t, errors.Is(err, errors.ErrNotFound))

	a, err = c.ArticleByID(ctx, 99)
	require.Nil(t, a)
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCache_LookupReturnsDrafts(t *testing.T) {
	c := NewCache(newFakeSource(), WithLogger(quietLogger()))

	a, err := c.ArticleByID(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, article.StatusDraft, a.Status)
	require.False(t, a.Published())
}

func TestCache_IndexEntryOverridesFrontMatter(t *testing.T) {
	src := newFakeSource()
	src.index = []article.IndexEntry{{ID: 7, Slug: "from-index", Filename: "x.md", Status: "draft"}}
	src.docs = map[string]string{"x.md": "---\nslug: from-doc\nstatus: published\n---\nbody"}
	c := NewCache(src, WithLogger(quietLogger()))

	a, err := c.ArticleByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "from-index", a.Slug)
	require.Equal(t, article.StatusDraft, a.Status)
}

func TestCache_DefaultsFromClock(t *testing.T) {
	src := newFakeSource()
	src.index = []article.IndexEntry{{ID: 1, Filename: "plain.md"}}
	src.docs = map[string]string{"plain.md": "just text"}
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	c := NewCache(src, WithLogger(quietLogger()), WithClock(func() time.Time { return now }))

	a, err := c.ArticleByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, article.DefaultTitle, a.Title)
	require.Equal(t, article.DefaultSlug, a.Slug)
	require.Equal(t, article.StatusDraft, a.Status)
	require.Equal(t, "2026-10-19", a.Date)
	require.Equal(t, "just text", a.Content)
}

func TestCache_DuplicateSlugFirstWins(t *testing.T) {
	src := newFakeSource()
	src.index = []article.IndexEntry{
		{ID: 1, Slug: "same", Filename: "hello-go.md", Status: "published"},
		{ID: 2, Slug: "same", Filename: "channels.md", Status: "published"},
	}
	var logs bytes.Buffer
	c := NewCache(src, WithLogger(log.New(&logs, "", 0)))

	a, err := c.ArticleBySlug(context.Background(), "same")
	require.NoError(t, err)
	require.Equal(t, int64(1), a.ID)
	require.True(t, strings.Contains(logs.String(), `duplicate article slug "same"`))
}

func TestCache_RelatedAndRecommended(t *testing.T) {
	c := NewCache(newFakeSource(), WithLogger(quietLogger()), WithLimits(Limits{Recommended: 1}))
	ctx := context.Background()

	src, err := c.ArticleBySlug(ctx, "hello-go")
	require.NoError(t, err)

	related, err := c.Related(ctx, src, 0)
	require.NoError(t, err)
	require.Len(t, related, 1)
	require.Equal(t, "channels", related[0].Slug)
	require.Equal(t, CategoryWeight, related[0].Score)

	_, err = c.Related(ctx, nil, 3)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	recommended, err := c.Recommended(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"channels"}, slugs(recommended))
}

func TestCache_Stats(t *testing.T) {
	c := NewCache(newFakeSource(), WithLogger(quietLogger()))

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, &Stats{TotalArticles: 2, TotalCategories: 2, TotalTags: 1}, stats)
}

func TestCache_CanceledWaiter(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	c := NewCache(src, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Initialize(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The load keeps going for other callers.
	close(src.gate)
	require.NoError(t, c.Initialize(context.Background()))
	require.Equal(t, int32(1), src.indexCalls.Load())
}

func TestCache_PageSizeLimit(t *testing.T) {
	c := NewCache(newFakeSource(), WithLogger(quietLogger()), WithLimits(Limits{PageSize: 1}))

	page, err := c.Articles(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Limit)
	require.Equal(t, 2, page.TotalPages)
}
