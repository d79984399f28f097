package blog

import (
	"context"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/errors"
)

// Source supplies the raw content the cache is filled from.
type Source interface {
	// Index lists the articles to load, in display order.
	Index(ctx context.Context) ([]article.IndexEntry, error)
	Categories(ctx context.Context) ([]article.Term, error)
	Tags(ctx context.Context) ([]article.Term, error)
	// Document returns the raw front-matter document for an index entry's filename.
	Document(ctx context.Context, locator string) (string, error)
}

// Repository is the read side of the blog.
type Repository interface {
	// Initialize loads the collection. It is a no-op once it has succeeded.
	Initialize(ctx context.Context) error

	Articles(ctx context.Context, f Filter) (*Page, error)
	ArticleByID(ctx context.Context, id int64) (*article.Article, error)
	ArticleBySlug(ctx context.Context, slug string) (*article.Article, error)
	Recommended(ctx context.Context, limit int) ([]article.Article, error)
	Related(ctx context.Context, a *article.Article, limit int) ([]Scored, error)
	Stats(ctx context.Context) (*Stats, error)

	Categories(ctx context.Context) ([]article.Term, error)
	Tags(ctx context.Context) ([]article.Term, error)
	CategoryTable(ctx context.Context) (TermTable, error)
	TagTable(ctx context.Context) (TermTable, error)
}

// Limits are the defaults used when a caller passes a non-positive limit.
type Limits struct {
	PageSize    int
	Related     int
	Recommended int
}

// DefaultLimits returns the stock listing limits.
func DefaultLimits() Limits {
	return Limits{PageSize: DefaultLimit, Related: 3, Recommended: 5}
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for skipped articles and duplicate keys.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithClock sets the clock used for the date default of articles without one.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLimits overrides the default limits. Zero fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(c *Cache) {
		if l.PageSize > 0 {
			c.limits.PageSize = l.PageSize
		}
		if l.Related > 0 {
			c.limits.Related = l.Related
		}
		if l.Recommended > 0 {
			c.limits.Recommended = l.Recommended
		}
	}
}

// WithFetchConcurrency caps concurrent document fetches. n <= 0 means no cap.
func WithFetchConcurrency(n int) Option {
	return func(c *Cache) { c.fetchLimit = n }
}

// Cache is an in-memory Repository filled once from a Source.
// The collection is never refreshed after a successful load.
type Cache struct {
	src        Source
	logger     *log.Logger
	now        func() time.Time
	limits     Limits
	fetchLimit int

	group  singleflight.Group
	loaded atomic.Bool

	mu         sync.RWMutex
	articles   []article.Article
	byID       map[int64]int
	bySlug     map[string]int
	categories TermTable
	tags       TermTable
}

var _ Repository = (*Cache)(nil)

// NewCache creates an unloaded cache over src.
func NewCache(src Source, opts ...Option) *Cache {
	c := &Cache{
		src:    src,
		logger: log.Default(),
		now:    time.Now,
		limits: DefaultLimits(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Loaded reports whether the collection has been loaded.
func (c *Cache) Loaded() bool {
	return c.loaded.Load()
}

// Initialize loads the collection once. Concurrent callers share a single
// load; a caller whose ctx ends stops waiting but the load carries on.
// If the index, categories or tags cannot be fetched the cache stays empty
// and the next call starts over.
func (c *Cache) Initialize(ctx context.Context) error {
	if c.loaded.Load() {
		return nil
	}

	ch := c.group.DoChan("initialize", func() (any, error) {
		if c.loaded.Load() {
			return nil, nil
		}
		return nil, c.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context) error {
	index, err := c.src.Index(ctx)
	if err != nil {
		return errors.NewSourceUnavailable("index", err)
	}

	var categories, tags []article.Term
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		terms, err := c.src.Categories(gctx)
		if err != nil {
			return errors.NewSourceUnavailable("categories", err)
		}
		categories = terms
		return nil
	})
	g.Go(func() error {
		terms, err := c.src.Tags(gctx)
		if err != nil {
			return errors.NewSourceUnavailable("tags", err)
		}
		tags = terms
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// Each document fetch succeeds or fails on its own.
	fetched := make([]*article.Article, len(index))
	var docs errgroup.Group
	if c.fetchLimit > 0 {
		docs.SetLimit(c.fetchLimit)
	}
	for i, entry := range index {
		docs.Go(func() error {
			a, err := c.fetchArticle(ctx, entry)
			if err != nil {
				c.logger.Printf("[warn] skipping article %d (%s): %v", entry.ID, entry.Filename, err)
				return nil
			}
			fetched[i] = a
			return nil
		})
	}
	_ = docs.Wait()

	articles := make([]article.Article, 0, len(fetched))
	byID := make(map[int64]int, len(fetched))
	bySlug := make(map[string]int, len(fetched))
	for _, a := range fetched {
		if a == nil {
			continue
		}
		i := len(articles)
		articles = append(articles, *a)
		if _, dup := byID[a.ID]; dup {
			c.logger.Printf("[warn] duplicate article id %d; lookups use the first", a.ID)
		} else {
			byID[a.ID] = i
		}
		if _, dup := bySlug[a.Slug]; dup {
			c.logger.Printf("[warn] duplicate article slug %q; lookups use the first", a.Slug)
		} else {
			bySlug[a.Slug] = i
		}
	}

	c.mu.Lock()
	c.articles = articles
	c.byID = byID
	c.bySlug = bySlug
	c.categories = NewTermTable(categories)
	c.tags = NewTermTable(tags)
	c.mu.Unlock()

	c.loaded.Store(true)
	return nil
}

// fetchArticle loads one document.
func (c *Cache) fetchArticle(ctx context.Context, entry article.IndexEntry) (*article.Article, error) {
	raw, err := c.src.Document(ctx, entry.Filename)
	if err != nil {
		return nil, err
	}
	a := FromDocument(entry, raw, c.now())
	return &a, nil
}

// FromDocument builds the article an index entry describes from its raw
// front-matter document. The entry's slug and status take precedence over
// the front matter; missing fields get their defaults, with now supplying
// the date.
func FromDocument(entry article.IndexEntry, raw string, now time.Time) article.Article {
	parsed := article.Parse(raw)
	meta := article.ValidateAt(parsed.Metadata, now)
	if entry.Slug != "" {
		meta.Slug = entry.Slug
	}
	if s := article.Status(entry.Status); s.Valid() {
		meta.Status = s
	}

	return article.Article{
		ID:       entry.ID,
		Metadata: meta,
		Content:  parsed.Content,
	}
}

// snapshot returns the loaded state after ensuring it is loaded.
func (c *Cache) snapshot(ctx context.Context) ([]article.Article, TermTable, TermTable, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, TermTable{}, TermTable{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.articles, c.categories, c.tags, nil
}

// Articles returns a filtered page of published articles.
func (c *Cache) Articles(ctx context.Context, f Filter) (*Page, error) {
	articles, categories, tags, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = c.limits.PageSize
	}
	return Query(articles, categories, tags, f), nil
}

// ArticleByID returns the article with the given id, draft or not.
func (c *Cache) ArticleByID(ctx context.Context, id int64) (*article.Article, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[id]
	if !ok {
		return nil, errors.NewNotFound("article", strconv.FormatInt(id, 10))
	}
	a := c.articles[i]
	return &a, nil
}

// ArticleBySlug returns the article with the given slug, draft or not.
func (c *Cache) ArticleBySlug(ctx context.Context, slug string) (*article.Article, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.bySlug[slug]
	if !ok {
		return nil, errors.NewNotFound("article", slug)
	}
	a := c.articles[i]
	return &a, nil
}

// Recommended returns the newest published articles.
func (c *Cache) Recommended(ctx context.Context, limit int) ([]article.Article, error) {
	articles, _, _, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = c.limits.Recommended
	}
	return Recommended(articles, limit), nil
}

// Related ranks the articles most related to a.
func (c *Cache) Related(ctx context.Context, a *article.Article, limit int) ([]Scored, error) {
	if a == nil {
		return nil, errors.NewInvalidRequest("article is required")
	}
	articles, _, _, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = c.limits.Related
	}
	return Related(*a, articles, limit), nil
}

// Stats returns aggregate counts.
func (c *Cache) Stats(ctx context.Context) (*Stats, error) {
	articles, categories, tags, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStats(articles, categories, tags), nil
}

// Categories returns the loaded category table.
func (c *Cache) Categories(ctx context.Context) ([]article.Term, error) {
	table, err := c.CategoryTable(ctx)
	if err != nil {
		return nil, err
	}
	return table.Terms(), nil
}

// Tags returns the loaded tag table.
func (c *Cache) Tags(ctx context.Context) ([]article.Term, error) {
	table, err := c.TagTable(ctx)
	if err != nil {
		return nil, err
	}
	return table.Terms(), nil
}

// CategoryTable returns the category lookup table.
func (c *Cache) CategoryTable(ctx context.Context) (TermTable, error) {
	_, categories, _, err := c.snapshot(ctx)
	return categories, err
}

// TagTable returns the tag lookup table.
func (c *Cache) TagTable(ctx context.Context) (TermTable, error) {
	_, _, tags, err := c.snapshot(ctx)
	return tags, err
}
