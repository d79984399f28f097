package web

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/outline"
)

// Handlers contains HTTP route handlers for the public site, the JSON API
// and the admin UI.
type Handlers struct {
	repo     blog.Repository
	db       *sql.DB
	cfg      *config.Config
	logger   *log.Logger
	renderer *Renderer
}

// HandleHome handles GET /, the first page of published articles.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.renderListing(w, r, "Folio", "Latest articles", "/", blog.Filter{})
}

// HandleArticles handles GET /articles, the paged listing with search.
func (h *Handlers) HandleArticles(w http.ResponseWriter, r *http.Request) {
	heading := "All articles"
	if q := r.URL.Query().Get("q"); q != "" {
		heading = "Results for \"" + q + "\""
	}
	h.renderListing(w, r, "Articles", heading, "/articles", blog.Filter{})
}

// HandleCategory handles GET /category/{slug}.
func (h *Handlers) HandleCategory(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	table, err := h.repo.CategoryTable(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	name, ok := table.NameBySlug(slug)
	if !ok {
		h.renderer.renderError(w, r, errors.NewNotFound("category", slug))
		return
	}
	h.renderListing(w, r, name, "Category: "+name, "/category/"+url.PathEscape(slug), blog.Filter{CategorySlug: slug})
}

// HandleTag handles GET /tag/{slug}.
func (h *Handlers) HandleTag(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	table, err := h.repo.TagTable(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	name, ok := table.NameBySlug(slug)
	if !ok {
		h.renderer.renderError(w, r, errors.NewNotFound("tag", slug))
		return
	}
	h.renderListing(w, r, name, "Tag: "+name, "/tag/"+url.PathEscape(slug), blog.Filter{TagSlug: slug})
}

// renderListing runs f (plus page and q from the request) and renders the
// list page with the recommended sidebar.
func (h *Handlers) renderListing(w http.ResponseWriter, r *http.Request, title, heading, path string, f blog.Filter) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	f.Page = parseIntParam(r, "page", 1)
	f.Limit = h.cfg.PageSize
	f.Search = query

	page, err := h.repo.Articles(ctx, f)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	recommended, err := h.repo.Recommended(ctx, h.cfg.RecommendedLimit)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	categories, err := h.repo.CategoryTable(ctx)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := ListPageData{
		PageData:    h.renderer.pageData(title, "articles"),
		Heading:     heading,
		Query:       query,
		Page:        page,
		Recommended: recommended,
	}
	for _, c := range categories.Terms() {
		data.Categories = append(data.Categories, Chip{Name: c.Name, URL: "/category/" + url.PathEscape(c.Slug)})
	}
	if page.HasPrev() {
		data.PrevURL = pageURL(path, query, page.Page-1)
	}
	if page.HasNext() {
		data.NextURL = pageURL(path, query, page.Page+1)
	}

	h.renderer.renderPage(w, r, "list", data)
}

// HandleArticle handles GET /article/{slug}. Drafts are not shown publicly.
func (h *Handlers) HandleArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := r.PathValue("slug")

	a, err := h.repo.ArticleBySlug(ctx, slug)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if !a.Published() {
		h.renderer.renderError(w, r, errors.NewNotFound("article", slug))
		return
	}

	related, err := h.repo.Related(ctx, a, h.cfg.RelatedLimit)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	categories, err := h.repo.CategoryTable(ctx)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	tags, err := h.repo.TagTable(ctx)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "article", ArticlePageData{
		PageData:   h.renderer.pageData(a.Title, "articles"),
		Article:    a,
		Body:       h.renderer.renderMarkdown(a.Content),
		TOC:        outline.Within(outline.Headings(a.Content), 2, 3),
		Minutes:    outline.ReadingMinutes(a.Content),
		Categories: chips(a.Categories, categories, "/category/"),
		Tags:       chips(a.Tags, tags, "/tag/"),
		Related:    related,
	})
}

// chips links each name to its term page. Names missing from the table are
// shown without a link.
func chips(names []string, table blog.TermTable, prefix string) []Chip {
	out := make([]Chip, 0, len(names))
	for _, name := range names {
		c := Chip{Name: name}
		if slug, ok := table.SlugByName(name); ok {
			c.URL = prefix + url.PathEscape(slug)
		}
		out = append(out, c)
	}
	return out
}

// HandleAPIArticles handles GET /api/articles.
func (h *Handlers) HandleAPIArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.repo.Articles(r.Context(), blog.Filter{
		Page:         parseIntParam(r, "page", 1),
		Limit:        parseIntParam(r, "limit", h.cfg.PageSize),
		Search:       q.Get("q"),
		CategorySlug: q.Get("category"),
		TagSlug:      q.Get("tag"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, page)
}

// HandleAPIArticle handles GET /api/articles/{id}.
func (h *Handlers) HandleAPIArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	a, err := h.repo.ArticleByID(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, a)
}

// HandleAPIArticleSub handles GET /api/articles/slug/{slug} and
// GET /api/articles/{id}/related.
func (h *Handlers) HandleAPIArticleSub(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "slug":
		a, err := h.repo.ArticleBySlug(r.Context(), second)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, a)
	case second == "related":
		h.apiRelated(w, r, first)
	default:
		h.renderer.renderError(w, r, errors.NewNotFound("route", r.URL.Path))
	}
}

func (h *Handlers) apiRelated(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := parseID(rawID)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	a, err := h.repo.ArticleByID(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	related, err := h.repo.Related(r.Context(), a, parseIntParam(r, "limit", h.cfg.RelatedLimit))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, related)
}

// HandleAPIRecommended handles GET /api/recommended.
func (h *Handlers) HandleAPIRecommended(w http.ResponseWriter, r *http.Request) {
	articles, err := h.repo.Recommended(r.Context(), parseIntParam(r, "limit", h.cfg.RecommendedLimit))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, articles)
}

// HandleAPICategories handles GET /api/categories.
func (h *Handlers) HandleAPICategories(w http.ResponseWriter, r *http.Request) {
	h.apiTerms(w, r, h.repo.Categories)
}

// HandleAPITags handles GET /api/tags.
func (h *Handlers) HandleAPITags(w http.ResponseWriter, r *http.Request) {
	h.apiTerms(w, r, h.repo.Tags)
}

func (h *Handlers) apiTerms(w http.ResponseWriter, r *http.Request, list func(ctx context.Context) ([]article.Term, error)) {
	terms, err := list(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, terms)
}

// HandleAPIStats handles GET /api/stats.
func (h *Handlers) HandleAPIStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, stats)
}

// pageURL builds a listing link for page n, keeping the search query.
func pageURL(path, query string, n int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// parseID parses a positive article id from a path segment.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest("id must be a positive integer")
	}
	return id, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
