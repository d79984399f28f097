package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/ops"
	"github.com/hpungsan/folio/internal/outline"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "articles", "admin"
}

// Chip is a category or tag link.
type Chip struct {
	Name string
	URL  string
}

// ListPageData is the template data for article listings (home, search,
// category and tag pages).
type ListPageData struct {
	PageData
	Heading     string
	Query       string
	Page        *blog.Page
	PrevURL     string
	NextURL     string
	Recommended []article.Article
	Categories  []Chip
}

// ArticlePageData is the template data for a single article.
type ArticlePageData struct {
	PageData
	Article    *article.Article
	Body       template.HTML
	TOC        []outline.Heading // h2 and h3 only
	Minutes    int
	Categories []Chip
	Tags       []Chip
	Related    []blog.Scored
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
	RetryURL   string // set when reloading may help
}

// AdminOverviewData is the template data for the admin dashboard.
type AdminOverviewData struct {
	PageData
	Overview *ops.OverviewOutput
}

// AdminListData is the template data for the admin article table.
type AdminListData struct {
	PageData
	Items      []ops.ArticleSummary
	Pagination ops.Pagination
	Status     string
	PrevURL    string
	NextURL    string
}

// AdminFormData is the template data for the create and edit forms.
type AdminFormData struct {
	PageData
	ID      int64 // 0 for a new article
	Action  string
	Form    ArticleForm
	Error   string
	Details map[string]any
	Saved   bool
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	markdown  goldmark.Markdown
	logger    *log.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, logger *log.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":          func(a, b int) int { return a + b },
		"formatTime":   formatTime,
		"formatNumber": formatNumber,
		"formatDate":   formatDate,
		"join":         strings.Join,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"list":           "list.html",
		"article":        "article.html",
		"error":          "error.html",
		"admin_overview": "admin_overview.html",
		"admin_list":     "admin_list.html",
		"admin_form":     "admin_form.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	if logger == nil {
		logger = log.Default()
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	return &Renderer{
		templates: templates,
		version:   version,
		markdown:  md,
		logger:    logger,
	}
}

func (r *Renderer) pageData(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.logger.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	fErr, ok := errors.As(err)
	if !ok {
		fErr = errors.NewInternal(err)
	}
	if fErr.Status >= http.StatusInternalServerError {
		r.logger.Printf("[error] %s %s: %v", req.Method, req.URL.Path, err)
	}

	status := fErr.Status
	message := fErr.Message

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if wantsJSON(req) {
		renderJSONError(w, fErr)
		return
	}

	data := ErrorPageData{
		PageData:   r.pageData(fmt.Sprintf("Error %d", status), ""),
		StatusCode: status,
		Message:    message,
	}
	// The source may come back; the next request retries the load.
	if fErr.Code == errors.ErrSourceUnavailable {
		data.RetryURL = req.URL.RequestURI()
	}
	r.renderPageStatus(w, req, status, "error", data)
}

// wantsJSON reports whether req is an API call or asks for JSON.
func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSONError writes the {"error": {...}} envelope.
func renderJSONError(w http.ResponseWriter, fErr *errors.FolioError) {
	body := map[string]any{
		"code":    string(fErr.Code),
		"message": fErr.Message,
		"status":  fErr.Status,
	}
	if len(fErr.Details) > 0 {
		body["details"] = fErr.Details
	}
	renderJSON(w, fErr.Status, map[string]any{"error": body})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// headingIDs gives goldmark the same heading ids outline.Headings produces,
// so table of contents links land on their headings.
type headingIDs struct {
	anchors *outline.Anchors
}

func (h headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(h.anchors.Next(string(value)))
}

func (h headingIDs) Put(value []byte) {
	h.anchors.Put(string(value))
}

// renderMarkdown converts an article body to HTML. Raw HTML in the body is
// dropped by goldmark's default renderer.
func (r *Renderer) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(headingIDs{anchors: outline.NewAnchors()}))
	if err := r.markdown.Convert([]byte(md), &buf, parser.WithContext(ctx)); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// formatDate turns an article date into "January 2, 2006". Values that do
// not parse are shown as stored.
func formatDate(date string) string {
	t, err := time.Parse(article.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// formatNumber formats an integer with comma thousands separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
