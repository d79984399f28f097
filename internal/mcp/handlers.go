package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	repo blog.Repository
	db   *sql.DB
	cfg  *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(repo blog.Repository, db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{repo: repo, db: db, cfg: cfg}
}

// Request types for each tool

// ArticleListRequest represents the arguments for article_list.
type ArticleListRequest struct {
	Page     int    `json:"page,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Search   string `json:"search,omitempty"`
	Category string `json:"category,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// AddressRequest represents the arguments of the tools that take one article.
type AddressRequest struct {
	ID   int64  `json:"id,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// RelatedRequest represents the arguments for article_related.
type RelatedRequest struct {
	ID    int64  `json:"id,omitempty"`
	Slug  string `json:"slug,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// LimitRequest represents the arguments for article_recommended.
type LimitRequest struct {
	Limit int `json:"limit,omitempty"`
}

// RelatedOutput is the article_related result.
type RelatedOutput struct {
	ID      int64         `json:"id"`
	Slug    string        `json:"slug"`
	Related []blog.Scored `json:"related"`
}

// TermsOutput is the category_list and tag_list result.
type TermsOutput struct {
	Terms []article.Term `json:"terms"`
}

// Handler implementations

// HandleArticleList handles the article_list tool call.
func (h *Handlers) HandleArticleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ArticleListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.cfg.PageSize
	}

	page, err := h.repo.Articles(ctx, blog.Filter{
		Page:         input.Page,
		Limit:        limit,
		Search:       input.Search,
		CategorySlug: input.Category,
		TagSlug:      input.Tag,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(page)
}

// HandleArticleFetch handles the article_fetch tool call.
func (h *Handlers) HandleArticleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	a, err := h.lookup(ctx, input.ID, input.Slug)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(a)
}

// HandleArticleRelated handles the article_related tool call.
func (h *Handlers) HandleArticleRelated(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RelatedRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	a, err := h.lookup(ctx, input.ID, input.Slug)
	if err != nil {
		return errorResult(err), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.cfg.RelatedLimit
	}
	related, err := h.repo.Related(ctx, a, limit)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(RelatedOutput{ID: a.ID, Slug: a.Slug, Related: related})
}

// HandleArticleRecommended handles the article_recommended tool call.
func (h *Handlers) HandleArticleRecommended(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LimitRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = h.cfg.RecommendedLimit
	}
	articles, err := h.repo.Recommended(ctx, limit)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"articles": articles})
}

// HandleArticleCreate handles the article_create tool call.
func (h *Handlers) HandleArticleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.CreateInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Create(ctx, h.db, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleArticleUpdate handles the article_update tool call.
func (h *Handlers) HandleArticleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.UpdateInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Update(ctx, h.db, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleArticleDelete handles the article_delete tool call.
func (h *Handlers) HandleArticleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID, Slug: input.Slug})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCategoryList handles the category_list tool call.
func (h *Handlers) HandleCategoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	terms, err := h.repo.Categories(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(TermsOutput{Terms: terms})
}

// HandleTagList handles the tag_list tool call.
func (h *Handlers) HandleTagList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	terms, err := h.repo.Tags(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(TermsOutput{Terms: terms})
}

// HandleBlogStats handles the blog_stats tool call.
func (h *Handlers) HandleBlogStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.repo.Stats(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(stats)
}

// HandleBlogExport handles the blog_export tool call.
func (h *Handlers) HandleBlogExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ExportInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBlogImport handles the blog_import tool call.
func (h *Handlers) HandleBlogImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ImportInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, input)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// lookup resolves exactly one of id or slug through the repository.
func (h *Handlers) lookup(ctx context.Context, id int64, slug string) (*article.Article, error) {
	addr, err := ops.ValidateAddress(id, slug)
	if err != nil {
		return nil, err
	}
	if addr.ByID {
		return h.repo.ArticleByID(ctx, addr.ID)
	}
	return h.repo.ArticleBySlug(ctx, addr.Slug)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error messages and details are not exposed; they may carry file
// paths or SQL.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if fErr, ok := errors.As(err); ok && fErr.Code != errors.ErrInternal {
		errorObj := map[string]any{
			"code":    fErr.Code,
			"message": fErr.Message,
			"status":  fErr.Status,
		}
		if fErr.Details != nil {
			errorObj["details"] = fErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
