package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hpungsan/folio/internal/article"
)

// DefaultMaxBytes caps a single response body.
const DefaultMaxBytes = 8 << 20

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// HTTP fetches a content tree relative to a base URL.
type HTTP struct {
	base      *url.URL
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTP returns a source rooted at baseURL. A nil client gets a default
// with a 30s timeout.
func NewHTTP(baseURL string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid content url %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTP{
		base:      u,
		client:    client,
		userAgent: "folio/1.0",
		maxBytes:  DefaultMaxBytes,
	}, nil
}

func (h *HTTP) Index(ctx context.Context) ([]article.IndexEntry, error) {
	data, err := h.get(ctx, IndexPath)
	if err != nil {
		return nil, err
	}
	return decodeIndex(data, IndexPath)
}

func (h *HTTP) Categories(ctx context.Context) ([]article.Term, error) {
	data, err := h.get(ctx, CategoriesPath)
	if err != nil {
		return nil, err
	}
	return decodeTerms(data, CategoriesPath)
}

func (h *HTTP) Tags(ctx context.Context) ([]article.Term, error) {
	data, err := h.get(ctx, TagsPath)
	if err != nil {
		return nil, err
	}
	return decodeTerms(data, TagsPath)
}

func (h *HTTP) Document(ctx context.Context, locator string) (string, error) {
	p, err := DocumentPath(locator)
	if err != nil {
		return "", err
	}
	data, err := h.get(ctx, p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (h *HTTP) get(ctx context.Context, p string) ([]byte, error) {
	u := h.base.JoinPath(p)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: u.String(), StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxBytes {
		return nil, fmt.Errorf("GET %s: response exceeds %d bytes", u, h.maxBytes)
	}
	return data, nil
}
