package web

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// adminCookie carries the admin token after a ?token= login.
const adminCookie = "folio_admin"

// NewServer creates the HTTP server for the public blog, its JSON API and
// the admin UI. Public pages read through repo; admin pages write to db.
func NewServer(repo blog.Repository, db *sql.DB, cfg *config.Config, version, bind string, port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           NewHandler(repo, db, cfg, version, log.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler builds the routed, header-wrapped handler used by NewServer.
func NewHandler(repo blog.Repository, db *sql.DB, cfg *config.Config, version string, logger *log.Logger) http.Handler {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatalf("failed to create template sub-FS: %v", err)
	}

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to create static sub-FS: %v", err)
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}

	h := &Handlers{
		repo:     repo,
		db:       db,
		cfg:      cfg,
		logger:   logger,
		renderer: NewRenderer(templateSub, version, logger),
	}

	mux := http.NewServeMux()

	// Public pages
	mux.HandleFunc("GET /{$}", h.HandleHome)
	mux.HandleFunc("GET /articles", h.HandleArticles)
	mux.HandleFunc("GET /category/{slug}", h.HandleCategory)
	mux.HandleFunc("GET /tag/{slug}", h.HandleTag)
	mux.HandleFunc("GET /article/{slug}", h.HandleArticle)

	// Public JSON API
	mux.HandleFunc("GET /api/articles", h.HandleAPIArticles)
	mux.HandleFunc("GET /api/articles/{id}", h.HandleAPIArticle)
	// /api/articles/slug/{slug} and /api/articles/{id}/related share a shape
	mux.HandleFunc("GET /api/articles/{first}/{second}", h.HandleAPIArticleSub)
	mux.HandleFunc("GET /api/recommended", h.HandleAPIRecommended)
	mux.HandleFunc("GET /api/categories", h.HandleAPICategories)
	mux.HandleFunc("GET /api/tags", h.HandleAPITags)
	mux.HandleFunc("GET /api/stats", h.HandleAPIStats)

	// Admin
	admin := http.NewServeMux()
	admin.HandleFunc("GET /admin", h.HandleAdminOverview)
	admin.HandleFunc("GET /admin/articles", h.HandleAdminList)
	admin.HandleFunc("GET /admin/articles/new", h.HandleAdminNew)
	admin.HandleFunc("POST /admin/articles", h.HandleAdminCreate)
	admin.HandleFunc("GET /admin/articles/{id}/edit", h.HandleAdminEdit)
	admin.HandleFunc("POST /admin/articles/{id}", h.HandleAdminUpdate)
	admin.HandleFunc("DELETE /admin/articles/{id}", h.HandleAdminDelete)
	admin.HandleFunc("POST /admin/articles/{id}/delete", h.HandleAdminDelete)
	guarded := h.requireAdmin(admin)
	mux.Handle("/admin", guarded)
	mux.Handle("/admin/", guarded)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(mux)
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' https: data:")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// requireAdmin guards next with the configured admin token. The token may be
// sent as a bearer token, a ?token= parameter (which also sets a session
// cookie for the browser UI) or that cookie. No configured token means open.
func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := h.cfg.AdminToken
		if want == "" {
			next.ServeHTTP(w, r)
			return
		}

		if q := r.URL.Query().Get("token"); q != "" && tokenMatches(q, want) {
			http.SetCookie(w, &http.Cookie{
				Name:     adminCookie,
				Value:    q,
				Path:     "/admin",
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
			next.ServeHTTP(w, r)
			return
		}

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") &&
			tokenMatches(strings.TrimPrefix(auth, "Bearer "), want) {
			next.ServeHTTP(w, r)
			return
		}

		if c, err := r.Cookie(adminCookie); err == nil && tokenMatches(c.Value, want) {
			next.ServeHTTP(w, r)
			return
		}

		h.renderer.renderError(w, r, errors.NewUnauthorized())
	})
}

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
// A warm-up Initialize is started in the background so the first visitor
// does not pay for the content load.
func Run(srv *http.Server, repo blog.Repository) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	if repo != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := repo.Initialize(ctx); err != nil {
				log.Printf("[warn] content not loaded yet: %v", err)
			}
		}()
	}

	log.Printf("Folio running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
