package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Content source kinds.
const (
	SourceDB   = "db"   // the admin database
	SourceDir  = "dir"  // a static content tree on disk
	SourceHTTP = "http" // a static content tree served over HTTP
)

// Config holds application configuration.
type Config struct {
	// Source selects where the public article cache loads from: "db", "dir" or "http".
	Source string `json:"source,omitempty"`

	// ContentDir is the root of the static content tree when Source is "dir".
	// Relative paths are resolved against the directory holding the config file.
	ContentDir string `json:"content_dir,omitempty"`

	// ContentURL is the base URL of the static content tree when Source is "http".
	ContentURL string `json:"content_url,omitempty"`

	// PageSize is the default number of articles per listing page.
	PageSize int `json:"page_size,omitempty"`

	// RelatedLimit is the default number of related articles shown on an article page.
	RelatedLimit int `json:"related_limit,omitempty"`

	// RecommendedLimit is the default number of recommended (latest) articles.
	RecommendedLimit int `json:"recommended_limit,omitempty"`

	// AdminToken guards the admin routes. Empty means the admin UI is open,
	// which is only reasonable on a loopback bind.
	AdminToken string `json:"admin_token,omitempty"`

	// AllowedPaths is an allowlist of directories export may write into.
	// Export targets outside ~/.folio/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "article", "category", "tag", "blog".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source:           SourceDB,
		PageSize:         10,
		RelatedLimit:     3,
		RecommendedLimit: 5,
	}
}

// Validate checks that the selected source has what it needs.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceDB:
	case SourceDir:
		if c.ContentDir == "" {
			return fmt.Errorf("content_dir is required when source is %q", SourceDir)
		}
	case SourceHTTP:
		if c.ContentURL == "" {
			return fmt.Errorf("content_url is required when source is %q", SourceHTTP)
		}
	default:
		return fmt.Errorf("unknown source %q (want db, dir or http)", c.Source)
	}
	return nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.folio.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.folio) and repo (.folio) directories.
// Repo config is found by walking upward from startDir to find the nearest .folio/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .folio/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".folio", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
// Comments and trailing commas are accepted.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(standardized, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	// A relative content_dir is relative to the project root holding .folio/ (or the config dir).
	if cfg.ContentDir != "" && !filepath.IsAbs(cfg.ContentDir) {
		root := filepath.Dir(configPath)
		if filepath.Base(root) == ".folio" {
			root = filepath.Dir(root)
		}
		cfg.ContentDir = filepath.Join(root, cfg.ContentDir)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Source = firstString(overlay.Source, base.Source)
	result.ContentDir = firstString(overlay.ContentDir, base.ContentDir)
	result.ContentURL = firstString(overlay.ContentURL, base.ContentURL)
	result.AdminToken = firstString(overlay.AdminToken, base.AdminToken)

	result.PageSize = firstInt(overlay.PageSize, base.PageSize)
	result.RelatedLimit = firstInt(overlay.RelatedLimit, base.RelatedLimit)
	result.RecommendedLimit = firstInt(overlay.RecommendedLimit, base.RecommendedLimit)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
