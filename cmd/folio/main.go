package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/db"
	"github.com/hpungsan/folio/internal/mcp"
	"github.com/hpungsan/folio/internal/source"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "list": true, "show": true, "related": true,
	"stats": true, "terms": true, "inventory": true, "overview": true,
	"create": true, "update": true, "delete": true,
	"export": true, "import": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___     _ _
  | __|__ | (_)___
  | _/ _ \| | / _ \
  |_|\___/|_|_\___/

  Markdown blog engine

  Usage: folio <command> [options]
         folio serve
         folio --help

  MCP server mode requires piped input.`)
}

// newRepository builds the public article cache over the configured source.
// The admin database backs the "db" source.
func newRepository(cfg *config.Config, database *sql.DB, logger *log.Logger) (blog.Repository, error) {
	var src blog.Source
	switch cfg.Source {
	case config.SourceDir:
		src = source.OpenDir(cfg.ContentDir)
	case config.SourceHTTP:
		h, err := source.NewHTTP(cfg.ContentURL, nil)
		if err != nil {
			return nil, err
		}
		src = h
	default:
		src = source.NewDB(database)
	}

	return blog.NewCache(src,
		blog.WithLogger(logger),
		blog.WithLimits(blog.Limits{
			PageSize:    cfg.PageSize,
			Related:     cfg.RelatedLimit,
			Recommended: cfg.RecommendedLimit,
		}),
	), nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fatalf("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatalf("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".folio")

	wd, err := os.Getwd()
	if err != nil {
		fatalf("could not determine working directory: %v", err)
	}
	cfg, err := config.LoadWithRepo(baseDir, wd)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatalf("invalid config: %v", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Printf("[warn] unknown disabled_tools: %v", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Printf("[warn] unknown disabled_types: %v", unknown)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fatalf("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	repo, err := newRepository(cfg, database, logger)
	if err != nil {
		fatalf("invalid content source: %v", err)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(repo, database, cfg)
		if err := app.Run(os.Args); err != nil {
			database.Close()
			fatalf("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'folio --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(repo, database, cfg, Version); err != nil {
		database.Close()
		fatalf("%v", err)
	}
}
