package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/config"
	"github.com/hpungsan/folio/internal/errors"
	"github.com/hpungsan/folio/internal/ops"
	"github.com/hpungsan/folio/internal/web"
)

// maxStdinBytes bounds documents piped to create and update.
const maxStdinBytes = 4 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(repo blog.Repository, db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "folio",
		Usage:   "Markdown blog engine",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(repo, db, cfg),
			listCmd(repo),
			showCmd(repo),
			relatedCmd(repo),
			statsCmd(repo),
			termsCmd(repo, db),
			inventoryCmd(db),
			overviewCmd(db),
			createCmd(db),
			updateCmd(db),
			deleteCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(repo blog.Repository, db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the blog, JSON API and admin UI over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(repo, db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv, repo)
		},
	}
}

// listCmd creates the list command.
func listCmd(repo blog.Repository) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List published articles, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1, Usage: "Page number"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Articles per page (default: page_size)"},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Match title, excerpt or content"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category slug"},
			&cli.StringFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Filter by tag slug"},
		},
		Action: func(c *cli.Context) error {
			page, err := repo.Articles(c.Context, blog.Filter{
				Page:         c.Int("page"),
				Limit:        c.Int("limit"),
				Search:       c.String("search"),
				CategorySlug: c.String("category"),
				TagSlug:      c.String("tag"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(page)
		},
	}
}

// showCmd creates the show command.
func showCmd(repo blog.Repository) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one article by id or slug",
		ArgsUsage: "<id|slug>",
		Action: func(c *cli.Context) error {
			a, err := lookup(c, repo)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(a)
		},
	}
}

// relatedCmd creates the related command.
func relatedCmd(repo blog.Repository) *cli.Command {
	return &cli.Command{
		Name:      "related",
		Usage:     "Rank articles sharing categories and tags with one article",
		ArgsUsage: "<id|slug>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum results (default: related_limit)"},
		},
		Action: func(c *cli.Context) error {
			a, err := lookup(c, repo)
			if err != nil {
				return outputError(err)
			}

			related, err := repo.Related(c.Context, a, c.Int("limit"))
			if err != nil {
				return outputError(err)
			}

			return outputJSON(related)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(repo blog.Repository) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Totals over the published collection",
		Action: func(c *cli.Context) error {
			stats, err := repo.Stats(c.Context)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(stats)
		},
	}
}

// termsCmd creates the terms command.
func termsCmd(repo blog.Repository, db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "terms",
		Usage: "List categories or tags with their counts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "category", Usage: "category|tag"},
			&cli.BoolFlag{Name: "stored", Usage: "Read the admin database instead of the content source"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("stored") {
				output, err := ops.Terms(db, ops.TermsInput{Kind: c.String("kind")})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(output)
			}

			var terms []article.Term
			var err error
			switch c.String("kind") {
			case "category", "categories":
				terms, err = repo.Categories(c.Context)
			case "tag", "tags":
				terms, err = repo.Tags(c.Context)
			default:
				err = errors.NewInvalidRequest("kind must be category or tag")
			}
			if err != nil {
				return outputError(err)
			}

			return outputJSON(terms)
		},
	}
}

// inventoryCmd creates the inventory command.
func inventoryCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "inventory",
		Usage: "List stored articles, drafts included",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status: draft|published"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(db, ops.ListInput{
				Status: c.String("status"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// overviewCmd creates the overview command.
func overviewCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "overview",
		Usage: "Counts over the admin database",
		Action: func(c *cli.Context) error {
			output, err := ops.Overview(db)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// articleFlags are shared by create and update.
func articleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Article title"},
		&cli.StringFlag{Name: "slug", Usage: "URL slug"},
		&cli.StringFlag{Name: "excerpt", Usage: "Short summary"},
		&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "draft|published"},
		&cli.StringFlag{Name: "categories", Usage: "Comma-separated category names"},
		&cli.StringFlag{Name: "tags", Usage: "Comma-separated tag names"},
		&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD"},
		&cli.StringFlag{Name: "author", Usage: "Author name"},
		&cli.IntFlag{Name: "views", Usage: "View count"},
	}
}

// createCmd creates the create command.
func createCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Store a new article (reads a markdown document from stdin; front matter is honored, flags win)",
		Flags: articleFlags(),
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("article content must be piped via stdin"))
			}
			raw, err := readStdin(maxStdinBytes)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			doc := article.Parse(raw)
			input := createInputFrom(doc)

			if c.IsSet("title") {
				input.Title = c.String("title")
			}
			if c.IsSet("slug") {
				input.Slug = c.String("slug")
			}
			if c.IsSet("excerpt") {
				input.Excerpt = c.String("excerpt")
			}
			if c.IsSet("status") {
				input.Status = c.String("status")
			}
			if c.IsSet("categories") {
				input.Categories = article.SplitList(c.String("categories"))
			}
			if c.IsSet("tags") {
				input.Tags = article.SplitList(c.String("tags"))
			}
			if c.IsSet("date") {
				input.Date = c.String("date")
			}
			if c.IsSet("author") {
				input.Author = c.String("author")
			}
			if c.IsSet("views") {
				input.Views = c.Int("views")
			}

			output, err := ops.Create(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// createInputFrom copies the fields present in a parsed document.
func createInputFrom(doc article.Parsed) ops.CreateInput {
	m := doc.Metadata
	input := ops.CreateInput{
		Content:    doc.Content,
		Categories: m.Categories,
		Tags:       m.Tags,
	}
	setIfPresent(&input.Title, m.Title)
	setIfPresent(&input.Slug, m.Slug)
	setIfPresent(&input.Excerpt, m.Excerpt)
	setIfPresent(&input.Status, m.Status)
	setIfPresent(&input.Date, m.Date)
	setIfPresent(&input.Author, m.Author)
	if m.Views != nil {
		input.Views = *m.Views
	}
	return input
}

func setIfPresent(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a stored article (optionally reads new content from stdin)",
		ArgsUsage: "<id|slug>",
		Flags:     articleFlags(),
		Action: func(c *cli.Context) error {
			id, slug, err := address(c)
			if err != nil {
				return outputError(err)
			}
			input := ops.UpdateInput{ID: id, Slug: slug}

			if stdinHasData() {
				text, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				if text != "" {
					input.Content = &text
				}
			}

			stringFlags := map[string]**string{
				"title":   &input.Title,
				"slug":    &input.NewSlug,
				"excerpt": &input.Excerpt,
				"status":  &input.Status,
				"date":    &input.Date,
				"author":  &input.Author,
			}
			for name, dst := range stringFlags {
				if c.IsSet(name) {
					v := c.String(name)
					*dst = &v
				}
			}
			if c.IsSet("categories") {
				categories := article.SplitList(c.String("categories"))
				input.Categories = &categories
			}
			if c.IsSet("tags") {
				tags := article.SplitList(c.String("tags"))
				input.Tags = &tags
			}
			if c.IsSet("views") {
				views := c.Int("views")
				input.Views = &views
			}

			output, err := ops.Update(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a stored article",
		ArgsUsage: "<id|slug>",
		Action: func(c *cli.Context) error {
			id, slug, err := address(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: id, Slug: slug})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write stored articles as a static content tree",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Target directory (default: ~/.folio/exports/<name>-<timestamp>)"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Name for the default directory"},
			&cli.BoolFlag{Name: "published-only", Usage: "Leave drafts out of the tree"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path:          c.String("path"),
				Name:          c.String("name"),
				PublishedOnly: c.Bool("published-only"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Copy a content tree into the admin database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Content tree directory"},
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Content tree base URL"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Dir:  c.String("dir"),
				URL:  c.String("url"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// address reads the single <id|slug> argument. Digits are an id.
func address(c *cli.Context) (int64, string, error) {
	if c.NArg() != 1 {
		return 0, "", errors.NewInvalidRequest("expected exactly one <id|slug> argument")
	}
	arg := strings.TrimSpace(c.Args().First())
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, "", nil
	}
	return 0, arg, nil
}

// lookup resolves the <id|slug> argument through the repository.
func lookup(c *cli.Context, repo blog.Repository) (*article.Article, error) {
	id, slug, err := address(c)
	if err != nil {
		return nil, err
	}
	addr, err := ops.ValidateAddress(id, slug)
	if err != nil {
		return nil, err
	}
	if addr.ByID {
		return repo.ArticleByID(c.Context, addr.ID)
	}
	return repo.ArticleBySlug(c.Context, addr.Slug)
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if fErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", fErr.Code, fErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all of stdin, failing when it holds more than limit bytes.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}
