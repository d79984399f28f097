package mcp

import "github.com/mark3labs/mcp-go/mcp"

var stringItems = map[string]any{"type": "string"}

var articleListToolDef = mcp.NewTool("article_list",
	mcp.WithDescription("List published articles, newest first. Filters combine: search matches title, excerpt or content; category and tag take term slugs."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
	mcp.WithNumber("limit", mcp.Description("Articles per page (default: page_size from config)")),
	mcp.WithString("search", mcp.Description("Case-insensitive substring to match")),
	mcp.WithString("category", mcp.Description("Category slug, e.g. \"web-dev\"")),
	mcp.WithString("tag", mcp.Description("Tag slug")),
)

var articleFetchToolDef = mcp.NewTool("article_fetch",
	mcp.WithDescription("Fetch one article with its markdown content. Address by id or slug, not both. Drafts are returned."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("id", mcp.Description("Article id")),
	mcp.WithString("slug", mcp.Description("Article slug")),
)

var articleRelatedToolDef = mcp.NewTool("article_related",
	mcp.WithDescription("Rank published articles by shared categories (2 points each) and tags (1 point each) with the given article."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("id", mcp.Description("Article id")),
	mcp.WithString("slug", mcp.Description("Article slug")),
	mcp.WithNumber("limit", mcp.Description("Maximum results (default: related_limit from config)")),
)

var articleRecommendedToolDef = mcp.NewTool("article_recommended",
	mcp.WithDescription("The latest published articles."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("limit", mcp.Description("Maximum results (default: recommended_limit from config)")),
)

var articleCreateToolDef = mcp.NewTool("article_create",
	mcp.WithDescription("Store a new article in the admin database. The slug is derived from the title when omitted and must be unique."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Article title")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
	mcp.WithString("slug", mcp.Description("URL slug")),
	mcp.WithString("excerpt", mcp.Description("Short summary")),
	mcp.WithString("status", mcp.Enum("draft", "published"), mcp.Description("Default: draft")),
	mcp.WithArray("categories", mcp.Items(stringItems), mcp.Description("Category names")),
	mcp.WithArray("tags", mcp.Items(stringItems), mcp.Description("Tag names")),
	mcp.WithString("date", mcp.Description("YYYY-MM-DD (default: today)")),
	mcp.WithString("author", mcp.Description("Default: Anonymous")),
	mcp.WithNumber("views", mcp.Description("Initial view count")),
)

var articleUpdateToolDef = mcp.NewTool("article_update",
	mcp.WithDescription("Change fields of a stored article. Address by id or slug; omitted fields are left as they are."),
	mcp.WithNumber("id", mcp.Description("Article id")),
	mcp.WithString("slug", mcp.Description("Article slug (addressing)")),
	mcp.WithString("new_slug", mcp.Description("Rename the slug")),
	mcp.WithString("title"),
	mcp.WithString("excerpt"),
	mcp.WithString("content", mcp.Description("Markdown body")),
	mcp.WithString("status", mcp.Enum("draft", "published")),
	mcp.WithArray("categories", mcp.Items(stringItems), mcp.Description("Replaces the category list")),
	mcp.WithArray("tags", mcp.Items(stringItems), mcp.Description("Replaces the tag list")),
	mcp.WithString("date", mcp.Description("YYYY-MM-DD")),
	mcp.WithString("author"),
	mcp.WithNumber("views"),
)

var articleDeleteToolDef = mcp.NewTool("article_delete",
	mcp.WithDescription("Permanently delete a stored article. Address by id or slug."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithNumber("id", mcp.Description("Article id")),
	mcp.WithString("slug", mcp.Description("Article slug")),
)

var categoryListToolDef = mcp.NewTool("category_list",
	mcp.WithDescription("List categories with their slugs and published article counts."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var tagListToolDef = mcp.NewTool("tag_list",
	mcp.WithDescription("List tags with their slugs and published article counts."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var blogStatsToolDef = mcp.NewTool("blog_stats",
	mcp.WithDescription("Totals over the published collection: articles, categories, tags and views."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var blogExportToolDef = mcp.NewTool("blog_export",
	mcp.WithDescription("Write the stored articles as a static content tree. The target must be directly inside ~/.folio/exports or an allowed path."),
	mcp.WithString("path", mcp.Description("Target directory (default: ~/.folio/exports/<name>-<timestamp>)")),
	mcp.WithString("name", mcp.Description("Name used for the default directory")),
	mcp.WithBoolean("published_only", mcp.Description("Leave drafts out of the tree")),
)

var blogImportToolDef = mcp.NewTool("blog_import",
	mcp.WithDescription("Copy a content tree into the admin database. Give exactly one of dir or url."),
	mcp.WithString("dir", mcp.Description("Directory holding data/ and articles/")),
	mcp.WithString("url", mcp.Description("Base URL serving the same layout")),
	mcp.WithString("mode", mcp.Enum("error", "replace", "skip"), mcp.Description("Slug collision handling (default: error)")),
)
