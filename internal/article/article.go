package article

// Status is the publication state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Metadata is the fully-populated front matter of an article.
type Metadata struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Slug       string   `json:"slug"`
	Status     Status   `json:"status"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Date       string   `json:"date"` // YYYY-MM-DD
	Views      int      `json:"views"`
	Author     string   `json:"author"`
}

// Article is a blog post: metadata plus its markdown body.
type Article struct {
	// ID is assigned by the content index and is stable within a collection.
	ID int64 `json:"id"`
	Metadata

	// Content is the raw markdown body (front matter removed).
	Content string `json:"content"`
}

// Published reports whether the article is eligible for public listings.
func (a *Article) Published() bool {
	return a.Status == StatusPublished
}

// IndexEntry describes one article in a content index.
type IndexEntry struct {
	ID       int64  `json:"id"`
	Slug     string `json:"slug"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// Term is a category or tag descriptor.
// Count is the number of published articles referencing Name; it is
// maintained by whoever writes the content, not derived when reading.
type Term struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Count int    `json:"count"`
}
