package article

import (
	"regexp"
	"strconv"
	"strings"
)

// frontMatterRegex matches a document opening with a "---" line, a header
// block, and a closing "---" line.
var frontMatterRegex = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n(.*)$`)

// leadingIntRegex matches the integer prefix of a views value ("12.5" -> "12").
var leadingIntRegex = regexp.MustCompile(`^[+-]?[0-9]+`)

// Partial is front matter as found in a document. Nil fields were absent.
type Partial struct {
	Title      *string
	Excerpt    *string
	Slug       *string
	Status     *string
	Categories []string // nil when absent
	Tags       []string // nil when absent
	Date       *string
	Views      *int
	Author     *string
}

// Empty reports whether no recognized field was present.
func (p Partial) Empty() bool {
	return p.Title == nil && p.Excerpt == nil && p.Slug == nil && p.Status == nil &&
		p.Categories == nil && p.Tags == nil && p.Date == nil && p.Views == nil && p.Author == nil
}

// Parsed is the result of Parse.
type Parsed struct {
	Metadata Partial
	Content  string
}

// Parse splits raw into front matter and body.
//
// A document without a front-matter block is returned unchanged as Content
// with empty Metadata. Header lines without a colon, comment lines and
// unknown keys are skipped. Parse never fails.
func Parse(raw string) Parsed {
	match := frontMatterRegex.FindStringSubmatch(raw)
	if match == nil {
		return Parsed{Content: raw}
	}

	return Parsed{
		Metadata: parseHeader(match[1]),
		Content:  strings.TrimSpace(match[2]),
	}
}

func parseHeader(header string) Partial {
	var p Partial

	for _, line := range strings.Split(header, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			p.Title = stringPtr(parseString(value))
		case "excerpt":
			p.Excerpt = stringPtr(parseString(value))
		case "slug":
			p.Slug = stringPtr(parseString(value))
		case "status":
			p.Status = stringPtr(parseString(value))
		case "date":
			p.Date = stringPtr(parseString(value))
		case "author":
			p.Author = stringPtr(parseString(value))
		case "views":
			v := parseInt(parseString(value))
			p.Views = &v
		case "categories":
			p.Categories = parseList(value)
		case "tags":
			p.Tags = parseList(value)
		}
	}

	return p
}

// parseString strips one matching pair of surrounding quotes.
func parseString(value string) string {
	if inner, ok := unquote(value); ok {
		return inner
	}
	return value
}

// parseList reads a list value. Bracketed values are split on commas;
// a quoted scalar is a single item; any other scalar is split on commas.
// Items are trimmed and unquoted, and empty items dropped. Order and
// duplicates are kept.
func parseList(value string) []string {
	switch {
	case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") && len(value) >= 2:
		value = value[1 : len(value)-1]
	default:
		if inner, ok := unquote(value); ok {
			if inner == "" {
				return []string{}
			}
			return []string{inner}
		}
	}

	items := make([]string, 0)
	for _, piece := range strings.Split(value, ",") {
		piece = parseString(strings.TrimSpace(piece))
		if piece != "" {
			items = append(items, piece)
		}
	}
	return items
}

// parseInt parses the base-10 integer prefix of value; anything else is 0.
func parseInt(value string) int {
	digits := leadingIntRegex.FindString(strings.TrimSpace(value))
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func unquote(value string) (string, bool) {
	if len(value) < 2 {
		return "", false
	}
	first, last := value[0], value[len(value)-1]
	if (first == '"' || first == '\'') && first == last {
		return value[1 : len(value)-1], true
	}
	return "", false
}

func stringPtr(s string) *string { return &s }

// Marshal renders meta and content as a front-matter document that Parse
// reads back to the same values. Newlines inside scalar values are folded
// to spaces; list items must not contain commas.
func Marshal(meta Metadata, content string) string {
	var b strings.Builder

	b.WriteString("---\n")
	writeScalar(&b, "title", meta.Title)
	writeScalar(&b, "excerpt", meta.Excerpt)
	writeScalar(&b, "slug", meta.Slug)
	writeScalar(&b, "status", string(meta.Status))
	writeList(&b, "categories", meta.Categories)
	writeList(&b, "tags", meta.Tags)
	writeScalar(&b, "date", meta.Date)
	b.WriteString("views: " + strconv.Itoa(meta.Views) + "\n")
	writeScalar(&b, "author", meta.Author)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(content))
	b.WriteString("\n")

	return b.String()
}

func writeScalar(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(quote(value))
	b.WriteString("\n")
}

func writeList(b *strings.Builder, key string, items []string) {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			quoted = append(quoted, quote(item))
		}
	}
	b.WriteString(key)
	b.WriteString(": [")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString("]\n")
}

// quote wraps value in double quotes. Parse strips exactly one pair and does
// no escape processing, so inner quotes survive as-is.
func quote(value string) string {
	value = strings.ReplaceAll(value, "\r\n", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return `"` + value + `"`
}
