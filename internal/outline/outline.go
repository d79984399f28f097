// Package outline reads the heading structure and length of a markdown body.
package outline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
)

// Heading is one ATX heading of a markdown body.
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// headerPattern matches ATX headings (h1-h6) at the start of a line.
// Groups: full match, hash symbols, heading text. Trailing spaces, tabs and
// closing hashes are left out of the text group.
var headerPattern = regexp.MustCompile(`(?m)^[ ]{0,3}(#{1,6})[ \t]+([^\n]+?)(?:[ \t]+#+)?[ \t]*$`)

// fencePattern matches fenced code block delimiters (``` or ~~~) at the start of a line,
// allowing 0-3 spaces of indentation. Captures the fence characters separately.
var fencePattern = regexp.MustCompile("(?m)^[ ]{0,3}(`{3,}|~{3,})")

// inlineMarkup is stripped from heading text before it is shown or slugged.
var inlineMarkup = strings.NewReplacer("`", "", "*", "", "_", "", "~", "")

// fencedRanges returns byte offset ranges [start, end) for fenced code blocks in text.
// A closing fence must use the same character as the opening one and be at
// least as long. An unclosed fence runs to the end of text.
func fencedRanges(text string) [][2]int {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var ranges [][2]int
	var openChar byte
	var openLen int
	var openStart int
	inFence := false

	for _, match := range matches {
		// match indices: [fullStart, fullEnd, fenceCharsStart, fenceCharsEnd]
		fenceChars := text[match[2]:match[3]]
		char := fenceChars[0]
		fenceLen := len(fenceChars)

		if !inFence {
			openChar = char
			openLen = fenceLen
			openStart = match[0]
			inFence = true
		} else if char == openChar && fenceLen >= openLen {
			ranges = append(ranges, [2]int{openStart, match[1]})
			inFence = false
		}
	}
	if inFence {
		ranges = append(ranges, [2]int{openStart, len(text)})
	}
	return ranges
}

// insideFence returns true if byte offset pos falls inside any fenced range.
func insideFence(pos int, ranges [][2]int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}

// Headings lists the ATX headings of a markdown body in document order,
// skipping those inside fenced code blocks. Anchors are unique within the
// body and match the ids Anchors hands out for the same sequence of texts.
func Headings(markdown string) []Heading {
	matches := headerPattern.FindAllStringSubmatchIndex(markdown, -1)
	if len(matches) == 0 {
		return nil
	}

	fences := fencedRanges(markdown)
	anchors := NewAnchors()

	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		// match indices: [fullStart, fullEnd, hashStart, hashEnd, textStart, textEnd]
		if insideFence(m[0], fences) {
			continue
		}
		text := CleanText(markdown[m[4]:m[5]])
		if text == "" {
			continue
		}
		headings = append(headings, Heading{
			Level:  m[3] - m[2],
			Text:   text,
			Anchor: anchors.Next(text),
		})
	}
	return headings
}

// Within keeps the headings whose level is between lo and hi inclusive.
func Within(headings []Heading, lo, hi int) []Heading {
	out := make([]Heading, 0, len(headings))
	for _, h := range headings {
		if h.Level >= lo && h.Level <= hi {
			out = append(out, h)
		}
	}
	return out
}

// CleanText drops emphasis and code markers from heading text and trims it.
func CleanText(s string) string {
	return strings.TrimSpace(inlineMarkup.Replace(s))
}

// Anchors hands out heading ids, suffixing repeats with -1, -2 and so on.
// The zero value is not usable; call NewAnchors.
type Anchors struct {
	seen map[string]int
}

// NewAnchors returns an empty id set.
func NewAnchors() *Anchors {
	return &Anchors{seen: make(map[string]int)}
}

// Next returns the id for a heading with the given text.
func (a *Anchors) Next(text string) string {
	base := anchorBase(CleanText(text))
	n, ok := a.seen[base]
	a.seen[base] = n + 1
	if !ok {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Put records an id chosen elsewhere so later headings do not repeat it.
func (a *Anchors) Put(id string) {
	if _, ok := a.seen[id]; !ok {
		a.seen[id] = 1
	}
}

func anchorBase(text string) string {
	if s, err := slug.Normalize(text); err == nil && s != "" {
		return s
	}
	return "section"
}
