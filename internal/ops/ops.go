package ops

import (
	stderrors "errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"

	"github.com/hpungsan/folio/internal/article"
	"github.com/hpungsan/folio/internal/errors"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Address identifies one stored article.
type Address struct {
	ByID bool
	ID   int64
	Slug string
}

// ValidateAddress validates addressing parameters.
// Rules:
// - exactly one of id (non-zero) or slug
// - both → ErrAmbiguousAddressing
// - neither → ErrInvalidRequest
func ValidateAddress(id int64, slug string) (*Address, error) {
	slug = strings.TrimSpace(slug)

	hasID := id != 0
	hasSlug := slug != ""

	if hasID && hasSlug {
		return nil, errors.NewAmbiguousAddressing()
	}
	if !hasID && !hasSlug {
		return nil, errors.NewInvalidRequest("must specify either id or slug")
	}
	if id < 0 {
		return nil, errors.NewInvalidRequest("id must be positive")
	}

	if hasID {
		return &Address{ByID: true, ID: id}, nil
	}
	return &Address{Slug: slug}, nil
}

// invalidInput converts an ozzo-validation failure into INVALID_REQUEST,
// keeping the per-field messages in Details.
func invalidInput(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if stderrors.As(err, &internal) {
		return errors.NewInternal(internal.InternalError())
	}

	fErr := errors.NewInvalidRequest(err.Error())
	var fields validation.Errors
	if stderrors.As(err, &fields) {
		details := make(map[string]any, len(fields))
		for name, fieldErr := range fields {
			details[name] = fieldErr.Error()
		}
		fErr.Details = details
	}
	return fErr
}

// Validation rules shared by Create and Update.
var (
	statusRule = validation.In(string(article.StatusDraft), string(article.StatusPublished)).
			Error("must be draft or published")
	dateRule = validation.Date(article.DateLayout).Error("must be a date in YYYY-MM-DD format")
	// Stored documents list terms as "a, b", so a comma would split a name.
	termNameRule = validation.Each(validation.By(func(value any) error {
		s, _ := value.(string)
		if strings.Contains(s, ",") {
			return validation.NewError("validation_term_comma", "must not contain commas")
		}
		return nil
	}))
	slugRule = validation.By(func(value any) error {
		value, _ = validation.Indirect(value)
		s, _ := value.(string)
		if s != "" && !slug.IsValid(s) {
			return validation.NewError("validation_slug_invalid", "must contain only lowercase letters, digits and hyphens")
		}
		return nil
	})
)

// deriveSlug builds a slug from a title. It returns "" when the title has
// nothing usable.
func deriveSlug(title string) string {
	s, err := slug.Normalize(title)
	if err != nil {
		return ""
	}
	return s
}

// cleanList trims items and drops empties and exact repeats.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func today() string {
	return time.Now().Format(article.DateLayout)
}
