package ops

import (
	"testing"

	"github.com/hpungsan/folio/internal/errors"
)

func TestValidateAddress(t *testing.T) {
	addr, err := ValidateAddress(42, "")
	if err != nil {
		t.Fatalf("ValidateAddress(id) failed: %v", err)
	}
	if !addr.ByID || addr.ID != 42 {
		t.Errorf("addr = %+v, want ByID 42", addr)
	}

	addr, err = ValidateAddress(0, "  hello-go ")
	if err != nil {
		t.Fatalf("ValidateAddress(slug) failed: %v", err)
	}
	if addr.ByID || addr.Slug != "hello-go" {
		t.Errorf("addr = %+v, want slug hello-go", addr)
	}
}

func TestValidateAddress_Ambiguous(t *testing.T) {
	_, err := ValidateAddress(1, "hello")
	if !errors.Is(err, errors.ErrAmbiguousAddressing) {
		t.Errorf("err = %v, want AMBIGUOUS_ADDRESSING", err)
	}
}

func TestValidateAddress_Missing(t *testing.T) {
	for _, slug := range []string{"", "   "} {
		_, err := ValidateAddress(0, slug)
		if !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("ValidateAddress(0, %q) err = %v, want INVALID_REQUEST", slug, err)
		}
	}
}

func TestValidateAddress_NegativeID(t *testing.T) {
	_, err := ValidateAddress(-3, "")
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestCleanList(t *testing.T) {
	got := cleanList([]string{" Go ", "", "Go", "Web", "  "})
	if len(got) != 2 || got[0] != "Go" || got[1] != "Web" {
		t.Errorf("cleanList = %v, want [Go Web]", got)
	}
	if got := cleanList(nil); got == nil {
		t.Error("cleanList(nil) = nil, want empty")
	}
}
