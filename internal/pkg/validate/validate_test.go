package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/lalaba/merchant-app/internal/core/domain"
)

type sample struct {
	Phone string `validate:"required"`
	Open  string `validate:"omitempty,datetime=15:04"`
	Name  string `validate:"omitempty,oneof=Regular Premium"`
}

func TestValidate_Valid(t *testing.T) {
	if err := New().Validate(&sample{Phone: "09171234567", Open: "08:00", Name: "Premium"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsFields(t *testing.T) {
	err := New().Validate(&sample{Open: "8am", Name: "Deluxe"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	if len(ve.Fields) != 3 {
		t.Fatalf("expected 3 failing fields, got %v", ve.Fields)
	}
	for _, want := range []string{"phone is required", "open must match 15:04", "name must be one of: Regular Premium"} {
		if !strings.Contains(ve.Error(), want) {
			t.Errorf("message %q missing %q", ve.Error(), want)
		}
	}
}
