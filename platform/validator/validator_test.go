package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Title  string `json:"title" validate:"required,min=3"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Kind   string `json:"kind" validate:"trade"`
}

func TestFieldErrorsUsesJSONNames(t *testing.T) {
	v := New()
	if err := v.RegisterValidation("trade", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "Plumber"
	}); err != nil {
		t.Fatalf("RegisterValidation() error = %v", err)
	}

	err := v.Struct(sample{Title: "ab", Rating: 6, Kind: "Pilot"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	got := FieldErrors(err)
	want := map[string]string{"title": "min", "rating": "max", "kind": "trade"}
	for field, tag := range want {
		if got[field] != tag {
			t.Errorf("FieldErrors()[%q] = %q, want %q (all: %v)", field, got[field], tag, got)
		}
	}

	if err := v.Struct(sample{Title: "Leak", Rating: 5, Kind: "Plumber"}); err != nil {
		t.Fatalf("valid struct rejected: %v", err)
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	if FieldErrors(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
