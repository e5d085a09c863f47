package cv

import (
	"context"
	"errors"
	"fmt"
	"testing"

	errorslib "github.com/goliatone/go-errors"
)

func TestAsGoErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		category errorslib.Category
		code     string
	}{
		{NewError(KindValidation, "bad input", nil), errorslib.CategoryValidation, "validation"},
		{NewError(KindPersistence, "save failed", nil), errorslib.CategoryExternal, "persistence"},
		{NewError(KindRender, "render failed", nil), errorslib.CategoryExternal, "render"},
		{NewError(KindNotFound, "missing", nil), errorslib.CategoryNotFound, "not_found"},
		{NewError(KindConflict, "busy", nil), errorslib.CategoryConflict, "conflict"},
		{context.DeadlineExceeded, errorslib.CategoryOperation, "timeout"},
		{context.Canceled, errorslib.CategoryOperation, "canceled"},
		{NewError(KindInternal, "boom", nil), errorslib.CategoryInternal, "internal"},
	}

	for _, tc := range cases {
		mapped := AsGoError(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapping for %v", tc.err)
		}
		if mapped.Category != tc.category {
			t.Fatalf("expected category %s, got %s", tc.category, mapped.Category)
		}
		if mapped.TextCode != tc.code {
			t.Fatalf("expected text code %s, got %s", tc.code, mapped.TextCode)
		}
	}
}

func TestAsGoErrorCarriesFields(t *testing.T) {
	err := NewValidationError("invalid skills", errorslib.FieldError{Field: "skills[0]", Message: "too short"})
	mapped := AsGoError(err)
	if len(mapped.ValidationErrors) != 1 || mapped.ValidationErrors[0].Field != "skills[0]" {
		t.Fatalf("expected field errors to carry over, got %+v", mapped.ValidationErrors)
	}
	if fields := FieldErrors(mapped); len(fields) != 1 {
		t.Fatalf("expected FieldErrors to read go-errors validation, got %v", fields)
	}
}

func TestKindFromWrappedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewError(KindPersistence, "disk full", errors.New("ENOSPC")))
	if KindFromError(err) != KindPersistence {
		t.Fatalf("expected persistence kind, got %s", KindFromError(err))
	}
	if KindFromError(errorslib.New("nope", errorslib.CategoryNotFound)) != KindNotFound {
		t.Fatalf("expected go-errors not found to map")
	}
	if KindFromError(nil) != "" {
		t.Fatalf("expected empty kind for nil")
	}
}
