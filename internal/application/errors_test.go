package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	var missing *ValidationError
	if missing.Error() != "" || missing.HasErrors() {
		t.Fatalf("expected a nil validation error to be empty")
	}

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Fatalf("expected no field errors before add")
	}
	vErr.add("scheduleTitle", "scheduleTitle is required")
	if !vErr.HasErrors() || vErr.Error() != "validation failed" {
		t.Fatalf("unexpected validation error %q (%+v)", vErr.Error(), vErr.FieldErrors)
	}

	var target *ValidationError
	if !errors.As(fmt.Errorf("update header: %w", vErr), &target) || target.FieldErrors["scheduleTitle"] == "" {
		t.Fatalf("expected wrapped validation error to be recoverable")
	}
}

func TestValidationError_MergeKeepsBothSources(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	vErr.add("classId", "classId is required")
	vErr.merge(&ValidationError{FieldErrors: map[string]string{"stars": "stars must be at least 1"}})
	vErr.merge(nil)

	if len(vErr.FieldErrors) != 2 || vErr.FieldErrors["stars"] == "" {
		t.Fatalf("expected merged field errors, got %+v", vErr.FieldErrors)
	}
}

func TestValidateRating_CombinesReferenceAndStructRules(t *testing.T) {
	t.Parallel()

	err := validateRating(Rating{Stars: 0, Comment: ""})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"classId", "stars", "comment"} {
		if vErr.FieldErrors[field] == "" {
			t.Fatalf("expected %s to be reported, got %+v", field, vErr.FieldErrors)
		}
	}

	if err := validateRating(Rating{ClassID: "deleted-class", Stars: 5, Comment: "Tuyệt"}); err != nil {
		t.Fatalf("expected dangling class reference to be accepted, got %v", err)
	}
}
