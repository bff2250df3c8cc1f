package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("driver: bad connection")
	err := NewStoreError("availability check failed", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected the store error to wrap its cause")
	}
	if errors.Is(err, ErrDateConflict) {
		t.Error("Expected a store error not to match a conflict")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"guest_email": "invalid email format"}}

	wrapped := fmt.Errorf("rejected: %w", err)
	var validationErr *ValidationError
	if !errors.As(wrapped, &validationErr) {
		t.Fatal("Expected errors.As to find the validation error")
	}
	if validationErr.Fields["guest_email"] != "invalid email format" {
		t.Errorf("Unexpected field message: %v", validationErr.Fields)
	}
}
