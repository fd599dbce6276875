package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("test_kind", "must be a valid test kind (Standard, Advanced)", "Bogus")

	if err.Field != "test_kind" {
		t.Errorf("Expected field to be 'test_kind', got '%s'", err.Field)
	}

	if err.Value != "Bogus" {
		t.Errorf("Expected value to be 'Bogus', got '%v'", err.Value)
	}

	expected := "validation error on field 'test_kind': must be a valid test kind (Standard, Advanced)"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Empty collection
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Single error
	errs = append(errs, *NewValidationError("categories", "is required", nil))
	expected := "validation failed: categories is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Multiple errors
	errs = append(errs, *NewValidationError("question_count", "must be at least 1", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("time_budget", "must be between 60 and 14400 seconds", "time_budget", 10)

	if err.Rule != "time_budget" {
		t.Errorf("Expected rule to be 'time_budget', got '%s'", err.Rule)
	}

	if err.Field != "time_budget" {
		t.Errorf("Expected field to be 'time_budget', got '%s'", err.Field)
	}
}
