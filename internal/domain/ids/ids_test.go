package ids

import (
	"errors"
	"testing"
)

func TestNewULID(t *testing.T) {
	first, err := NewULID()
	if err != nil {
		t.Fatalf("new ulid: %v", err)
	}
	if !IsULID(first) {
		t.Fatalf("generated value is not a ULID: %s", first)
	}

	second, err := NewULID()
	if err != nil {
		t.Fatalf("new ulid: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ULIDs, got %s twice", first)
	}
}

func TestValidateULID(t *testing.T) {
	if err := ValidateULID("01J8ZQ6W8E3Y4V5T6R7S8D9FAB"); err != nil {
		t.Fatalf("expected valid ULID, got %v", err)
	}
	if err := ValidateULID("not-a-ulid"); !errors.Is(err, ErrInvalidULID) {
		t.Fatalf("expected ErrInvalidULID, got %v", err)
	}
	if err := ValidateULID(""); !errors.Is(err, ErrInvalidULID) {
		t.Fatalf("expected ErrInvalidULID for empty value, got %v", err)
	}
}

func TestCaseURI(t *testing.T) {
	uri, err := CaseURI("https://episteme.example/", "01j8zq6w8e3y4v5t6r7s8d9fab")
	if err != nil {
		t.Fatalf("case uri: %v", err)
	}
	if uri != "https://episteme.example/cases/01J8ZQ6W8E3Y4V5T6R7S8D9FAB" {
		t.Fatalf("unexpected uri: %s", uri)
	}

	if _, err := CaseURI("https://episteme.example", "bad"); !errors.Is(err, ErrInvalidULID) {
		t.Fatalf("expected ErrInvalidULID, got %v", err)
	}
}
