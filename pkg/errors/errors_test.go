package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("person", "p-123")

	if !IsNotFound(err) {
		t.Error("expected IsNotFound to be true")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is(err, ErrNotFound) to be true")
	}
	if !strings.Contains(err.Error(), "p-123") {
		t.Errorf("expected message to contain id, got %q", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("email", "not-an-email", "must be a valid address")

	if !IsValidationError(err) {
		t.Error("expected IsValidationError to be true")
	}
	if !strings.Contains(err.Error(), "email") {
		t.Errorf("expected message to name the field, got %q", err.Error())
	}
}

func TestMatchError(t *testing.T) {
	err := NewMatchError("mi-1", "Smith, Jane", []string{"c-1", "c-2"})

	if !IsUnresolvedMatch(err) {
		t.Error("expected IsUnresolvedMatch to be true")
	}
	if !strings.Contains(err.Error(), "Smith, Jane") {
		t.Errorf("expected message to name the instructor, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "2 dependent") {
		t.Errorf("expected message to count dependent changes, got %q", err.Error())
	}
}

func TestCommitErrorReportsAppliedWrites(t *testing.T) {
	cause := errors.New("disk full")
	err := NewCommitError("tx-1", []WriteRef{
		{Collection: "people", ID: "p-1"},
		{Collection: "schedules", ID: "s-1"},
	}, cause)

	if !errors.Is(err, cause) {
		t.Error("expected CommitError to unwrap to its cause")
	}
	msg := err.Error()
	if !strings.Contains(msg, "people/p-1") || !strings.Contains(msg, "schedules/s-1") {
		t.Errorf("expected message to list applied writes, got %q", msg)
	}
}

func TestCommitErrorNoWrites(t *testing.T) {
	err := NewCommitError("tx-2", nil, errors.New("locked"))
	if !strings.Contains(err.Error(), "before any writes") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSentinelWrapping(t *testing.T) {
	wrapped := fmt.Errorf("commit: %w", ErrTransactionApplied)
	if !IsTransactionApplied(wrapped) {
		t.Error("expected IsTransactionApplied through wrapping")
	}

	wrapped = fmt.Errorf("commit: %w", ErrTermLocked)
	if !IsTermLocked(wrapped) {
		t.Error("expected IsTermLocked through wrapping")
	}
}
