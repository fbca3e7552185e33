// Package errors provides custom error types for the rostersync system.
// These errors enable programmatic error checking and let callers
// distinguish the one hard commit gate (unresolved person matching) from
// ordinary validation noise and from partially-applied commit failures.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New is re-exported so callers need only this errors package.
var New = errors.New

// Common sentinel errors for the rostersync system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a record already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnresolvedMatch indicates a selected change depends on a person
	// matching issue that has not been resolved
	ErrUnresolvedMatch = errors.New("unresolved person match")

	// ErrTransactionApplied indicates an attempt to commit a transaction
	// that was already applied
	ErrTransactionApplied = errors.New("transaction already applied")

	// ErrTermLocked indicates the target term is locked or archived and
	// must not accept commits
	ErrTermLocked = errors.New("term locked")

	// ErrReadOnly indicates an attempt to modify a read-only resource
	ErrReadOnly = errors.New("read only")
)

// NotFoundError identifies the record a lookup missed: a transaction,
// a matching issue, a change within a transaction, or a stored
// document.
type NotFoundError struct {
	Resource string // what kind of thing was looked up
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a NotFoundError for the named resource kind
// and id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports malformed input to an engine operation: a
// batch with no term, an unknown import type, or a commit request
// naming an unusable resolution.
type ValidationError struct {
	Field   string
	Value   interface{} // the offending value, kept for callers that log it
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a ValidationError for one field.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// MatchError reports a commit attempt whose selection includes changes
// gated by an unresolved person matching issue.
type MatchError struct {
	IssueID    string
	Instructor string
	ChangeIDs  []string
}

func (e *MatchError) Error() string {
	if e.Instructor != "" {
		return fmt.Sprintf("instructor %q is unresolved (issue %s); resolve it before committing %d dependent change(s)",
			e.Instructor, e.IssueID, len(e.ChangeIDs))
	}
	return fmt.Sprintf("matching issue %s is unresolved; %d dependent change(s) selected", e.IssueID, len(e.ChangeIDs))
}

// Is matches ErrUnresolvedMatch.
func (e *MatchError) Is(target error) bool {
	return target == ErrUnresolvedMatch
}

// NewMatchError creates a MatchError for one unresolved issue.
func NewMatchError(issueID, instructor string, changeIDs []string) *MatchError {
	return &MatchError{IssueID: issueID, Instructor: instructor, ChangeIDs: changeIDs}
}

// WriteRef identifies one document write performed during a commit.
type WriteRef struct {
	Collection string
	ID         string
}

// String returns the collection-qualified document id.
func (w WriteRef) String() string {
	return w.Collection + "/" + w.ID
}

// CommitError reports a commit that failed part way through. The store
// offers no multi-document rollback, so Applied lists the writes known to
// have succeeded before the failure.
type CommitError struct {
	TransactionID string
	Applied       []WriteRef
	Err           error
}

func (e *CommitError) Error() string {
	if len(e.Applied) == 0 {
		return fmt.Sprintf("commit of transaction %s failed before any writes: %v", e.TransactionID, e.Err)
	}
	refs := make([]string, len(e.Applied))
	for i, w := range e.Applied {
		refs[i] = w.String()
	}
	return fmt.Sprintf("commit of transaction %s failed after %d write(s) [%s]: %v",
		e.TransactionID, len(e.Applied), strings.Join(refs, ", "), e.Err)
}

// Unwrap returns the underlying write failure.
func (e *CommitError) Unwrap() error {
	return e.Err
}

// NewCommitError wraps a write failure with the commit's progress.
func NewCommitError(transactionID string, applied []WriteRef, err error) *CommitError {
	return &CommitError{TransactionID: transactionID, Applied: applied, Err: err}
}

// ParseError represents an error when parsing import data
type ParseError struct {
	Format  string // "csv", "xlsx"
	File    string
	Row     int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.File != "" && e.Row > 0 {
		return fmt.Sprintf("parse error in %s file %s at row %d: %s", e.Format, e.File, e.Row, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap returns the underlying parser failure.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError for one input file.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// Predicates over wrapped errors, so callers never touch the
// sentinels directly.

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is a duplicate-record error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError reports whether err is malformed input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnresolvedMatch reports whether err is the matching commit gate.
func IsUnresolvedMatch(err error) bool {
	return errors.Is(err, ErrUnresolvedMatch)
}

// IsTransactionApplied reports whether err is the recommit guard.
func IsTransactionApplied(err error) bool {
	return errors.Is(err, ErrTransactionApplied)
}

// IsTermLocked reports whether err is the advisory term lock.
func IsTermLocked(err error) bool {
	return errors.Is(err, ErrTermLocked)
}

// IsReadOnly reports whether err is a read-only store rejection.
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}
