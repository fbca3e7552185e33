// Package store defines the persistence port the reconciliation
// engine writes through, plus the YAML codec shared by its
// implementations. Records are addressed by collection and document
// id; transactions, term locks, and audit entries ride alongside the
// records in the same store.
package store

import (
	"context"
	"time"

	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/transaction"
)

// TermLock marks a term as closed to commits. A locked term rejects
// every commit until the lock is released.
type TermLock struct {
	Term     string    `yaml:"term"`
	Actor    string    `yaml:"actor,omitempty"`
	Reason   string    `yaml:"reason,omitempty"`
	LockedAt time.Time `yaml:"lockedAt"`
}

// Reader is the read side of the port.
type Reader interface {
	// Get returns the record with the given id, or a not-found error.
	Get(ctx context.Context, col entities.Collection, id string) (entities.Entity, error)

	// List returns every record in a collection. Order is unspecified.
	List(ctx context.Context, col entities.Collection) ([]entities.Entity, error)
}

// Writer is the write side of the port.
type Writer interface {
	// Put creates or replaces the record with the given id.
	Put(ctx context.Context, col entities.Collection, id string, e entities.Entity) error

	// Delete removes a record. Deleting a missing record is a not-found
	// error.
	Delete(ctx context.Context, col entities.Collection, id string) error
}

// TransactionStore persists preview transactions between the preview
// and commit steps.
type TransactionStore interface {
	// SaveTransaction creates or replaces a transaction document.
	SaveTransaction(ctx context.Context, t *transaction.Transaction) error

	// Transaction returns a saved transaction by id.
	Transaction(ctx context.Context, id string) (*transaction.Transaction, error)

	// MarkApplied flips a transaction's applied flag and records when.
	MarkApplied(ctx context.Context, id string, at time.Time) error
}

// LockStore manages per-term commit locks.
type LockStore interface {
	// TermLock returns the lock on a term, or nil when unlocked.
	TermLock(ctx context.Context, term string) (*TermLock, error)

	// SetTermLock locks a term.
	SetTermLock(ctx context.Context, lock TermLock) error

	// ReleaseTermLock unlocks a term. Releasing an unlocked term is a
	// no-op.
	ReleaseTermLock(ctx context.Context, term string) error
}

// AuditStore records applied commits.
type AuditStore interface {
	// AppendAudit records one applied commit.
	AppendAudit(ctx context.Context, a transaction.Audit) error

	// Audits returns the audit trail for a term, oldest first.
	Audits(ctx context.Context, term string) ([]transaction.Audit, error)
}

// Store is the full persistence port.
type Store interface {
	Reader
	Writer
	TransactionStore
	LockStore
	AuditStore

	// Close releases the store's resources.
	Close() error
}
