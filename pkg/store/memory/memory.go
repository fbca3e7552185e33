// Package memory provides an in-memory Store for tests and previews.
// Records are copied on the way in and out, so callers never share
// mutable state with the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/errors"
	"github.com/campusops/rostersync/pkg/store"
	"github.com/campusops/rostersync/pkg/transaction"
)

// Option configures a memory store.
type Option func(*Store)

// WithReadOnly rejects all writes with a read-only error. Reads still
// work, so a preview can run against a frozen snapshot.
func WithReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

// WithSeed preloads records before the store is returned. Each record
// is stored under its assigned id.
func WithSeed(records ...entities.Entity) Option {
	return func(s *Store) {
		for _, e := range records {
			id := entities.GetID(e)
			if id == "" {
				continue
			}
			s.records[s.key(e.Collection(), id)] = mustCopy(e)
		}
	}
}

// Store is an in-memory Store implementation.
type Store struct {
	mu           sync.RWMutex
	readOnly     bool
	records      map[string]entities.Entity
	transactions map[string]*transaction.Transaction
	locks        map[string]store.TermLock
	audits       map[string][]transaction.Audit
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		records:      make(map[string]entities.Entity),
		transactions: make(map[string]*transaction.Transaction),
		locks:        make(map[string]store.TermLock),
		audits:       make(map[string][]transaction.Audit),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(col entities.Collection, id string) string {
	return string(col) + "/" + id
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(_ context.Context, col entities.Collection, id string) (entities.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.records[s.key(col, id)]
	if !ok {
		return nil, errors.NewNotFoundError(string(col), id)
	}
	return mustCopy(e), nil
}

// List returns copies of every record in a collection, ordered by id.
func (s *Store) List(_ context.Context, col entities.Collection) ([]entities.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := string(col) + "/"
	var keys []string
	for k := range s.records {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]entities.Entity, 0, len(keys))
	for _, k := range keys {
		out = append(out, mustCopy(s.records[k]))
	}
	return out, nil
}

// Put creates or replaces a record.
func (s *Store) Put(_ context.Context, col entities.Collection, id string, e entities.Entity) error {
	if id == "" {
		return errors.NewValidationError("id", id, "document id is required")
	}
	if e == nil || e.Collection() != col {
		return errors.NewValidationError("collection", col, "record does not belong to collection")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return errors.ErrReadOnly
	}
	s.records[s.key(col, id)] = mustCopy(e)
	return nil
}

// Delete removes a record.
func (s *Store) Delete(_ context.Context, col entities.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return errors.ErrReadOnly
	}
	k := s.key(col, id)
	if _, ok := s.records[k]; !ok {
		return errors.NewNotFoundError(string(col), id)
	}
	delete(s.records, k)
	return nil
}

// SaveTransaction creates or replaces a transaction document.
func (s *Store) SaveTransaction(_ context.Context, t *transaction.Transaction) error {
	if t == nil || t.ID == "" {
		return errors.NewValidationError("id", "", "transaction id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return errors.ErrReadOnly
	}
	s.transactions[t.ID] = copyTransaction(t)
	return nil
}

// Transaction returns a saved transaction by id.
func (s *Store) Transaction(_ context.Context, id string) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, errors.NewNotFoundError("transaction", id)
	}
	return copyTransaction(t), nil
}

// MarkApplied flips a transaction's applied flag.
func (s *Store) MarkApplied(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return errors.ErrReadOnly
	}
	t, ok := s.transactions[id]
	if !ok {
		return errors.NewNotFoundError("transaction", id)
	}
	t.Applied = true
	t.AppliedAt = &at
	return nil
}

// TermLock returns the lock on a term, or nil when unlocked.
func (s *Store) TermLock(_ context.Context, term string) (*store.TermLock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lock, ok := s.locks[term]
	if !ok {
		return nil, nil
	}
	out := lock
	return &out, nil
}

// SetTermLock locks a term.
func (s *Store) SetTermLock(_ context.Context, lock store.TermLock) error {
	if lock.Term == "" {
		return errors.NewValidationError("term", "", "term is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return errors.ErrReadOnly
	}
	s.locks[lock.Term] = lock
	return nil
}

// ReleaseTermLock unlocks a term.
func (s *Store) ReleaseTermLock(_ context.Context, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return errors.ErrReadOnly
	}
	delete(s.locks, term)
	return nil
}

// AppendAudit records one applied commit.
func (s *Store) AppendAudit(_ context.Context, a transaction.Audit) error {
	if a.Term == "" {
		return errors.NewValidationError("term", "", "term is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return errors.ErrReadOnly
	}
	s.audits[a.Term] = append(s.audits[a.Term], a)
	return nil
}

// Audits returns the audit trail for a term, oldest first.
func (s *Store) Audits(_ context.Context, term string) ([]transaction.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]transaction.Audit, len(s.audits[term]))
	copy(out, s.audits[term])
	return out, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

// mustCopy deep-copies a record through the store codec. The codec
// handles every record type, so failure here means a programming
// error.
func mustCopy(e entities.Entity) entities.Entity {
	data, err := store.MarshalEntity(e)
	if err != nil {
		panic(fmt.Sprintf("copying record: %v", err))
	}
	out, err := store.UnmarshalEntity(data)
	if err != nil {
		panic(fmt.Sprintf("copying record: %v", err))
	}
	return out
}

func copyTransaction(t *transaction.Transaction) *transaction.Transaction {
	data, err := yaml.Marshal(t)
	if err != nil {
		panic(fmt.Sprintf("copying transaction: %v", err))
	}
	var out transaction.Transaction
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("copying transaction: %v", err))
	}
	return &out
}
