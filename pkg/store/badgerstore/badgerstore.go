// Package badgerstore provides a Store backed by an embedded BadgerDB
// instance. It is the default persistent backend: a single directory,
// no external services, safe for concurrent use.
//
// Keys are namespaced by kind:
//
//	rec/<collection>/<id>     record envelopes
//	txn/<id>                  preview transactions
//	lock/<term>               term locks
//	audit/<term>/<at>/<id>    audit entries, ordered by timestamp
package badgerstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/errors"
	"github.com/campusops/rostersync/pkg/store"
	"github.com/campusops/rostersync/pkg/transaction"
)

// Config holds options for opening a badger-backed store.
type Config struct {
	// Path is the database directory. Created if missing. Ignored when
	// InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites forces fsync on every write.
	SyncWrites bool

	// Logger receives badger's internal log output. Nil silences it.
	Logger *zerolog.Logger
}

// Store is a badger-backed Store implementation.
type Store struct {
	db *badger.DB
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.NewValidationError("path", "", "database path is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory store for tests.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(col entities.Collection, id string) []byte {
	return []byte("rec/" + string(col) + "/" + id)
}

func transactionKey(id string) []byte {
	return []byte("txn/" + id)
}

func lockKey(term string) []byte {
	return []byte("lock/" + strings.ToLower(term))
}

func auditKey(a transaction.Audit) []byte {
	return []byte("audit/" + strings.ToLower(a.Term) + "/" + a.At.UTC().Format(time.RFC3339Nano) + "/" + a.TransactionID)
}

func auditPrefix(term string) []byte {
	return []byte("audit/" + strings.ToLower(term) + "/")
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, col entities.Collection, id string) (entities.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out entities.Entity
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(col, id))
		if err == badger.ErrKeyNotFound {
			return errors.NewNotFoundError(string(col), id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			e, err := store.UnmarshalEntity(val)
			if err != nil {
				return err
			}
			out = e
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every record in a collection, ordered by id.
func (s *Store) List(ctx context.Context, col entities.Collection) ([]entities.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := recordKey(col, "")
	var out []entities.Entity
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				e, err := store.UnmarshalEntity(val)
				if err != nil {
					return err
				}
				out = append(out, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put creates or replaces a record.
func (s *Store) Put(ctx context.Context, col entities.Collection, id string, e entities.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return errors.NewValidationError("id", id, "document id is required")
	}
	if e == nil || e.Collection() != col {
		return errors.NewValidationError("collection", col, "record does not belong to collection")
	}

	data, err := store.MarshalEntity(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(col, id), data)
	})
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, col entities.Collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key := recordKey(col, id)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return errors.NewNotFoundError(string(col), id)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// SaveTransaction creates or replaces a transaction document.
func (s *Store) SaveTransaction(ctx context.Context, t *transaction.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t == nil || t.ID == "" {
		return errors.NewValidationError("id", "", "transaction id is required")
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling transaction %s: %w", t.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(transactionKey(t.ID), data)
	})
}

// Transaction returns a saved transaction by id.
func (s *Store) Transaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out transaction.Transaction
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(transactionKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.NewNotFoundError("transaction", id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return yaml.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkApplied flips a transaction's applied flag.
func (s *Store) MarkApplied(ctx context.Context, id string, at time.Time) error {
	t, err := s.Transaction(ctx, id)
	if err != nil {
		return err
	}
	t.Applied = true
	utc := at.UTC()
	t.AppliedAt = &utc
	return s.SaveTransaction(ctx, t)
}

// TermLock returns the lock on a term, or nil when unlocked.
func (s *Store) TermLock(ctx context.Context, term string) (*store.TermLock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out *store.TermLock
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(lockKey(term))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var lock store.TermLock
			if err := yaml.Unmarshal(val, &lock); err != nil {
				return err
			}
			out = &lock
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetTermLock locks a term.
func (s *Store) SetTermLock(ctx context.Context, lock store.TermLock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if lock.Term == "" {
		return errors.NewValidationError("term", "", "term is required")
	}

	data, err := yaml.Marshal(lock)
	if err != nil {
		return fmt.Errorf("marshaling term lock: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(lockKey(lock.Term), data)
	})
}

// ReleaseTermLock unlocks a term.
func (s *Store) ReleaseTermLock(ctx context.Context, term string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(lockKey(term))
	})
}

// AppendAudit records one applied commit.
func (s *Store) AppendAudit(ctx context.Context, a transaction.Audit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Term == "" {
		return errors.NewValidationError("term", "", "term is required")
	}

	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshaling audit entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(auditKey(a), data)
	})
}

// Audits returns the audit trail for a term, oldest first. Badger
// iterates keys in byte order and the keys embed an RFC 3339
// timestamp, so iteration order is chronological.
func (s *Store) Audits(ctx context.Context, term string) ([]transaction.Audit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := auditPrefix(term)
	var out []transaction.Audit
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if !bytes.HasPrefix(it.Item().Key(), prefix) {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var a transaction.Audit
				if err := yaml.Unmarshal(val, &a); err != nil {
					return err
				}
				out = append(out, a)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// badgerLogger adapts zerolog to badger's Logger interface.
type badgerLogger struct {
	logger *zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}
