// Package rostersync reconciles bulk institutional scheduling and
// directory exports against a live store of schedules, people, and
// rooms. An import runs in two steps: Preview projects and diffs a
// batch into a reviewable transaction without touching the record
// collections, and Commit applies a reviewed selection of that
// transaction's changes.
package rostersync

import (
	"context"
	"fmt"
	"time"

	"github.com/campusops/rostersync/internal/engine"
	"github.com/campusops/rostersync/internal/importfile"
	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/rows"
	"github.com/campusops/rostersync/pkg/store"
	"github.com/campusops/rostersync/pkg/store/memory"
	"github.com/campusops/rostersync/pkg/transaction"
)

// Batch is one parsed export ready for preview.
type Batch struct {
	// Term names the academic term the batch belongs to.
	Term string

	// Type selects the schedule or directory pipeline. Leave empty to
	// detect it from the batch's column headers.
	Type entities.ImportType

	// Rows are the export's data rows keyed by column header.
	Rows []rows.RawRow

	// Headers are the export's column headers, used for import-type
	// detection when Type is empty.
	Headers []string
}

// Rostersync is the import reconciliation engine.
type Rostersync interface {
	// Preview diffs a batch against the store and persists the
	// resulting transaction for review. It never writes records.
	Preview(ctx context.Context, batch Batch) (*transaction.Transaction, error)

	// PreviewFile reads a CSV or XLSX export and previews it.
	PreviewFile(ctx context.Context, term, path string) (*transaction.Transaction, error)

	// Commit applies a reviewed selection of a previewed transaction.
	Commit(ctx context.Context, req transaction.CommitRequest) (*transaction.CommitResult, error)

	// Transaction returns a previously previewed transaction.
	Transaction(ctx context.Context, id string) (*transaction.Transaction, error)

	// Audits returns the commit history for a term, oldest first.
	Audits(ctx context.Context, term string) ([]transaction.Audit, error)

	// LockTerm closes a term to commits until UnlockTerm.
	LockTerm(ctx context.Context, term, reason string) error

	// UnlockTerm reopens a locked term.
	UnlockTerm(ctx context.Context, term string) error

	// Store exposes the underlying record store for direct reads.
	Store() store.Store

	// Close releases the underlying store.
	Close() error
}

// rostersync is the internal implementation of the Rostersync
// interface.
type rostersync struct {
	config *config
	store  store.Store
	engine *engine.Engine
}

// New creates a Rostersync instance. Without WithStore or
// WithStorePath the instance runs on an in-memory store, which suits
// tests and dry runs.
func New(opts ...Option) (Rostersync, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	st := cfg.store
	if st == nil {
		var err error
		if st, err = cfg.openStore(); err != nil {
			return nil, err
		}
	}
	if st == nil {
		st = memory.New()
	}

	return &rostersync{
		config: cfg,
		store:  st,
		engine: engine.New(st, cfg.matcher, cfg.logger),
	}, nil
}

func (r *rostersync) Preview(ctx context.Context, batch Batch) (*transaction.Transaction, error) {
	importType := batch.Type
	if importType == "" {
		var err error
		if importType, err = rows.DetectImportType(batch.Headers); err != nil {
			return nil, err
		}
	}
	return r.engine.Preview(ctx, engine.Batch{
		Term: batch.Term,
		Type: importType,
		Rows: batch.Rows,
	})
}

func (r *rostersync) PreviewFile(ctx context.Context, term, path string) (*transaction.Transaction, error) {
	file, err := importfile.Read(path)
	if err != nil {
		return nil, err
	}
	return r.Preview(ctx, Batch{Term: term, Rows: file.Rows, Headers: file.Headers})
}

func (r *rostersync) Commit(ctx context.Context, req transaction.CommitRequest) (*transaction.CommitResult, error) {
	if req.Actor == "" {
		req.Actor = r.config.actor
	}
	return r.engine.Commit(ctx, req)
}

func (r *rostersync) Transaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	return r.store.Transaction(ctx, id)
}

func (r *rostersync) Audits(ctx context.Context, term string) ([]transaction.Audit, error) {
	return r.store.Audits(ctx, term)
}

func (r *rostersync) LockTerm(ctx context.Context, term, reason string) error {
	return r.store.SetTermLock(ctx, store.TermLock{
		Term:     term,
		Actor:    r.config.actor,
		Reason:   reason,
		LockedAt: time.Now().UTC(),
	})
}

func (r *rostersync) UnlockTerm(ctx context.Context, term string) error {
	return r.store.ReleaseTermLock(ctx, term)
}

func (r *rostersync) Store() store.Store {
	return r.store
}

func (r *rostersync) Close() error {
	return r.store.Close()
}
