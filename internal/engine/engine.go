// Package engine runs the preview/commit reconciliation pipeline. A
// preview projects raw export rows into canonical records, diffs them
// against the store, and persists the resulting transaction; a commit
// applies a reviewed selection of that transaction's changes.
package engine

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/campusops/rostersync/pkg/differ"
	"github.com/campusops/rostersync/pkg/logging"
	"github.com/campusops/rostersync/pkg/matching"
	"github.com/campusops/rostersync/pkg/store"
	"github.com/campusops/rostersync/pkg/validate"
)

// Engine coordinates the preview and commit pipelines over one store.
type Engine struct {
	store     store.Store
	matcher   matching.Matcher
	validator *validate.Validator
	differ    *differ.Differ
	logger    *zerolog.Logger

	// commitMu makes the engine the sole mutator: one commit at a time.
	commitMu sync.Mutex
}

// New creates an engine. A nil matcher falls back to the fuzzy
// matcher; a nil logger falls back to the package default.
func New(st store.Store, matcher matching.Matcher, logger *zerolog.Logger) *Engine {
	if matcher == nil {
		matcher = matching.NewFuzzyMatcher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:     st,
		matcher:   matcher,
		validator: validate.New(),
		differ:    differ.New(),
		logger:    logger,
	}
}
