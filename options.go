package rostersync

import (
	"github.com/rs/zerolog"

	"github.com/campusops/rostersync/pkg/matching"
	"github.com/campusops/rostersync/pkg/store"
	"github.com/campusops/rostersync/pkg/store/badgerstore"
)

// Option is a function that configures a Rostersync instance.
type Option func(*config) error

// config is the configuration assembled from options.
type config struct {
	store     store.Store
	storePath string
	matcher   matching.Matcher
	logger    *zerolog.Logger
	actor     string
}

func defaultConfig() *config {
	return &config{actor: "rostersync"}
}

// openStore opens the configured persistent backend, if any.
func (c *config) openStore() (store.Store, error) {
	if c.storePath == "" {
		return nil, nil
	}
	return badgerstore.Open(badgerstore.Config{
		Path:   c.storePath,
		Logger: c.logger,
	})
}

// WithStore uses an already-open store. The caller keeps ownership of
// stores passed in this way as far as lifecycle goes, but Close still
// closes them.
func WithStore(st store.Store) Option {
	return func(c *config) error {
		c.store = st
		return nil
	}
}

// WithStorePath opens an embedded persistent store in the given
// directory.
func WithStorePath(path string) Option {
	return func(c *config) error {
		c.storePath = path
		return nil
	}
}

// WithMatcher replaces the default fuzzy person matcher.
func WithMatcher(m matching.Matcher) Option {
	return func(c *config) error {
		c.matcher = m
		return nil
	}
}

// WithLogger sets the logger used by the engine and the store.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithActor sets the default actor recorded on commits and term locks.
func WithActor(actor string) Option {
	return func(c *config) error {
		c.actor = actor
		return nil
	}
}
