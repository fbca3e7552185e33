package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// Ctx returns a logger from the context or the default logger.
// This is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithTerm adds the academic term to the logger in the context.
func WithTerm(ctx context.Context, term string) context.Context {
	logger := FromContext(ctx)
	newLogger := logger.With().Str("term", term).Logger()
	return WithLogger(ctx, &newLogger)
}

// WithTransaction adds the transaction id to the logger in the context.
func WithTransaction(ctx context.Context, transactionID string) context.Context {
	logger := FromContext(ctx)
	newLogger := logger.With().Str("transaction_id", transactionID).Logger()
	return WithLogger(ctx, &newLogger)
}
