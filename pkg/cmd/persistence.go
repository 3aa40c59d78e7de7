// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/flowline/flowline/pkg/persistence"
	"github.com/flowline/flowline/pkg/persistence/memory"
	"github.com/flowline/flowline/pkg/persistence/postgresql"
)

// NewPersistence selects the persistence provider from the database URL
// scheme. An empty URL yields the in-memory store for local runs and tests.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		logger.WarnContext(ctx, "No database URL configured, using in-memory persistence")

		return memory.NewPersistence(), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return ""
	}

	return provider
}
