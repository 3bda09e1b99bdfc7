package storage

import (
	"context"

	"tweetstash/internal/domain"
)

// Repository defines the interface for archive persistence.
// This allows us to swap storage implementations (e.g., BadgerDB, SQLite)
// without changing the application logic that uses it.
//
// Persistence is an explicit commit: callers save the whole archive
// once per logical unit of work (after an import, after an analysis
// run, after a delete), never incrementally mid-run.
type Repository interface {
	// LoadArchive returns the persisted archive, or empty defaults
	// when nothing has been saved yet.
	LoadArchive(ctx context.Context) (domain.Snapshot, error)

	// SaveArchive persists the full archive, replacing whatever was
	// stored before.
	SaveArchive(ctx context.Context, snap domain.Snapshot) error

	// Close gracefully shuts down the repository.
	Close() error
}
