// Package store persists classification runs and their per-point
// assignments, backed by SQLite for local use or PostgreSQL for shared
// deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ocean-chem/longhurst-cli/internal/model"
)

// ErrRunNotFound indicates the run ID does not exist in the store.
var ErrRunNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Kind   model.RunKind   `json:"kind,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for classification runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, kind model.RunKind, source, registry string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary *model.Summary) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Assignments
	InsertAssignments(ctx context.Context, runID string, assignments []model.Assignment) (int64, error)
	ListAssignments(ctx context.Context, runID string) ([]model.Assignment, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
