// Package store persists discovery runs and their prospects.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// Store persists runs and the prospects they produce.
type Store interface {
	// CreateRun records a new run in status running.
	CreateRun(ctx context.Context, icp model.ICP) (*model.Run, error)
	// CompleteRun stores the run summary and marks the run complete.
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	// FailRun marks the run failed with msg.
	FailRun(ctx context.Context, runID string, msg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter model.RunFilter) ([]model.Run, error)

	// SaveProspects replaces the prospects of a run, keeping their order.
	SaveProspects(ctx context.Context, runID string, prospects []model.Prospect) error
	// ListProspects returns the prospects of a run in saved order.
	ListProspects(ctx context.Context, runID string) ([]model.Prospect, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(f model.RunFilter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// summary strips the prospect list, which lives in its own table.
func summary(result *model.RunResult) model.RunResult {
	s := *result
	s.Prospects = nil
	return s
}
