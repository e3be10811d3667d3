package finder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/icp"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/store"
)

// persistRetry covers dropped connections and timeouts while saving results.
var persistRetry = resilience.RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 250 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
	Multiplier:     2,
	JitterFraction: 0.2,
	OnRetry:        resilience.RetryLogger("store", "persist_run"),
}

// Service runs discovery and records each run in a store. A nil store keeps
// runs in memory only.
type Service struct {
	finder *Finder
	store  store.Store
}

// NewService creates a Service.
func NewService(f *Finder, st store.Store) *Service {
	return &Service{finder: f, store: st}
}

// Start normalizes profile, logs its data-quality warnings and records a new
// run in status running.
func (s *Service) Start(ctx context.Context, profile model.ICP) (*model.Run, error) {
	profile = icp.Normalize(profile)
	icp.LogWarnings(profile)

	if s.store == nil {
		now := time.Now().UTC()
		return &model.Run{
			ID:        uuid.New().String(),
			ICP:       profile,
			Status:    model.RunStatusRunning,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	run, err := s.store.CreateRun(ctx, profile)
	if err != nil {
		return nil, eris.Wrap(err, "finder: create run")
	}
	return run, nil
}

// Execute runs discovery for a started run and persists the outcome. A run
// whose ctx ends before discovery finishes is saved with its partial
// prospects and marked failed. Only persistence errors are returned.
func (s *Service) Execute(ctx context.Context, run *model.Run) (*model.RunResult, error) {
	log := zap.L().With(zap.String("run_id", run.ID))

	result := s.finder.Find(ctx, run.ICP)
	cancelled := ctx.Err()

	run.Result = result
	run.UpdatedAt = time.Now().UTC()
	if cancelled != nil {
		run.Status = model.RunStatusFailed
		run.Error = cancelled.Error()
	} else {
		run.Status = model.RunStatusComplete
	}

	if s.store == nil {
		return result, nil
	}

	// Persist even when the caller's context is done.
	pctx := context.WithoutCancel(ctx)
	err := resilience.Do(pctx, persistRetry, func(ctx context.Context) error {
		return s.store.SaveProspects(ctx, run.ID, result.Prospects)
	})
	if err != nil {
		s.fail(pctx, run, err)
		return result, eris.Wrap(err, "finder: save prospects")
	}
	if cancelled != nil {
		if err := s.store.FailRun(pctx, run.ID, cancelled.Error()); err != nil {
			return result, eris.Wrap(err, "finder: mark run failed")
		}
		log.Warn("finder: run cancelled", zap.Int("prospects", len(result.Prospects)), zap.Error(cancelled))
		return result, nil
	}
	err = resilience.Do(pctx, persistRetry, func(ctx context.Context) error {
		return s.store.CompleteRun(ctx, run.ID, result)
	})
	if err != nil {
		s.fail(pctx, run, err)
		return result, eris.Wrap(err, "finder: complete run")
	}
	log.Info("finder: run saved", zap.Int("prospects", len(result.Prospects)))
	return result, nil
}

// Run starts and executes a run.
func (s *Service) Run(ctx context.Context, profile model.ICP) (*model.Run, error) {
	run, err := s.Start(ctx, profile)
	if err != nil {
		return nil, err
	}
	if _, err := s.Execute(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

func (s *Service) fail(ctx context.Context, run *model.Run, cause error) {
	run.Status = model.RunStatusFailed
	run.Error = cause.Error()
	if err := s.store.FailRun(ctx, run.ID, cause.Error()); err != nil {
		zap.L().Warn("finder: mark run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}
