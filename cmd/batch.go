package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/icp"
	"github.com/sells-group/prospect-cli/internal/model"
)

var batchICPs []string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run discovery for several ICPs concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		paths := append(append([]string{}, batchICPs...), args...)
		if len(paths) == 0 {
			return eris.New("batch: at least one --icp file is required")
		}

		env, err := initDiscovery(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := processBatch(ctx, paths, cfg.Batch.MaxConcurrentRuns, func(ctx context.Context, profile model.ICP) (*model.Run, error) {
			return env.Service.Run(ctx, profile)
		})
		if err != nil {
			return err
		}
		return writeBatchSummary(os.Stdout, results)
	},
}

func init() {
	batchCmd.Flags().StringArrayVar(&batchICPs, "icp", nil, "ICP file to run (repeatable)")
	rootCmd.AddCommand(batchCmd)
}

// runFunc is the callback signature for running discovery on one ICP.
type runFunc func(ctx context.Context, profile model.ICP) (*model.Run, error)

// batchResult is the outcome of one ICP in a batch.
type batchResult struct {
	ICP       string          `json:"icp"`
	RunID     string          `json:"run_id,omitempty"`
	Status    model.RunStatus `json:"status,omitempty"`
	Prospects int             `json:"prospects"`
	Error     string          `json:"error,omitempty"`
}

// processBatch runs each ICP file with at most concurrency runs in flight.
// A failing ICP is recorded in its result and does not stop the others.
func processBatch(ctx context.Context, paths []string, concurrency int, run runFunc) ([]batchResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("icps", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]batchResult, len(paths))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			log := zap.L().With(zap.String("icp", path))
			res := batchResult{ICP: path}
			defer func() { results[i] = res }()

			profile, err := icp.Load(path)
			if err != nil {
				failed.Add(1)
				res.Error = err.Error()
				log.Error("load icp failed", zap.Error(err))
				return nil
			}

			r, err := run(gctx, profile)
			if r != nil {
				res.RunID = r.ID
				res.Status = r.Status
				if r.Result != nil {
					res.Prospects = len(r.Result.Prospects)
				}
			}
			if err != nil {
				failed.Add(1)
				res.Error = err.Error()
				log.Error("discovery failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("discovery complete",
				zap.String("run_id", res.RunID),
				zap.Int("prospects", res.Prospects),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, nil
}

func writeBatchSummary(w io.Writer, results []batchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return eris.Wrap(err, "batch: write summary")
	}
	return nil
}
