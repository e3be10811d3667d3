package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/domains"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Collector issues queries one at a time and harvests candidate domains from
// the results.
type Collector struct {
	provider   Provider
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
	maxResults int
}

// NewCollector creates a Collector paced and retried per cfg.
func NewCollector(p Provider, cfg config.SearchConfig) *Collector {
	retry := resilience.RateLimitRetry(cfg.RateLimitRetries, cfg.RateLimitBackoff())
	retry.OnRetry = resilience.RetryLogger(p.Name(), "search")
	return &Collector{
		provider:   p,
		limiter:    resilience.NewPacer(cfg.Delay()),
		retry:      retry,
		maxResults: cfg.ResultsPerQuery,
	}
}

// Collect runs every query and returns the new candidates in discovery
// order. seen is updated in place; a domain already in seen, or rejected by
// domains.IsValidBusinessDomain, is skipped. A failed query contributes no
// results. Collect stops early only when ctx is done.
func (c *Collector) Collect(ctx context.Context, queries []string, seen domains.Set) []model.Candidate {
	log := zap.L().With(zap.String("phase", "collect"), zap.String("provider", c.provider.Name()))
	start := time.Now()

	var (
		candidates []model.Candidate
		failed     int
	)
	for i, q := range queries {
		if err := c.limiter.Wait(ctx); err != nil {
			log.Warn("search interrupted", zap.Int("queries_done", i), zap.Error(err))
			break
		}

		results, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]Result, error) {
			return c.provider.Search(ctx, q, c.maxResults)
		})
		if err != nil {
			failed++
			log.Warn("search query failed, treating as empty",
				zap.String("query", q),
				zap.Int("status", resilience.HTTPStatus(err)),
				zap.Error(err),
			)
			continue
		}

		added := 0
		for _, r := range results {
			domain := domains.FromURL(r.Link)
			if domain == "" || seen.Has(domain) || !domains.IsValidBusinessDomain(domain) {
				continue
			}
			seen.Add(domain)
			candidates = append(candidates, model.Candidate{Domain: domain, SourceTitle: r.Title})
			added++
		}
		log.Debug("query complete",
			zap.String("query", q),
			zap.Int("results", len(results)),
			zap.Int("new_candidates", added),
		)
	}

	log.Info("candidate collection complete",
		zap.Int("queries", len(queries)),
		zap.Int("failed_queries", failed),
		zap.Int("candidates", len(candidates)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return candidates
}
