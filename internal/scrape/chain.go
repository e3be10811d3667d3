package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Chain tries scrapers in priority order. With a minimum page size set, a
// thin page (a script shell, a cookie wall) falls through to the next
// scraper and is only returned when nothing later does better.
type Chain struct {
	scrapers []Scraper
	minChars int
}

// NewChain creates a Chain that accepts the first successful result.
func NewChain(scrapers ...Scraper) *Chain {
	return &Chain{scrapers: scrapers}
}

// NewChainWithMin creates a Chain that keeps trying while results carry
// fewer than minChars of text.
func NewChainWithMin(minChars int, scrapers ...Scraper) *Chain {
	return &Chain{scrapers: scrapers, minChars: minChars}
}

// Name implements Scraper.
func (c *Chain) Name() string { return "chain" }

// Supports implements Scraper.
func (c *Chain) Supports(url string) bool {
	for _, s := range c.scrapers {
		if s.Supports(url) {
			return true
		}
	}
	return false
}

// Scrape returns the first result with enough text, else the fullest thin
// result, else the last error.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	var (
		best    *Result
		lastErr error
	)
	for _, s := range c.scrapers {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "scrape: cancelled")
		}
		if !s.Supports(targetURL) {
			continue
		}

		result, err := s.Scrape(ctx, targetURL)
		if err != nil {
			zap.L().Debug("scrape: scraper failed, trying next",
				zap.String("scraper", s.Name()),
				zap.String("url", targetURL),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if result == nil {
			continue
		}

		n := textLen(result)
		if n >= c.minChars {
			return result, nil
		}
		zap.L().Debug("scrape: thin page, trying next",
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Int("chars", n),
		)
		if best == nil || n > textLen(best) {
			best = result
		}
	}

	if best != nil {
		return best, nil
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "scrape: all scrapers failed")
	}
	return nil, eris.Errorf("scrape: no suitable scraper for url: %s", targetURL)
}

func textLen(r *Result) int {
	return len(strings.TrimSpace(r.Page.Markdown))
}
