package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

var errNotFound = errors.New("not found")

func pageOf(url, text string) model.CrawledPage {
	return model.CrawledPage{URL: url, Markdown: text, StatusCode: 200}
}

func TestChain_Scrape_FirstSuccess(t *testing.T) {
	s1 := &mockScraper{
		name: "primary", supports: true,
		result: &Result{
			Page:   model.CrawledPage{URL: "https://acme.com", Title: "Home", Markdown: "content"},
			Source: "primary",
		},
	}
	s2 := &mockScraper{name: "fallback", supports: true}

	chain := NewChain(s1, s2)
	result, err := chain.Scrape(context.Background(), "https://acme.com")

	require.NoError(t, err)
	assert.Equal(t, "primary", result.Source)
	assert.Equal(t, "https://acme.com", result.Page.URL)
}

func TestChain_Scrape_FallbackOnError(t *testing.T) {
	s1 := &mockScraper{name: "primary", supports: true, err: errors.New("failed")}
	s2 := &mockScraper{
		name: "fallback", supports: true,
		result: &Result{
			Page:   model.CrawledPage{URL: "https://acme.com", Title: "Home"},
			Source: "fallback",
		},
	}

	result, err := NewChain(s1, s2).Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Source)
}

func TestChain_Scrape_AllFail(t *testing.T) {
	s1 := &mockScraper{name: "a", supports: true, err: errors.New("boom a")}
	s2 := &mockScraper{name: "b", supports: true, err: errors.New("boom b")}

	_, err := NewChain(s1, s2).Scrape(context.Background(), "https://acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all scrapers failed")
	assert.Contains(t, err.Error(), "boom b")
}

func TestChain_Scrape_SkipsUnsupported(t *testing.T) {
	s1 := &mockScraper{name: "off", supports: false, err: errors.New("should not run")}
	s2 := &mockScraper{name: "on", supports: true, result: &Result{Source: "on"}}

	chain := NewChain(s1, s2)
	assert.True(t, chain.Supports("https://acme.com"))

	result, err := chain.Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "on", result.Source)
}

func TestChain_Scrape_NoSuitable(t *testing.T) {
	chain := NewChain(&mockScraper{name: "off"})
	assert.False(t, chain.Supports("https://acme.com"))

	_, err := chain.Scrape(context.Background(), "https://acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no suitable scraper")
}

func TestChain_Scrape_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChain(&mockScraper{name: "on", supports: true, result: &Result{}}).Scrape(ctx, "https://acme.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChain_Scrape_ThinPageFallsThrough(t *testing.T) {
	thin := &mockScraper{name: "local_http", supports: true, result: &Result{Page: pageOf("https://acme.com", "Loading..."), Source: "local_http"}}
	full := &mockScraper{name: "jina", supports: true, result: &Result{Page: pageOf("https://acme.com", strings.Repeat("dairy plant ", 20)), Source: "jina"}}

	result, err := NewChainWithMin(100, thin, full).Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "jina", result.Source)
}

func TestChain_Scrape_ThinPageKeptWhenNothingBetter(t *testing.T) {
	thin := &mockScraper{name: "local_http", supports: true, result: &Result{Page: pageOf("https://acme.com", "Acme Dairy"), Source: "local_http"}}
	thinner := &mockScraper{name: "jina", supports: true, result: &Result{Page: pageOf("https://acme.com", "Acme"), Source: "jina"}}
	failing := &mockScraper{name: "firecrawl", supports: true, err: errNotFound}

	result, err := NewChainWithMin(100, thin, thinner, failing).Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "local_http", result.Source)
}

func TestChain_Scrape_NoMinimumAcceptsFirst(t *testing.T) {
	thin := &mockScraper{name: "local_http", supports: true, result: &Result{Page: pageOf("https://acme.com", "Hi"), Source: "local_http"}}
	full := &mockScraper{name: "jina", supports: true, result: &Result{Page: pageOf("https://acme.com", strings.Repeat("x", 500)), Source: "jina"}}

	result, err := NewChain(thin, full).Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "local_http", result.Source)
}
