package scrape

import (
	"context"
	"sync"

	"github.com/sells-group/prospect-cli/pkg/firecrawl"
	"github.com/sells-group/prospect-cli/pkg/jina"
)

// mockScraper implements Scraper for testing.
type mockScraper struct {
	name     string
	supports bool
	result   *Result
	err      error
}

func (m *mockScraper) Name() string                                         { return m.name }
func (m *mockScraper) Supports(_ string) bool                               { return m.supports }
func (m *mockScraper) Scrape(_ context.Context, _ string) (*Result, error) { return m.result, m.err }

// urlScraper serves canned pages by URL and records requests.
type urlScraper struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (u *urlScraper) Name() string           { return "url" }
func (u *urlScraper) Supports(_ string) bool { return true }

func (u *urlScraper) Scrape(_ context.Context, url string) (*Result, error) {
	u.mu.Lock()
	u.calls = append(u.calls, url)
	u.mu.Unlock()
	text, ok := u.pages[url]
	if !ok {
		return nil, errNotFound
	}
	return &Result{Page: pageOf(url, text), Source: "url"}, nil
}

type fakeJina struct {
	resp  *jina.ReadResponse
	err   error
	calls int
}

func (f *fakeJina) Read(_ context.Context, _ string) (*jina.ReadResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeJina) Search(_ context.Context, _ string) (*jina.SearchResponse, error) {
	return &jina.SearchResponse{}, nil
}

type fakeFirecrawl struct {
	resp *firecrawl.ScrapeResponse
	err  error
	reqs []firecrawl.ScrapeRequest
}

func (f *fakeFirecrawl) Scrape(_ context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}
