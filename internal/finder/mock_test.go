package finder

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
)

var domainLine = regexp.MustCompile(`Domain: (\S+)`)

// fakeLLM answers by request phase. Classification replies are looked up by
// the domain named in the prompt.
type fakeLLM struct {
	mu         sync.Mutex
	queries    string
	verdicts   map[string]string
	fallback   string
	err        error
	classified []string
	phases     []string
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phases = append(f.phases, req.Phase)
	if f.err != nil {
		return nil, f.err
	}

	text := "[]"
	switch req.Phase {
	case "query_generation":
		if f.queries != "" {
			text = f.queries
		}
	case "fallback":
		if f.fallback != "" {
			text = f.fallback
		}
	case "classify":
		m := domainLine.FindStringSubmatch(req.Prompt)
		if m == nil {
			return nil, errors.New("no domain in prompt")
		}
		f.classified = append(f.classified, m[1])
		text = reject(40, "No active need")
		if v, ok := f.verdicts[m[1]]; ok {
			text = v
		}
	}
	return &llm.Completion{Text: text, InputTokens: 100, OutputTokens: 20, CostUSD: 0.001}, nil
}

func (f *fakeLLM) count(phase string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.phases {
		if p == phase {
			n++
		}
	}
	return n
}

func accept(name string, conf int) string {
	return fmt.Sprintf(`{"is_qualified_prospect": true, "company_name": %q, "what_they_do": "Operates plants", "is_competitor": false, "has_active_need": true, "confidence": %d, "would_buy_reasoning": "Building a new plant"}`, name, conf)
}

func acceptUnnamed(conf int) string {
	return fmt.Sprintf(`{"is_qualified_prospect": true, "is_competitor": false, "confidence": %d}`, conf)
}

func reject(conf int, reason string) string {
	return fmt.Sprintf(`{"is_qualified_prospect": false, "company_name": "", "is_competitor": false, "confidence": %d, "rejection_reason": %q}`, conf, reason)
}

// fakeProvider returns the same links for every query.
type fakeProvider struct {
	name    string
	links   []string
	queries []string
}

func (p *fakeProvider) Name() string {
	if p.name == "" {
		return "google"
	}
	return p.name
}

func (p *fakeProvider) Search(_ context.Context, query string, limit int) ([]search.Result, error) {
	p.queries = append(p.queries, query)
	var out []search.Result
	for _, l := range p.links {
		out = append(out, search.Result{Title: l, Link: l})
	}
	return out, nil
}

// fakeSites serves a fixed text for every domain not listed in missing.
type fakeSites struct {
	missing map[string]bool
	calls   []string
}

func (s *fakeSites) ScrapeSite(_ context.Context, domain string) (model.SiteContent, error) {
	s.calls = append(s.calls, domain)
	if s.missing[domain] {
		return model.SiteContent{Domain: domain}, errors.New("scrape: insufficient content")
	}
	text := domain + " operates manufacturing plants across Texas. " + strings.Repeat("We are expanding. ", 20)
	return model.SiteContent{Domain: domain, Text: text}, nil
}

// mockStore is a testify mock of store.Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, icp model.ICP) (*model.Run, error) {
	args := m.Called(ctx, icp)
	run, _ := args.Get(0).(*model.Run)
	return run, args.Error(1)
}

func (m *mockStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	return m.Called(ctx, runID, result).Error(0)
}

func (m *mockStore) FailRun(ctx context.Context, runID string, msg string) error {
	return m.Called(ctx, runID, msg).Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	run, _ := args.Get(0).(*model.Run)
	return run, args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter model.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	runs, _ := args.Get(0).([]model.Run)
	return runs, args.Error(1)
}

func (m *mockStore) SaveProspects(ctx context.Context, runID string, prospects []model.Prospect) error {
	return m.Called(ctx, runID, prospects).Error(0)
}

func (m *mockStore) ListProspects(ctx context.Context, runID string) ([]model.Prospect, error) {
	args := m.Called(ctx, runID)
	p, _ := args.Get(0).([]model.Prospect)
	return p, args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
