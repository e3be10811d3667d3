package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/finder"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/search"
	"github.com/sells-group/prospect-cli/internal/store"
)

// downLLM fails every completion, which drives discovery through its
// template and empty-fallback paths.
type downLLM struct{}

func (downLLM) Complete(context.Context, llm.Request) (*llm.Completion, error) {
	return nil, errors.New("model unavailable")
}

type emptySearch struct{}

func (emptySearch) Name() string { return "jina" }

func (emptySearch) Search(context.Context, string, int) ([]search.Result, error) {
	return nil, nil
}

type noSites struct{}

func (noSites) ScrapeSite(_ context.Context, domain string) (model.SiteContent, error) {
	return model.SiteContent{Domain: domain}, errors.New("unreachable")
}

func testDiscoveryConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{Provider: "jina", ResultsPerQuery: 10},
		Discovery: config.DiscoveryConfig{
			MaxIndustries:         5,
			GeoTermsPerIndustry:   2,
			MaxLLMQueries:         10,
			MaxQueries:            25,
			MaxClassify:           50,
			TargetProspects:       20,
			FallbackFloor:         10,
			FallbackCount:         20,
			AcceptThreshold:       60,
			FallbackConfidenceCap: 85,
			MaxResults:            50,
			ExcerptChars:          3500,
		},
	}
}

func newTestService(st store.Store) *finder.Service {
	f := finder.New(testDiscoveryConfig(), downLLM{}, emptySearch{}, noSites{}, nil)
	return finder.NewService(f, st)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

const testICPJSON = `{
  "seller_business_type": "engineering_services",
  "what_they_sell": "Plant automation retrofits",
  "customer_industry": "food processing, packaging",
  "target_buyers": ["Plant Manager"],
  "ideal_customer_characteristics": ["multi-site operators"],
  "avoid_company_types": ["engineering firms"],
  "serviceable_geography": {"scope": "national", "countries": ["USA"]}
}`
