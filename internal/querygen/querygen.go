// Package querygen builds web-search queries aimed at companies that would
// buy the seller's offering.
package querygen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
)

const (
	maxRegionalTerms = 5
	maxNationalTerms = 3
	minQueryLen      = 6
)

// templates are expanded once per industry term.
var templates = []string{
	"largest %s companies",
	"top %s companies headquarters",
	"leading %s companies",
	"%s companies with facilities",
}

// Generator produces the query list for a discovery run.
type Generator struct {
	llm  llm.Completer
	disc config.DiscoveryConfig
	opts config.LLMConfig
}

// New creates a Generator. completer may be nil, in which case only template
// queries are produced.
func New(completer llm.Completer, cfg *config.Config) *Generator {
	return &Generator{llm: completer, disc: cfg.Discovery, opts: cfg.LLM}
}

// Generate returns template queries followed by model-suggested queries,
// deduplicated case-insensitively (first occurrence wins) and capped at
// discovery.max_queries. It never fails; a model error only drops the
// suggested queries.
func (g *Generator) Generate(ctx context.Context, icp model.ICP) []string {
	log := zap.L().With(zap.String("phase", "query_generation"))

	tmpl := g.Templates(icp)
	suggested := g.suggest(ctx, icp)

	queries := dedupe(append(append([]string{}, tmpl...), suggested...))
	queries = head(queries, g.disc.MaxQueries)

	log.Info("generated search queries",
		zap.Int("template", len(tmpl)),
		zap.Int("suggested", len(suggested)),
		zap.Int("total", len(queries)),
	)
	return queries
}

// Templates returns the deterministic queries for icp.
func (g *Generator) Templates(icp model.ICP) []string {
	industries := head(icp.Industries(), g.disc.MaxIndustries)
	geo := head(GeoTerms(icp.ServiceableGeography), g.disc.GeoTermsPerIndustry)

	out := make([]string, 0, len(industries)*(len(templates)+len(geo)))
	for _, ind := range industries {
		for _, t := range templates {
			out = append(out, fmt.Sprintf(t, ind))
		}
		for _, term := range geo {
			out = append(out, fmt.Sprintf("%s companies %s", ind, term))
		}
	}
	return out
}

// head returns at most n leading elements; a negative n yields none.
func head(s []string, n int) []string {
	n = max(n, 0)
	if len(s) > n {
		return s[:n]
	}
	return s
}

// GeoTerms returns the location terms used in geographic queries: up to five
// regions for a regional scope, up to three countries for a national scope
// (USA when none are given), and none otherwise.
func GeoTerms(geo model.Geography) []string {
	var terms []string
	switch geo.Scope {
	case model.GeoRegional:
		terms = nonEmpty(geo.StatesOrRegions)
		if len(terms) > maxRegionalTerms {
			terms = terms[:maxRegionalTerms]
		}
	case model.GeoNational:
		terms = nonEmpty(geo.Countries)
		if len(terms) == 0 {
			terms = []string{"USA"}
		}
		if len(terms) > maxNationalTerms {
			terms = terms[:maxNationalTerms]
		}
	}
	return terms
}

func (g *Generator) suggest(ctx context.Context, icp model.ICP) []string {
	if g.llm == nil || g.disc.MaxLLMQueries <= 0 {
		return nil
	}
	log := zap.L().With(zap.String("phase", "query_generation"))

	resp, err := g.llm.Complete(ctx, llm.Request{
		Phase:       "query_generation",
		Prompt:      buildPrompt(icp, g.disc.MaxLLMQueries),
		Temperature: g.opts.QueryTemperature,
		MaxTokens:   g.opts.QueryMaxTokens,
	})
	if err != nil {
		log.Warn("query suggestion failed, using templates only", zap.Error(err))
		return nil
	}

	out, err := parseQueries(resp.Text, g.disc.MaxLLMQueries)
	if err != nil {
		log.Warn("query suggestion unparseable, using templates only", zap.Error(err))
		return nil
	}
	return out
}

func buildPrompt(icp model.ICP, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d web search queries that surface companies which would BUY the offering below.\n\n", n)
	fmt.Fprintf(&b, "OFFERING: %s\n", icp.WhatTheySell)
	fmt.Fprintf(&b, "CUSTOMER INDUSTRIES: %s\n", icp.CustomerIndustry)
	if len(icp.TargetBuyers) > 0 {
		fmt.Fprintf(&b, "BUYER TITLES: %s\n", strings.Join(icp.TargetBuyers, ", "))
	}
	if terms := GeoTerms(icp.ServiceableGeography); len(terms) > 0 {
		fmt.Fprintf(&b, "LOCATIONS: %s\n", strings.Join(terms, ", "))
	}
	b.WriteString(`
Rules:
- Target end customers that need this offering for their own operations
- Do not target companies that sell the same or a similar offering
- Avoid the words "software", "platform", "tool" and "solution"
- Prefer operators: manufacturers, retailers, property owners, facility operators

Respond with a JSON array of query strings only, for example ["query one", "query two"].`)
	return b.String()
}

// parseQueries extracts string entries longer than five characters from the
// first JSON array in text, keeping at most max.
func parseQueries(text string, max int) ([]string, error) {
	raw, ok := llm.ExtractArray(text)
	if !ok {
		return nil, eris.New("querygen: no JSON array in response")
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, eris.Wrap(err, "querygen: decode array")
	}

	out := make([]string, 0, max)
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < minQueryLen {
			continue
		}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out, nil
}

func dedupe(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	out := queries[:0]
	for _, q := range queries {
		key := strings.ToLower(strings.TrimSpace(q))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
