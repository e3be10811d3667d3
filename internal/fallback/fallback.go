// Package fallback asks the language model to name companies that would buy
// the seller's offering when web search yields too few prospects. Every
// suggestion must still be verified by classification.
package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/domains"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
)

const (
	defaultEstimate  = 70
	maxPromptRegions = 10
)

// Generator proposes unverified candidate companies.
type Generator struct {
	llm         llm.Completer
	confCap     int
	temperature float64
	maxTokens   int
}

// New creates a Generator.
func New(completer llm.Completer, cfg *config.Config) *Generator {
	return &Generator{
		llm:         completer,
		confCap:     cfg.Discovery.FallbackConfidenceCap,
		temperature: cfg.LLM.FallbackTemperature,
		maxTokens:   cfg.LLM.FallbackMaxTokens,
	}
}

// Generate returns at most count suggestions. Domains are normalized,
// entries failing domains.IsValidBusinessDomain or repeating a domain are
// dropped, and EstimatedConfidence is capped. Any failure yields nil.
func (g *Generator) Generate(ctx context.Context, icp model.ICP, count int) []model.FallbackCandidate {
	log := zap.L().With(zap.String("phase", "fallback"))
	if count <= 0 {
		return nil
	}

	resp, err := g.llm.Complete(ctx, llm.Request{
		Phase:       "fallback",
		Prompt:      buildPrompt(icp, count),
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		log.Warn("fallback generation failed", zap.Error(err))
		return nil
	}

	out, dropped, err := parseCandidates(resp.Text, count, g.confCap)
	if err != nil {
		log.Warn("fallback response unusable", zap.Error(err))
		return nil
	}
	log.Info("fallback candidates proposed",
		zap.Int("requested", count),
		zap.Int("kept", len(out)),
		zap.Int("dropped", dropped),
	)
	return out
}

type rawCandidate struct {
	Name                string          `json:"name"`
	Domain              string          `json:"domain"`
	Industry            string          `json:"industry"`
	WhyBuyer            string          `json:"why_buyer"`
	EstimatedConfidence json.RawMessage `json:"estimated_confidence"`
}

func parseCandidates(text string, count, confCap int) ([]model.FallbackCandidate, int, error) {
	raw, ok := llm.ExtractArray(text)
	if !ok {
		return nil, 0, eris.New("fallback: no JSON array in response")
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, 0, eris.Wrap(err, "fallback: decode array")
	}

	seen := domains.NewSet()
	out := make([]model.FallbackCandidate, 0, count)
	dropped := 0
	for _, item := range items {
		if len(out) == count {
			break
		}
		var rc rawCandidate
		if err := json.Unmarshal(item, &rc); err != nil || strings.TrimSpace(rc.Name) == "" {
			dropped++
			continue
		}
		domain := domains.Normalize(rc.Domain)
		if !domains.IsValidBusinessDomain(domain) || !seen.Add(domain) {
			dropped++
			continue
		}
		why := strings.TrimSpace(rc.WhyBuyer)
		if why == "" {
			why = "Matches target customer profile"
		}
		out = append(out, model.FallbackCandidate{
			Name:                strings.TrimSpace(rc.Name),
			Domain:              domain,
			Industry:            rc.Industry,
			Rationale:           why,
			EstimatedConfidence: min(estimate(rc.EstimatedConfidence), confCap),
		})
	}
	return out, dropped, nil
}

// estimate reads a number or numeric string, defaulting when absent or
// unreadable.
func estimate(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"%`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultEstimate
	}
	return max(int(f), 0)
}

func buildPrompt(icp model.ICP, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name %d REAL, currently operating companies that would BUY the offering below.\n\n", count)
	fmt.Fprintf(&b, "OFFERING: %s\n", icp.WhatTheySell)
	fmt.Fprintf(&b, "CUSTOMER INDUSTRIES: %s\n", icp.CustomerIndustry)
	b.WriteString(geoLine(icp.ServiceableGeography) + "\n")
	b.WriteString(`
Requirements:
1. Each company must need the offering for its own operations.
2. Each company must run physical operations such as stores, plants, warehouses or offices.
3. Mix large well-known companies, mid-size regional firms and fast-growing firms in the target industries.

Exclude:
- Companies that sell the same or a similar offering (competitors)
- Software or SaaS vendors without significant physical operations
- Consulting firms
- Companies outside the required geography

Reply with a JSON array only:
[
  {
    "name": "Company Name",
    "domain": "company.com",
    "industry": "their industry",
    "why_buyer": "one sentence on why they would buy",
    "estimated_confidence": 70
  }
]`)
	return b.String()
}

func geoLine(geo model.Geography) string {
	switch geo.Scope {
	case model.GeoRegional:
		regions := geo.StatesOrRegions
		if len(regions) > maxPromptRegions {
			regions = regions[:maxPromptRegions]
		}
		if len(regions) > 0 {
			return "LOCATION: must be located in or operate in " + strings.Join(regions, ", ")
		}
	case model.GeoNational:
		countries := geo.Countries
		if len(countries) == 0 {
			countries = []string{"USA"}
		}
		return "LOCATION: must be located in " + strings.Join(countries, ", ")
	}
	return "LOCATION: no geographic restriction"
}
