// Package classify decides whether a scraped company would buy from the
// seller described by an ICP.
package classify

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
)

// Classifier issues one model call per candidate.
type Classifier struct {
	llm         llm.Completer
	excerpt     int
	temperature float64
	maxTokens   int
}

// New creates a Classifier.
func New(completer llm.Completer, cfg *config.Config) *Classifier {
	return &Classifier{
		llm:         completer,
		excerpt:     cfg.Discovery.ExcerptChars,
		temperature: cfg.LLM.ClassifyTemperature,
		maxTokens:   cfg.LLM.ClassifyMaxTokens,
	}
}

// Classify returns the verdict for domain. It never fails: a model or parse
// error yields Rejected with a diagnostic reason.
func (c *Classifier) Classify(ctx context.Context, domain, pageText string, icp model.ICP) model.Verdict {
	log := zap.L().With(zap.String("phase", "classify"), zap.String("domain", domain))

	resp, err := c.llm.Complete(ctx, llm.Request{
		Phase:       "classify",
		Prompt:      BuildPrompt(domain, pageText, icp, c.excerpt),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		log.Warn("classification call failed", zap.Error(err))
		return Rejected("classification call failed: " + err.Error())
	}

	v, err := ParseVerdict(domain, resp.Text)
	if err != nil {
		log.Warn("classification response unusable", zap.Error(err))
		return Rejected(err.Error())
	}
	return v
}

// Rejected is the verdict used when classification could not be completed.
func Rejected(reason string) model.Verdict {
	return model.Verdict{
		WhatTheyDo:      "Unknown",
		RejectionReason: reason,
		Failed:          true,
	}
}

type rawVerdict struct {
	IsQualifiedProspect   *bool  `json:"is_qualified_prospect"`
	CompanyName           string `json:"company_name"`
	WhatTheyDo            string `json:"what_they_do"`
	PrimaryBusinessType   string `json:"primary_business_type"`
	IsCompetitor          bool   `json:"is_competitor"`
	HasActiveNeed         bool   `json:"has_active_need"`
	MatchesTargetIndustry *bool  `json:"matches_target_industry"`
	MatchesGeography      *bool  `json:"matches_geography"`
	WouldBuyReasoning     string `json:"would_buy_reasoning"`
	Reasoning             string `json:"reasoning"`
	Confidence            *score `json:"confidence"`
	RejectionReason       string `json:"rejection_reason"`
}

// score accepts a JSON number or a numeric string.
type score float64

func (s *score) UnmarshalJSON(data []byte) error {
	str := strings.Trim(strings.TrimSpace(string(data)), `"`)
	str = strings.TrimSuffix(str, "%")
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return eris.Wrapf(err, "classify: confidence %s", string(data))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return eris.Errorf("classify: confidence %s is not finite", string(data))
	}
	*s = score(f)
	return nil
}

// ParseVerdict decodes the first JSON object in text. is_qualified_prospect
// and confidence are required. Confidence is rounded and clamped to 0-100;
// a missing company name is derived from domain; the geography and industry
// flags default to true.
func ParseVerdict(domain, text string) (model.Verdict, error) {
	raw, ok := llm.ExtractObject(text)
	if !ok {
		return model.Verdict{}, eris.New("classify: no JSON object in response")
	}
	var rv rawVerdict
	if err := json.Unmarshal([]byte(raw), &rv); err != nil {
		return model.Verdict{}, eris.Wrap(err, "classify: decode verdict")
	}
	if rv.IsQualifiedProspect == nil {
		return model.Verdict{}, eris.New("classify: verdict missing is_qualified_prospect")
	}
	if rv.Confidence == nil {
		return model.Verdict{}, eris.New("classify: verdict missing confidence")
	}

	v := model.Verdict{
		IsQualifiedProspect:   *rv.IsQualifiedProspect,
		CompanyName:           strings.TrimSpace(rv.CompanyName),
		WhatTheyDo:            rv.WhatTheyDo,
		PrimaryBusinessType:   rv.PrimaryBusinessType,
		IsCompetitor:          rv.IsCompetitor,
		HasActiveNeed:         rv.HasActiveNeed,
		MatchesTargetIndustry: boolOr(rv.MatchesTargetIndustry, true),
		MatchesGeography:      boolOr(rv.MatchesGeography, true),
		Confidence:            clamp(float64(*rv.Confidence)),
		Reasoning:             rv.WouldBuyReasoning,
		RejectionReason:       rv.RejectionReason,
	}
	if v.Reasoning == "" {
		v.Reasoning = rv.Reasoning
	}
	if v.CompanyName == "" {
		v.CompanyName = NameFromDomain(domain)
	}
	return v, nil
}

// NameFromDomain title-cases the first label of domain.
func NameFromDomain(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	return cases.Title(language.English).String(label)
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func clamp(f float64) int {
	n := int(math.Round(f))
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return n
}
