package model

// Candidate is a company domain harvested from web search. Domains are
// normalized (lowercase, no "www.") and unique within a run.
type Candidate struct {
	Domain      string `json:"domain"`
	SourceTitle string `json:"source_title"`
}

// Verdict is the parsed outcome of classifying one candidate.
type Verdict struct {
	IsQualifiedProspect   bool   `json:"is_qualified_prospect"`
	CompanyName           string `json:"company_name"`
	WhatTheyDo            string `json:"what_they_do,omitempty"`
	PrimaryBusinessType   string `json:"primary_business_type,omitempty"`
	IsCompetitor          bool   `json:"is_competitor"`
	HasActiveNeed         bool   `json:"has_active_need"`
	MatchesTargetIndustry bool   `json:"matches_target_industry"`
	MatchesGeography      bool   `json:"matches_geography"`
	Confidence            int    `json:"confidence"`
	Reasoning             string `json:"reasoning"`
	RejectionReason       string `json:"rejection_reason,omitempty"`

	// Failed is set when the verdict is a default produced because the
	// classifier response could not be obtained or parsed.
	Failed bool `json:"-"`
}

// ProspectSource records how a prospect was found.
type ProspectSource string

const (
	SourceWebSearchVerified ProspectSource = "web_search_verified"
	SourceLLMVerified       ProspectSource = "llm_verified"
)

// Prospect is an accepted company. Confidence is the verdict confidence / 100.
type Prospect struct {
	Name       string         `json:"name"`
	Domain     string         `json:"domain"`
	Confidence float64        `json:"confidence"`
	WhyGoodFit string         `json:"why_good_fit"`
	WhatTheyDo string         `json:"what_they_do,omitempty"`
	Source     ProspectSource `json:"source"`
}

// FallbackCandidate is a company proposed directly by the language model. It
// must be verified by classification before it becomes a Prospect.
type FallbackCandidate struct {
	Name                string `json:"name"`
	Domain              string `json:"domain"`
	Industry            string `json:"industry,omitempty"`
	Rationale           string `json:"why_buyer"`
	EstimatedConfidence int    `json:"estimated_confidence"`
}
