package model

import "time"

// RunStatus is the lifecycle state of a persisted discovery run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RejectionReason buckets a rejected candidate for diagnostics.
type RejectionReason string

const (
	RejectNotBuyer      RejectionReason = "not_buyer"
	RejectWrongIndustry RejectionReason = "wrong_industry"
	RejectWrongGeo      RejectionReason = "wrong_geo"
	RejectLowConfidence RejectionReason = "low_confidence"
	RejectError         RejectionReason = "error"
)

// RejectionTally counts rejected candidates per reason.
type RejectionTally struct {
	NotBuyer      int `json:"not_buyer"`
	WrongIndustry int `json:"wrong_industry"`
	WrongGeo      int `json:"wrong_geo"`
	LowConfidence int `json:"low_confidence"`
	Error         int `json:"error"`
}

// Add increments the counter for reason.
func (t *RejectionTally) Add(reason RejectionReason) {
	switch reason {
	case RejectNotBuyer:
		t.NotBuyer++
	case RejectWrongIndustry:
		t.WrongIndustry++
	case RejectWrongGeo:
		t.WrongGeo++
	case RejectLowConfidence:
		t.LowConfidence++
	case RejectError:
		t.Error++
	}
}

// Total returns the number of rejections across all reasons.
func (t RejectionTally) Total() int {
	return t.NotBuyer + t.WrongIndustry + t.WrongGeo + t.LowConfidence + t.Error
}

// Usage accumulates provider calls, token counts and spend for a run.
type Usage struct {
	LLMCalls      int     `json:"llm_calls"`
	InputTokens   int64   `json:"input_tokens"`
	OutputTokens  int64   `json:"output_tokens"`
	SearchQueries int     `json:"search_queries"`
	CostUSD       float64 `json:"cost_usd"`
}

// RunResult summarizes one discovery run.
type RunResult struct {
	Prospects         []Prospect     `json:"prospects"`
	Queries           []string       `json:"queries"`
	CandidatesFound   int            `json:"candidates_found"`
	Classified        int            `json:"classified"`
	AcceptedFromWeb   int            `json:"accepted_from_web"`
	FallbackProposed  int            `json:"fallback_proposed"`
	FallbackVerified  int            `json:"fallback_verified"`
	Rejections        RejectionTally `json:"rejections"`
	AverageConfidence float64        `json:"average_confidence"`
	Usage             Usage          `json:"usage"`
	Duration          time.Duration  `json:"duration_ns"`
}

// Run is a persisted discovery run.
type Run struct {
	ID        string     `json:"id"`
	ICP       ICP        `json:"icp"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunFilter narrows run listings.
type RunFilter struct {
	Status RunStatus
	Limit  int
	Offset int
}
