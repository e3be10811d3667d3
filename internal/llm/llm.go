// Package llm adapts language-model providers to a single text completion
// interface and extracts JSON payloads from their free-form replies.
package llm

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Request is one prompt-in, text-out completion.
type Request struct {
	// Phase names the pipeline step for cost attribution.
	Phase       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completion is the provider reply with usage accounting.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
}

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

func logCost(c *Completion, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", c.Model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", c.InputTokens),
		zap.Int64("output_tokens", c.OutputTokens),
		zap.Float64("estimated_cost_usd", c.CostUSD),
	)
}

// Meter wraps a Completer and totals the usage of every successful call. A
// Meter belongs to a single discovery run.
type Meter struct {
	next  Completer
	mu    sync.Mutex
	usage model.Usage
}

// NewMeter wraps next.
func NewMeter(next Completer) *Meter {
	return &Meter{next: next}
}

// Complete forwards to the wrapped Completer and records usage.
func (m *Meter) Complete(ctx context.Context, req Request) (*Completion, error) {
	c, err := m.next.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.usage.LLMCalls++
	m.usage.InputTokens += c.InputTokens
	m.usage.OutputTokens += c.OutputTokens
	m.usage.CostUSD += c.CostUSD
	m.mu.Unlock()
	return c, nil
}

// Usage returns the totals so far.
func (m *Meter) Usage() model.Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}

// ExtractObject returns the span from the first '{' to the last '}' of text.
func ExtractObject(text string) (string, bool) {
	return span(text, "{", "}")
}

// ExtractArray returns the span from the first '[' to the last ']' of text.
func ExtractArray(text string) (string, bool) {
	return span(text, "[", "]")
}

func span(text, opening, closing string) (string, bool) {
	start := strings.Index(text, opening)
	end := strings.LastIndex(text, closing)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
