package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/cost"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

// AnthropicCompleter completes prompts with a Claude model.
type AnthropicCompleter struct {
	client anthropic.Client
	model  string
	calc   *cost.Calculator
}

// NewAnthropic creates an AnthropicCompleter. calc may be nil.
func NewAnthropic(client anthropic.Client, model string, calc *cost.Calculator) *AnthropicCompleter {
	return &AnthropicCompleter{client: client, model: model, calc: calc}
}

// Complete sends req as a single user message.
func (a *AnthropicCompleter) Complete(ctx context.Context, req Request) (*Completion, error) {
	temp := req.Temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   int64(req.MaxTokens),
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "llm: anthropic %s", req.Phase)
	}

	c := &Completion{
		Text:         resp.Text(),
		Model:        a.model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}
	if a.calc != nil {
		c.CostUSD = a.calc.Claude(a.model, c.InputTokens, c.OutputTokens)
	}
	logCost(c, req.Phase)
	return c, nil
}
