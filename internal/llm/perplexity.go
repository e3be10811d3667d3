package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/cost"
	"github.com/sells-group/prospect-cli/pkg/perplexity"
)

// searchPhase is the only phase that benefits from live web results: the
// fallback asks for real companies, the others judge text already in the prompt.
const searchPhase = "fallback"

// directoryExclusions keeps listing and social sites out of fallback search.
var directoryExclusions = []string{"-linkedin.com", "-wikipedia.org", "-yelp.com", "-zoominfo.com", "-crunchbase.com"}

// PerplexityCompleter completes prompts with a Perplexity model.
type PerplexityCompleter struct {
	client perplexity.Client
	model  string
	calc   *cost.Calculator
}

// NewPerplexity creates a PerplexityCompleter. calc may be nil.
func NewPerplexity(client perplexity.Client, model string, calc *cost.Calculator) *PerplexityCompleter {
	return &PerplexityCompleter{client: client, model: model, calc: calc}
}

// Complete sends req as a single user message.
func (p *PerplexityCompleter) Complete(ctx context.Context, req Request) (*Completion, error) {
	temp, maxTokens := req.Temperature, req.MaxTokens
	chat := perplexity.ChatCompletionRequest{
		Model:       p.model,
		Messages:    []perplexity.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
	if req.Phase == searchPhase {
		chat.SearchDomainFilter = directoryExclusions
	} else {
		chat.DisableSearch = true
	}

	resp, err := p.client.ChatCompletion(ctx, chat)
	if err != nil {
		return nil, eris.Wrapf(err, "llm: perplexity %s", req.Phase)
	}

	c := &Completion{
		Text:         resp.Text(),
		Model:        p.model,
		InputTokens:  int64(resp.Usage.PromptTokens),
		OutputTokens: int64(resp.Usage.CompletionTokens),
	}
	if resp.Model != "" {
		c.Model = resp.Model
	}
	if p.calc != nil {
		c.CostUSD = p.calc.Perplexity(c.InputTokens, c.OutputTokens)
	}
	logCost(c, req.Phase)
	return c, nil
}
