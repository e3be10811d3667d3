// Package cost estimates provider spend for a discovery run.
package cost

// Rates holds per-provider pricing.
type Rates struct {
	Anthropic  map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityRate       `yaml:"perplexity" mapstructure:"perplexity"`
	Google     SearchRate           `yaml:"google" mapstructure:"google"`
	Jina       JinaRate             `yaml:"jina" mapstructure:"jina"`
}

// ModelRate holds per-model token pricing in USD per million tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// PerplexityRate holds Perplexity pricing: a request fee plus token rates.
type PerplexityRate struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
	Input    float64 `yaml:"input" mapstructure:"input"`
	Output   float64 `yaml:"output" mapstructure:"output"`
}

// SearchRate holds per-request search pricing in USD per thousand queries.
type SearchRate struct {
	PerThousand float64 `yaml:"per_thousand" mapstructure:"per_thousand"`
}

// JinaRate holds Jina pricing in USD per million tokens.
type JinaRate struct {
	PerMTok float64 `yaml:"per_mtok" mapstructure:"per_mtok"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Claude returns the cost of one Claude call. Unknown models cost 0.
func (c *Calculator) Claude(model string, input, output int64) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}
	return perMillion(input, rate.Input) + perMillion(output, rate.Output)
}

// Perplexity returns the cost of one Perplexity completion.
func (c *Calculator) Perplexity(input, output int64) float64 {
	r := c.rates.Perplexity
	return r.PerQuery + perMillion(input, r.Input) + perMillion(output, r.Output)
}

// GoogleSearch returns the cost of n Custom Search requests.
func (c *Calculator) GoogleSearch(n int) float64 {
	return float64(n) / 1000 * c.rates.Google.PerThousand
}

// Jina returns the cost of Jina token usage.
func (c *Calculator) Jina(tokens int64) float64 {
	return perMillion(tokens, c.rates.Jina.PerMTok)
}

func perMillion(tokens int64, rate float64) float64 {
	return float64(tokens) / 1e6 * rate
}

// DefaultRates returns list prices.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 1.00, Output: 5.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		Perplexity: PerplexityRate{PerQuery: 0.005, Input: 3.00, Output: 15.00},
		Google:     SearchRate{PerThousand: 5.00},
		Jina:       JinaRate{PerMTok: 0.02},
	}
}
