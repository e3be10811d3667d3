// Package search turns search-engine queries into deduplicated candidate
// company domains.
package search

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/pkg/google"
	"github.com/sells-group/prospect-cli/pkg/jina"
)

// Result is one ranked web result.
type Result struct {
	Title   string
	Link    string
	Snippet string
}

// Provider runs a single web search. Errors for non-200 responses must carry
// the HTTP status (resilience.HTTPStatus) so rate limiting can be detected.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, max int) ([]Result, error)
}

// GoogleProvider searches with the Custom Search JSON API.
type GoogleProvider struct {
	client google.Client
}

// NewGoogleProvider wraps a Custom Search client.
func NewGoogleProvider(client google.Client) *GoogleProvider {
	return &GoogleProvider{client: client}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string { return "google" }

// Search implements Provider.
func (p *GoogleProvider) Search(ctx context.Context, query string, max int) ([]Result, error) {
	resp, err := p.client.CustomSearch(ctx, query, max)
	if err != nil {
		return nil, eris.Wrap(err, "search: google")
	}
	out := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, Result{Title: item.Title, Link: item.Link, Snippet: item.Snippet})
	}
	return out, nil
}

// JinaProvider searches with Jina Search.
type JinaProvider struct {
	client jina.Client
}

// NewJinaProvider wraps a Jina client. The client should be built without
// retries so the collector's rate-limit policy applies.
func NewJinaProvider(client jina.Client) *JinaProvider {
	return &JinaProvider{client: client}
}

// Name implements Provider.
func (p *JinaProvider) Name() string { return "jina" }

// Search implements Provider.
func (p *JinaProvider) Search(ctx context.Context, query string, max int) ([]Result, error) {
	resp, err := p.client.Search(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "search: jina")
	}
	out := make([]Result, 0, len(resp.Data))
	for _, r := range resp.Data {
		if max > 0 && len(out) == max {
			break
		}
		out = append(out, Result{Title: r.Title, Link: r.URL, Snippet: r.Description})
	}
	return out, nil
}
