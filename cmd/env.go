package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/cost"
	"github.com/sells-group/prospect-cli/internal/finder"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/scrape"
	"github.com/sells-group/prospect-cli/internal/search"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/firecrawl"
	"github.com/sells-group/prospect-cli/pkg/google"
	"github.com/sells-group/prospect-cli/pkg/jina"
	"github.com/sells-group/prospect-cli/pkg/perplexity"
)

// discoveryEnv holds the initialized dependencies for discovery commands.
type discoveryEnv struct {
	Store   store.Store
	Service *finder.Service
}

// Close releases the store, if any.
func (e *discoveryEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initDiscovery wires clients, the finder and the run store from cfg.
func initDiscovery(ctx context.Context) (*discoveryEnv, error) {
	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if st != nil {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}

	calc := cost.NewCalculator(cfg.Rates())

	completer, err := initCompleter(cfg, calc)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	provider, err := initSearch(cfg)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	f := finder.New(cfg, completer, provider, initSiteScraper(cfg), calc)

	zap.L().Debug("discovery initialized",
		zap.String("llm", cfg.LLM.Provider),
		zap.String("search", provider.Name()),
		zap.String("store", cfg.Store.Driver),
	)

	return &discoveryEnv{
		Store:   st,
		Service: finder.NewService(f, st),
	}, nil
}

// initStore opens the configured run store. Driver "none" returns a nil
// store and runs are not persisted.
func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "sqlite", "":
		dsn := sc.DatabaseURL
		if dsn == "" {
			dsn = "prospects.db"
		}
		st, err := store.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		if sc.DatabaseURL == "" {
			return nil, eris.New("postgres store requires store.database_url (PROSPECT_STORE_DATABASE_URL)")
		}
		st, err := store.NewPostgres(ctx, sc.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "none":
		return nil, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}

func initCompleter(c *config.Config, calc *cost.Calculator) (llm.Completer, error) {
	switch c.LLM.Provider {
	case "anthropic", "":
		if c.Anthropic.Key == "" {
			return nil, eris.New("anthropic key is required (PROSPECT_ANTHROPIC_KEY)")
		}
		var opts []anthropic.Option
		if c.Anthropic.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(c.Anthropic.BaseURL))
		}
		return llm.NewAnthropic(anthropic.NewClient(c.Anthropic.Key, opts...), c.Anthropic.Model, calc), nil
	case "perplexity":
		if c.Perplexity.Key == "" {
			return nil, eris.New("perplexity key is required (PROSPECT_PERPLEXITY_KEY)")
		}
		client := perplexity.NewClient(c.Perplexity.Key,
			perplexity.WithBaseURL(c.Perplexity.BaseURL),
			perplexity.WithModel(c.Perplexity.Model),
		)
		return llm.NewPerplexity(client, c.Perplexity.Model, calc), nil
	default:
		return nil, eris.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
}

func initSearch(c *config.Config) (search.Provider, error) {
	timeout := time.Duration(c.Search.TimeoutSecs) * time.Second

	switch c.Search.Provider {
	case "google", "":
		if c.Google.Key == "" || c.Google.CX == "" {
			return nil, eris.New("google search needs google.key and google.cx (PROSPECT_GOOGLE_KEY, PROSPECT_GOOGLE_CX)")
		}
		opts := []google.Option{google.WithBaseURL(c.Google.BaseURL)}
		if timeout > 0 {
			opts = append(opts, google.WithHTTPClient(&http.Client{Timeout: timeout}))
		}
		return search.NewGoogleProvider(google.NewClient(c.Google.Key, c.Google.CX, opts...)), nil
	case "jina":
		// The collector owns 429 handling, so the client makes a single attempt.
		opts := []jina.Option{
			jina.WithBaseURL(c.Jina.BaseURL),
			jina.WithSearchBaseURL(c.Jina.SearchBaseURL),
			jina.WithRetry(1, 0),
		}
		if timeout > 0 {
			opts = append(opts, jina.WithHTTPClient(&http.Client{Timeout: timeout}))
		}
		return search.NewJinaProvider(jina.NewClient(c.Jina.Key, opts...)), nil
	default:
		return nil, eris.Errorf("unsupported search provider: %s", c.Search.Provider)
	}
}

// initSiteScraper chains the local fetcher with Jina Reader and, when a key
// is configured, Firecrawl. Pages thinner than the site minimum fall through
// to the next scraper.
func initSiteScraper(c *config.Config) *scrape.SiteScraper {
	timeout := time.Duration(c.Scrape.TimeoutSecs) * time.Second

	scrapers := []scrape.Scraper{
		scrape.NewLocalScraper(timeout),
		scrape.NewJinaAdapter(jina.NewClient(c.Jina.Key, jina.WithBaseURL(c.Jina.BaseURL))),
	}
	if c.Firecrawl.Key != "" {
		scrapers = append(scrapers, scrape.NewFirecrawlAdapter(
			firecrawl.NewClient(c.Firecrawl.Key, firecrawl.WithBaseURL(c.Firecrawl.BaseURL)),
		))
	}

	return scrape.NewSiteScraper(
		scrape.NewChainWithMin(c.Scrape.MinContentChars, scrapers...),
		c.Scrape.AboutPage,
		c.Scrape.MinContentChars,
	)
}
