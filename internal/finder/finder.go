// Package finder runs prospect discovery for an ICP: query generation,
// candidate collection, classification, fallback augmentation and ranking.
package finder

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/classify"
	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/cost"
	"github.com/sells-group/prospect-cli/internal/domains"
	"github.com/sells-group/prospect-cli/internal/fallback"
	"github.com/sells-group/prospect-cli/internal/icp"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/querygen"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/search"
)

// SiteScraper returns the combined text of a company's site.
// scrape.SiteScraper implements it.
type SiteScraper interface {
	ScrapeSite(ctx context.Context, domain string) (model.SiteContent, error)
}

// Finder holds the collaborators shared by every run. Each call to Find
// owns its own seen set, prospect list and usage meter.
type Finder struct {
	cfg      *config.Config
	llm      llm.Completer
	search   search.Provider
	scraper  SiteScraper
	costCalc *cost.Calculator
}

// New creates a Finder.
func New(cfg *config.Config, completer llm.Completer, provider search.Provider, scraper SiteScraper, calc *cost.Calculator) *Finder {
	if calc == nil {
		calc = cost.NewCalculator(cfg.Rates())
	}
	return &Finder{
		cfg:      cfg,
		llm:      completer,
		search:   provider,
		scraper:  scraper,
		costCalc: calc,
	}
}

// Find runs discovery for profile and always returns a result. Provider
// failures shrink the result instead of failing the run; a done ctx stops
// the current stage and returns what was found so far.
func (f *Finder) Find(ctx context.Context, profile model.ICP) *model.RunResult {
	start := time.Now()
	meter := llm.NewMeter(f.llm)
	provider := &countingProvider{Provider: f.search}

	r := &run{
		cfg:        f.cfg,
		icp:        profile,
		scraper:    f.scraper,
		classifier: classify.New(meter, f.cfg),
		fallback:   fallback.New(meter, f.cfg),
		have:       domains.NewSet(),
		result:     &model.RunResult{Prospects: []model.Prospect{}},
		log:        zap.L().With(zap.String("industry", profile.CustomerIndustry)),
	}
	r.log.Info("finder: starting discovery",
		zap.String("seller_type", string(profile.SellerBusinessType)),
		zap.String("geography", icp.GeographicSummary(profile)),
	)

	queries := querygen.New(meter, f.cfg).Generate(ctx, profile)
	r.result.Queries = queries

	candidates := search.NewCollector(provider, f.cfg.Search).Collect(ctx, queries, domains.NewSet())
	r.result.CandidatesFound = len(candidates)

	r.classifyCandidates(ctx, candidates)
	if len(r.prospects) < f.cfg.Discovery.FallbackFloor {
		r.augment(ctx)
	}
	r.rank()

	usage := meter.Usage()
	usage.SearchQueries = provider.calls
	if provider.Name() == "google" {
		usage.CostUSD += f.costCalc.GoogleSearch(provider.calls)
	}
	r.result.Usage = usage
	r.result.Duration = time.Since(start)
	r.logSummary()
	return r.result
}

// run is the state of one discovery run.
type run struct {
	cfg        *config.Config
	icp        model.ICP
	scraper    SiteScraper
	classifier *classify.Classifier
	fallback   *fallback.Generator

	have      domains.Set
	prospects []model.Prospect
	result    *model.RunResult
	log       *zap.Logger
}

func (r *run) target() bool {
	return len(r.prospects) >= r.cfg.Discovery.TargetProspects
}

// classifyCandidates classifies candidates in collection order up to the
// configured cap, stopping once the target prospect count is reached.
func (r *run) classifyCandidates(ctx context.Context, candidates []model.Candidate) {
	log := r.log.With(zap.String("phase", "classify"))
	d := r.cfg.Discovery
	pacer := resilience.NewPacer(time.Duration(d.ClassifyDelayMs) * time.Millisecond)

	limit := max(min(d.MaxClassify, len(candidates)), 0)
	log.Info("classifying candidates", zap.Int("candidates", len(candidates)), zap.Int("limit", limit))

	for i, c := range candidates[:limit] {
		if err := pacer.Wait(ctx); err != nil {
			log.Warn("classification interrupted", zap.Int("processed", i), zap.Error(err))
			return
		}
		r.result.Classified++

		site, err := r.scraper.ScrapeSite(ctx, c.Domain)
		if err != nil {
			log.Info("candidate skipped", zap.String("domain", c.Domain), zap.Error(err))
			r.result.Rejections.Add(model.RejectError)
			continue
		}

		v := r.classifier.Classify(ctx, c.Domain, site.Text, r.icp)
		if !classify.Accepted(v, d.AcceptThreshold) {
			reason := classify.Categorize(v, d.AcceptThreshold)
			r.result.Rejections.Add(reason)
			log.Info("candidate rejected",
				zap.String("domain", c.Domain),
				zap.String("reason", string(reason)),
				zap.Int("confidence", v.Confidence),
				zap.String("detail", v.RejectionReason),
			)
			continue
		}

		why := v.Reasoning
		if why == "" {
			why = "Matches ICP"
		}
		r.accept(model.Prospect{
			Name:       v.CompanyName,
			Domain:     c.Domain,
			Confidence: float64(v.Confidence) / 100,
			WhyGoodFit: why,
			WhatTheyDo: v.WhatTheyDo,
			Source:     model.SourceWebSearchVerified,
		})
		r.result.AcceptedFromWeb++
		log.Info("candidate accepted", zap.String("domain", c.Domain), zap.Int("confidence", v.Confidence))

		if r.target() {
			log.Info("target prospect count reached", zap.Int("prospects", len(r.prospects)))
			return
		}
	}
}

// augment asks the model for more companies and keeps the ones that pass
// the same scrape and classification checks as search candidates.
func (r *run) augment(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	log := r.log.With(zap.String("phase", "augment"))
	d := r.cfg.Discovery
	log.Info("too few prospects, generating fallback candidates",
		zap.Int("prospects", len(r.prospects)),
		zap.Int("floor", d.FallbackFloor),
	)

	proposed := r.fallback.Generate(ctx, r.icp, d.FallbackCount)
	r.result.FallbackProposed = len(proposed)
	pacer := resilience.NewPacer(time.Duration(d.VerifyDelayMs) * time.Millisecond)

	for _, fc := range proposed {
		if r.have.Has(fc.Domain) {
			continue
		}
		if err := pacer.Wait(ctx); err != nil {
			log.Warn("verification interrupted", zap.Error(err))
			return
		}

		p, ok := r.verify(ctx, fc)
		if !ok {
			log.Info("fallback candidate not verified", zap.String("domain", fc.Domain))
			continue
		}
		r.accept(p)
		r.result.FallbackVerified++
		log.Info("fallback candidate verified", zap.String("domain", fc.Domain), zap.Float64("confidence", p.Confidence))

		if r.target() {
			break
		}
	}
	log.Info("fallback verification complete", zap.Int("verified", r.result.FallbackVerified))
}

func (r *run) verify(ctx context.Context, fc model.FallbackCandidate) (model.Prospect, bool) {
	site, err := r.scraper.ScrapeSite(ctx, fc.Domain)
	if err != nil {
		r.log.Debug("fallback scrape failed", zap.String("domain", fc.Domain), zap.Error(err))
		return model.Prospect{}, false
	}

	v := r.classifier.Classify(ctx, fc.Domain, site.Text, r.icp)
	if !classify.Accepted(v, r.cfg.Discovery.AcceptThreshold) {
		return model.Prospect{}, false
	}

	name := v.CompanyName
	if name == "" || name == classify.NameFromDomain(fc.Domain) {
		name = fc.Name
	}
	why := v.Reasoning
	if why == "" {
		why = fc.Rationale
	}
	return model.Prospect{
		Name:       name,
		Domain:     fc.Domain,
		Confidence: float64(v.Confidence) / 100,
		WhyGoodFit: why,
		WhatTheyDo: v.WhatTheyDo,
		Source:     model.SourceLLMVerified,
	}, true
}

func (r *run) accept(p model.Prospect) {
	if !r.have.Add(p.Domain) {
		return
	}
	r.prospects = append(r.prospects, p)
}

// rank sorts prospects by descending confidence, keeping discovery order
// for ties, and truncates to the configured maximum.
func (r *run) rank() {
	sort.SliceStable(r.prospects, func(i, j int) bool {
		return r.prospects[i].Confidence > r.prospects[j].Confidence
	})
	if n := max(r.cfg.Discovery.MaxResults, 0); len(r.prospects) > n {
		r.prospects = r.prospects[:n]
	}
	r.result.Prospects = append(r.result.Prospects, r.prospects...)

	if n := len(r.prospects); n > 0 {
		var sum float64
		for _, p := range r.prospects {
			sum += p.Confidence
		}
		r.result.AverageConfidence = sum / float64(n)
	}
}

func (r *run) logSummary() {
	res := r.result
	r.log.Info("finder: discovery complete",
		zap.Int("prospects", len(res.Prospects)),
		zap.Int("queries", len(res.Queries)),
		zap.Int("candidates", res.CandidatesFound),
		zap.Int("processed", res.Classified),
		zap.Int("accepted_from_search", res.AcceptedFromWeb),
		zap.Int("fallback_verified", res.FallbackVerified),
		zap.Int("rejected", res.Rejections.Total()),
		zap.Int("rejected_not_buyer", res.Rejections.NotBuyer),
		zap.Int("rejected_wrong_industry", res.Rejections.WrongIndustry),
		zap.Int("rejected_wrong_geo", res.Rejections.WrongGeo),
		zap.Int("rejected_low_confidence", res.Rejections.LowConfidence),
		zap.Int("rejected_error", res.Rejections.Error),
		zap.Float64("avg_confidence", res.AverageConfidence),
		zap.Int("llm_calls", res.Usage.LLMCalls),
		zap.Float64("estimated_cost_usd", res.Usage.CostUSD),
		zap.Duration("elapsed", res.Duration),
	)
}

// countingProvider counts outbound search calls, retries included.
type countingProvider struct {
	search.Provider
	calls int
}

func (p *countingProvider) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	p.calls++
	return p.Provider.Search(ctx, query, limit)
}
