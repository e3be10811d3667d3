package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// ErrInsufficientContent is returned when a site yields too little text to
// classify.
var ErrInsufficientContent = eris.New("scrape: insufficient content")

var aboutPaths = []string{"/about", "/about-us"}

// SiteScraper combines a company's homepage with its about page.
type SiteScraper struct {
	scraper   Scraper
	aboutPage bool
	minChars  int
}

// NewSiteScraper creates a SiteScraper. When aboutPage is set, the first
// reachable about page is appended to the homepage text.
func NewSiteScraper(s Scraper, aboutPage bool, minChars int) *SiteScraper {
	return &SiteScraper{scraper: s, aboutPage: aboutPage, minChars: minChars}
}

// ScrapeSite fetches https://domain and, optionally, its about page. It
// returns ErrInsufficientContent when the combined text is shorter than the
// configured minimum.
func (s *SiteScraper) ScrapeSite(ctx context.Context, domain string) (model.SiteContent, error) {
	site := model.SiteContent{Domain: domain}
	base := "https://" + domain

	home, err := s.scraper.Scrape(ctx, base)
	if err != nil {
		return site, eris.Wrapf(err, "scrape: homepage %s", domain)
	}

	var parts []string
	add := func(r *Result) {
		text := strings.TrimSpace(r.Page.Markdown)
		if text == "" {
			return
		}
		if r.Page.Title != "" {
			text = r.Page.Title + "\n" + text
		}
		parts = append(parts, text)
		site.Pages = append(site.Pages, r.Page.URL)
	}
	add(home)
	site.Source = home.Source

	if s.aboutPage {
		for _, p := range aboutPaths {
			about, err := s.scraper.Scrape(ctx, base+p)
			if err != nil {
				zap.L().Debug("scrape: about page unavailable",
					zap.String("domain", domain),
					zap.String("path", p),
					zap.Error(err),
				)
				continue
			}
			add(about)
			break
		}
	}

	site.Text = strings.Join(parts, "\n\n")
	if site.Length() < s.minChars {
		return site, eris.Wrapf(ErrInsufficientContent, "scrape: %s has %d chars", domain, site.Length())
	}
	return site, nil
}
