// Package domains validates and normalizes company domains harvested from
// search results and language-model suggestions.
package domains

import "strings"

// Blocklist holds substrings of domains that never belong to a prospective
// buyer: social networks, news outlets, review and business directories,
// developer platforms, reference sites, job boards and academic publishers.
var Blocklist = []string{
	// Social.
	"linkedin.com", "facebook.com", "twitter.com", "instagram.com",
	"youtube.com", "tiktok.com", "pinterest.com", "x.com",
	// News.
	"reuters.com", "bloomberg.com", "forbes.com", "techcrunch.com",
	"businessinsider.com", "cnbc.com", "wsj.com", "nytimes.com",
	"cnn.com", "bbc.com", "foxnews.com",
	// Reviews and listings.
	"crunchbase.com", "glassdoor.com", "indeed.com", "yelp.com",
	"g2.com", "capterra.com", "trustpilot.com", "bbb.org",
	"yellowpages.com", "manta.com",
	// Developer platforms.
	"github.com", "gitlab.com", "stackoverflow.com", "npmjs.com",
	// Reference.
	"wikipedia.org", "medium.com", "quora.com", "reddit.com",
	// Job boards.
	"greenhouse.io", "lever.co", "workday.com", "jobvite.com",
	"ziprecruiter.com", "monster.com", "careerbuilder.com",
	// Academic.
	"sciencedirect.com", "researchgate.net", "academia.edu",
	"springer.com", "elsevier.com",
	// Agency directories.
	"clutch.co", "goodfirms.co", "toptal.com",
}

// AllowedTLDs lists the suffixes a business domain may end with.
var AllowedTLDs = []string{
	".com", ".io", ".co", ".net", ".org", ".ai", ".tech",
	".us", ".ca", ".uk", ".de", ".in", ".biz",
}

var institutionalTLDs = []string{".gov", ".edu", ".mil"}

const minDomainLen = 4

// IsValidBusinessDomain reports whether domain could belong to a commercial
// company worth scraping. It performs no I/O.
func IsValidBusinessDomain(domain string) bool {
	if len(domain) < minDomainLen {
		return false
	}
	d := strings.ToLower(domain)

	for _, blocked := range Blocklist {
		if strings.Contains(d, blocked) {
			return false
		}
	}
	if hasAnySuffix(d, institutionalTLDs) {
		return false
	}
	return hasAnySuffix(d, AllowedTLDs)
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
