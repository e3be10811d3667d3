package domains

import (
	"net/url"
	"strings"
)

// reservedSecondLevel are second-level labels kept when collapsing a host to
// its registrable domain, so "acme.co.uk" is not reduced to "co.uk".
var reservedSecondLevel = map[string]bool{"co": true, "com": true}

// FromURL returns the registrable domain of a search result link: the host
// lowercased without "www.", collapsed to its last two labels unless the
// second-level label is reserved. It returns "" for unparseable links.
func FromURL(link string) string {
	host := hostOf(link)
	if host == "" {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) > 2 && !reservedSecondLevel[parts[len(parts)-2]] {
		host = strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// Normalize cleans a domain or URL supplied by a language model: scheme,
// path, port and "www." are stripped and the result is lowercased. Unlike
// FromURL it keeps every label.
func Normalize(raw string) string {
	return hostOf(raw)
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	return strings.TrimPrefix(host, "www.")
}

// Set tracks domains already seen during one discovery run. It is owned by a
// single run and is not safe for concurrent use.
type Set map[string]struct{}

// NewSet creates a Set seeded with domains.
func NewSet(domains ...string) Set {
	s := make(Set, len(domains))
	for _, d := range domains {
		s.Add(d)
	}
	return s
}

// Add records domain. It reports false if the domain was already present.
func (s Set) Add(domain string) bool {
	if _, ok := s[domain]; ok {
		return false
	}
	s[domain] = struct{}{}
	return true
}

// Has reports whether domain was recorded.
func (s Set) Has(domain string) bool {
	_, ok := s[domain]
	return ok
}
