package parser

import (
	"net/url"
	"strings"
)

// Registry picks the extractor whose profile hosts match a product URL.
type Registry struct {
	extractors []*ShopParser
	fallback   *ShopParser
}

func NewRegistry(defaultProfile SiteProfile, profiles ...SiteProfile) *Registry {
	r := &Registry{
		fallback: NewShopParser(defaultProfile),
	}
	for _, p := range profiles {
		r.extractors = append(r.extractors, NewShopParser(p))
	}
	return r
}

// For returns the first extractor registered for the URL's host, or the
// default one.
func (r *Registry) For(rawURL string) Extractor {
	host := hostOf(rawURL)
	if host == "" {
		return r.fallback
	}

	for _, e := range r.extractors {
		if matchesHost(host, e.profile.Hosts) {
			return e
		}
	}

	return r.fallback
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.extractors)+1)
	for _, e := range r.extractors {
		names = append(names, e.Name())
	}
	return append(names, r.fallback.Name())
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func matchesHost(host string, hosts []string) bool {
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
