package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Policy decides which discovered links are in scope for a job.
// The allow-list is resolved once, when the policy is built.
type Policy struct {
	allowed []string
}

// NewPolicy builds the policy for a job. An empty allow-list falls back to
// the seed URL's host.
func NewPolicy(seedURL string, allowedDomains []string) (*Policy, error) {
	var allowed []string
	for _, d := range allowedDomains {
		if d = strings.TrimSpace(d); d != "" {
			allowed = append(allowed, d)
		}
	}
	if len(allowed) == 0 {
		seed, err := url.Parse(seedURL)
		if err != nil {
			return nil, fmt.Errorf("parse seed url: %w", err)
		}
		if seed.Host == "" {
			return nil, fmt.Errorf("seed url %q has no host", seedURL)
		}
		allowed = []string{seed.Host}
	}
	return &Policy{allowed: allowed}, nil
}

// AllowedDomains returns the resolved allow-list.
func (p *Policy) AllowedDomains() []string {
	return append([]string(nil), p.allowed...)
}

// IsEligible reports whether rawURL may be added to the link set and followed.
func (p *Policy) IsEligible(rawURL string) bool {
	return IsEligible(rawURL, p.allowed)
}

// IsEligible requires an http(s) scheme and a host equal to, or a subdomain
// of, one of allowedDomains. Hosts are compared as plain strings.
func IsEligible(rawURL string, allowedDomains []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Host
	if host == "" {
		return false
	}
	for _, d := range allowedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
