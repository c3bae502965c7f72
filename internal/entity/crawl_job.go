package entity

import "time"

// CrawlJob is immutable for the lifetime of one crawl.
type CrawlJob struct {
	SeedURL        string    `json:"seed_url"`
	MaxDepth       int       `json:"max_depth"`
	AllowedDomains []string  `json:"allowed_domains,omitempty"` // empty means same host as seed
	Filter         TagFilter `json:"filter,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
