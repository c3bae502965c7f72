package request

// SubmitCrawlRequest is the body of POST /api/crawl. AllowedDomains and
// Filters are comma-separated, e.g. "example.com,blog.example.com" and "p,h".
type SubmitCrawlRequest struct {
	URL            string `json:"url"`
	MaxDepth       *int   `json:"max_depth,omitempty"`
	AllowedDomains string `json:"allowed_domains,omitempty"`
	Filters        string `json:"filters,omitempty"`
}
