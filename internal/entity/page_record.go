package entity

import "time"

// PageRecord is produced once per distinct URL that was successfully rendered.
type PageRecord struct {
	URL        string
	Markup     string
	StatusCode int // main document status reported by the browser, 0 if unknown
	Depth      int
	FetchedAt  time.Time
}

// PageText is a PageRecord after content extraction.
type PageText struct {
	URL  string
	Text string
}
