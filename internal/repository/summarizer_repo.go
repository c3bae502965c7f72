package repository

import "context"

// Summarizer turns the crawled plain text into a natural-language analysis.
type Summarizer interface {
	// Summarize receives the combined main text and, optionally, the text of an "about" page.
	Summarize(ctx context.Context, content, about string) (string, error)
}
