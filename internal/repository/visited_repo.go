package repository

import "context"

// VisitedSet deduplicates URLs within one crawl job.
type VisitedSet interface {
	// MarkVisited inserts url and reports whether it was newly added.
	// Check and insert happen atomically.
	MarkVisited(ctx context.Context, url string) (bool, error)
	// Len returns the number of URLs visited so far.
	Len(ctx context.Context) (int64, error)
}

// VisitedSetFactory hands each job its own independent VisitedSet.
type VisitedSetFactory interface {
	NewVisitedSet(ctx context.Context, jobID string) (VisitedSet, error)
}
