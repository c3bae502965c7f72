package repository

import (
	"context"

	"github.com/user/site-crawler/internal/entity"
)

// PageRepository stores fetched pages and their extracted text.
type PageRepository interface {
	// SavePages stores all pages of a job in one transaction. texts is keyed by URL.
	SavePages(ctx context.Context, jobID string, pages []entity.PageRecord, texts map[string]string) error
	// FindByJob returns the stored pages of a job.
	FindByJob(ctx context.Context, jobID string) ([]entity.PageRecord, error)
}

// FailedURLRepository records URLs whose fetch failed during a job.
type FailedURLRepository interface {
	SaveAll(ctx context.Context, failed []entity.FailedURL) error
	FindByJob(ctx context.Context, jobID string) ([]entity.FailedURL, error)
}
