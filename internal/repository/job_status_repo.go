package repository

import (
	"context"

	"github.com/user/site-crawler/internal/entity"
)

// JobStatusRepository persists the observable state of crawl jobs.
type JobStatusRepository interface {
	// Create stores status only if no record exists for its ID yet and
	// returns ErrJobExists otherwise.
	Create(ctx context.Context, status entity.JobStatus) error
	Save(ctx context.Context, status entity.JobStatus) error
	// Find returns ErrJobNotFound for unknown IDs.
	Find(ctx context.Context, jobID string) (entity.JobStatus, error)
}
