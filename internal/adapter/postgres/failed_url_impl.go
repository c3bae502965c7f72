package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/site-crawler/internal/entity"
)

// FailedURLRepoImpl records the pages a job could not render.
type FailedURLRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedURLRepo creates a new instance of FailedURLRepoImpl.
func NewFailedURLRepo(db *pgxpool.Pool) *FailedURLRepoImpl {
	return &FailedURLRepoImpl{db: db}
}

// SaveAll inserts or updates one row per failed URL.
func (r *FailedURLRepoImpl) SaveAll(ctx context.Context, failed []entity.FailedURL) error {
	if len(failed) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, f := range failed {
		batch.Queue(`
			INSERT INTO failed_urls (job_id, url, depth, error_type, failure_reason)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (job_id, url) DO UPDATE SET
				depth = EXCLUDED.depth,
				error_type = EXCLUDED.error_type,
				failure_reason = EXCLUDED.failure_reason,
				created_at = NOW()`,
			f.JobID, f.URL, f.Depth, f.ErrorType, f.FailureReason)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// FindByJob retrieves the failures recorded for a job.
func (r *FailedURLRepoImpl) FindByJob(ctx context.Context, jobID string) ([]entity.FailedURL, error) {
	rows, err := r.db.Query(ctx, `
		SELECT job_id, url, depth, error_type, failure_reason
		FROM failed_urls
		WHERE job_id = $1
		ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failed []entity.FailedURL
	for rows.Next() {
		var fu entity.FailedURL
		if err := rows.Scan(&fu.JobID, &fu.URL, &fu.Depth, &fu.ErrorType, &fu.FailureReason); err != nil {
			return nil, err
		}
		failed = append(failed, fu)
	}
	return failed, rows.Err()
}
