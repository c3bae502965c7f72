package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/site-crawler/internal/entity"
)

// PageRepoImpl stores rendered pages and their extracted text.
type PageRepoImpl struct {
	db *pgxpool.Pool
}

// NewPageRepo creates a new instance of PageRepoImpl.
func NewPageRepo(db *pgxpool.Pool) *PageRepoImpl {
	return &PageRepoImpl{db: db}
}

// SavePages writes all pages of a job within a single transaction. Pages are
// upserted so a rerun of the same job overwrites its earlier rows.
func (r *PageRepoImpl) SavePages(ctx context.Context, jobID string, pages []entity.PageRecord, texts map[string]string) error {
	if len(pages) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range pages {
		batch.Queue(`
			WITH page AS (
				INSERT INTO crawled_pages (job_id, url, depth, status_code, fetched_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (job_id, url) DO UPDATE SET
					depth = EXCLUDED.depth,
					status_code = EXCLUDED.status_code,
					fetched_at = EXCLUDED.fetched_at
				RETURNING id
			)
			INSERT INTO page_content (page_id, markup, content)
			SELECT id, $6, $7 FROM page
			ON CONFLICT (page_id) DO UPDATE SET
				markup = EXCLUDED.markup,
				content = EXCLUDED.content`,
			jobID, p.URL, p.Depth, p.StatusCode, p.FetchedAt, p.Markup, texts[p.URL])
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindByJob returns the stored pages of a job in fetch order.
func (r *PageRepoImpl) FindByJob(ctx context.Context, jobID string) ([]entity.PageRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.url, c.markup, p.status_code, p.depth, p.fetched_at
		FROM crawled_pages p
		JOIN page_content c ON c.page_id = p.id
		WHERE p.job_id = $1
		ORDER BY p.fetched_at, p.id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []entity.PageRecord
	for rows.Next() {
		var p entity.PageRecord
		if err := rows.Scan(&p.URL, &p.Markup, &p.StatusCode, &p.Depth, &p.FetchedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
