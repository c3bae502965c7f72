package memory

import (
	"context"
	"sync"

	"github.com/user/site-crawler/internal/repository"
)

// QueueRepoImpl is an unbounded FIFO of job IDs for single-process runs.
type QueueRepoImpl struct {
	mu    sync.Mutex
	items []string
}

func NewQueueRepo() *QueueRepoImpl {
	return &QueueRepoImpl{}
}

func (q *QueueRepoImpl) Push(_ context.Context, jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, jobID)
	return nil
}

func (q *QueueRepoImpl) Pop(_ context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", repository.ErrQueueEmpty
	}
	jobID := q.items[0]
	q.items = q.items[1:]
	return jobID, nil
}

func (q *QueueRepoImpl) Size(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}
