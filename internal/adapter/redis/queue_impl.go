package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/user/site-crawler/internal/repository"
)

const crawlQueueKey = "crawler:jobs"

// QueueRepoImpl is a FIFO of job IDs kept in a Redis list.
type QueueRepoImpl struct {
	client *redis.Client
}

// NewQueueRepo creates a new instance of QueueRepoImpl.
func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client}
}

// Push adds a job ID to the left side of the list.
func (r *QueueRepoImpl) Push(ctx context.Context, jobID string) error {
	return r.client.LPush(ctx, crawlQueueKey, jobID).Err()
}

// Pop removes and returns the oldest job ID from the right side of the list.
func (r *QueueRepoImpl) Pop(ctx context.Context) (string, error) {
	jobID, err := r.client.RPop(ctx, crawlQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrQueueEmpty
	}
	return jobID, err
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, crawlQueueKey).Result()
}
