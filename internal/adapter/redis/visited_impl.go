package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/site-crawler/internal/repository"
	"github.com/user/site-crawler/pkg/utils"
)

const visitedKeyPrefix = "crawler:visited:"

// VisitedSetsImpl hands out one Redis set per job so that several workers,
// even in different processes, can share a job's visited URLs.
type VisitedSetsImpl struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVisitedSets creates a factory whose sets expire ttl after their last write.
func NewVisitedSets(client *redis.Client, ttl time.Duration) *VisitedSetsImpl {
	return &VisitedSetsImpl{client: client, ttl: ttl}
}

// NewVisitedSet returns the set for jobID, emptying whatever a previous run
// of the same job left behind.
func (f *VisitedSetsImpl) NewVisitedSet(ctx context.Context, jobID string) (repository.VisitedSet, error) {
	key := visitedKeyPrefix + jobID
	if err := f.client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("reset visited set %s: %w", jobID, err)
	}
	return &VisitedSetImpl{client: f.client, key: key, ttl: f.ttl}, nil
}

// VisitedSetImpl stores URL hashes in a single Redis set.
type VisitedSetImpl struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// MarkVisited relies on SADD being atomic: exactly one caller sees the member added.
func (s *VisitedSetImpl) MarkVisited(ctx context.Context, url string) (bool, error) {
	pipe := s.client.TxPipeline()
	added := pipe.SAdd(ctx, s.key, utils.HashURL(url))
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return added.Val() == 1, nil
}

// Len returns the number of URLs in the set.
func (s *VisitedSetImpl) Len(ctx context.Context) (int64, error) {
	return s.client.SCard(ctx, s.key).Result()
}
