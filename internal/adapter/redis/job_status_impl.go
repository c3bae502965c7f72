package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
)

const jobStatusKeyPrefix = "crawler:job:"

// JobStatusRepoImpl keeps job status records as JSON strings with a TTL.
type JobStatusRepoImpl struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJobStatusRepo creates a new instance of JobStatusRepoImpl.
func NewJobStatusRepo(client *redis.Client, ttl time.Duration) *JobStatusRepoImpl {
	return &JobStatusRepoImpl{client: client, ttl: ttl}
}

// Create claims the key with SET NX so two submitters can never hold the same ID.
func (r *JobStatusRepoImpl) Create(ctx context.Context, status entity.JobStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, jobStatusKeyPrefix+status.ID, payload, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrJobExists
	}
	return nil
}

// Save writes the status record, refreshing its expiry.
func (r *JobStatusRepoImpl) Save(ctx context.Context, status entity.JobStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, jobStatusKeyPrefix+status.ID, payload, r.ttl).Err()
}

// Find reads the status record for jobID.
func (r *JobStatusRepoImpl) Find(ctx context.Context, jobID string) (entity.JobStatus, error) {
	val, err := r.client.Get(ctx, jobStatusKeyPrefix+jobID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.JobStatus{}, repository.ErrJobNotFound
		}
		return entity.JobStatus{}, err
	}

	var status entity.JobStatus
	if err := json.Unmarshal(val, &status); err != nil {
		return entity.JobStatus{}, err
	}
	return status, nil
}
