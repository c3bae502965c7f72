package memory

import (
	"context"
	"sync"

	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
)

// JobStatusRepoImpl keeps job statuses in process memory.
type JobStatusRepoImpl struct {
	mu       sync.RWMutex
	statuses map[string]entity.JobStatus
}

func NewJobStatusRepo() *JobStatusRepoImpl {
	return &JobStatusRepoImpl{statuses: make(map[string]entity.JobStatus)}
}

func (r *JobStatusRepoImpl) Create(_ context.Context, status entity.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.statuses[status.ID]; ok {
		return repository.ErrJobExists
	}
	r.statuses[status.ID] = status
	return nil
}

func (r *JobStatusRepoImpl) Save(_ context.Context, status entity.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[status.ID] = status
	return nil
}

func (r *JobStatusRepoImpl) Find(_ context.Context, jobID string) (entity.JobStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status, ok := r.statuses[jobID]
	if !ok {
		return entity.JobStatus{}, repository.ErrJobNotFound
	}
	return status, nil
}
