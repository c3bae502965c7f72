package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
	"github.com/user/site-crawler/pkg/metrics"
	"github.com/user/site-crawler/pkg/utils"
)

var ErrInvalidRequest = errors.New("invalid crawl request")

// JobRequest is a crawl request as submitted by a caller. AllowedDomains and
// Filters are comma-separated lists; MaxDepth nil means the configured default.
type JobRequest struct {
	URL            string
	MaxDepth       *int
	AllowedDomains string
	Filters        string
}

// JobManager defines the interface for submitting jobs and checking on them.
type JobManager interface {
	Submit(ctx context.Context, req JobRequest) (string, error)
	GetStatus(ctx context.Context, jobID string) (entity.JobStatus, error)
}

type jobManagerUseCase struct {
	statusRepo   repository.JobStatusRepository
	queueRepo    repository.QueueRepository
	defaultDepth int
	logger       *zap.Logger
	now          func() time.Time
}

// NewJobManager creates a new JobManager use case.
func NewJobManager(
	statusRepo repository.JobStatusRepository,
	queueRepo repository.QueueRepository,
	defaultDepth int,
	logger *zap.Logger,
) JobManager {
	return &jobManagerUseCase{
		statusRepo:   statusRepo,
		queueRepo:    queueRepo,
		defaultDepth: defaultDepth,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit validates req, records the job as pending and queues it.
func (uc *jobManagerUseCase) Submit(ctx context.Context, req JobRequest) (string, error) {
	job, err := uc.buildJob(req)
	if err != nil {
		return "", err
	}

	jobID, err := uc.createJob(ctx, job)
	if err != nil {
		return "", err
	}
	if err := uc.queueRepo.Push(ctx, jobID); err != nil {
		return "", fmt.Errorf("failed to queue job %s: %w", jobID, err)
	}

	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.SetQueueSize(size)
	}
	uc.logger.Info("crawl job submitted",
		zap.String("job_id", jobID),
		zap.String("url", job.SeedURL),
		zap.Int("max_depth", job.MaxDepth),
		zap.String("filters", job.Filter.String()),
	)
	return jobID, nil
}

// GetStatus returns the job's status, or a status of "not_found" for unknown IDs.
func (uc *jobManagerUseCase) GetStatus(ctx context.Context, jobID string) (entity.JobStatus, error) {
	status, err := uc.statusRepo.Find(ctx, jobID)
	if errors.Is(err, repository.ErrJobNotFound) {
		return entity.JobStatus{ID: jobID, Status: entity.JobNotFound}, nil
	}
	if err != nil {
		return entity.JobStatus{}, err
	}
	return status, nil
}

func (uc *jobManagerUseCase) buildJob(req JobRequest) (entity.CrawlJob, error) {
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		return entity.CrawlJob{}, fmt.Errorf("%w: URL is required", ErrInvalidRequest)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return entity.CrawlJob{}, fmt.Errorf("%w: invalid URL format", ErrInvalidRequest)
	}

	depth := uc.defaultDepth
	if req.MaxDepth != nil {
		depth = *req.MaxDepth
	}
	if depth < 0 {
		return entity.CrawlJob{}, fmt.Errorf("%w: max_depth must not be negative", ErrInvalidRequest)
	}

	var domains []string
	for _, d := range strings.Split(req.AllowedDomains, ",") {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}

	return entity.CrawlJob{
		SeedURL:        raw,
		MaxDepth:       depth,
		AllowedDomains: domains,
		Filter:         entity.ParseTagFilter(req.Filters),
		CreatedAt:      uc.now(),
	}, nil
}

// createJob records job as pending under "<site>_<unix seconds>", appending a
// counter when another job already holds that ID. The status store claims
// each ID atomically, so concurrent submissions never share one.
func (uc *jobManagerUseCase) createJob(ctx context.Context, job entity.CrawlJob) (string, error) {
	base := utils.SafeName(job.SeedURL) + "_" + strconv.FormatInt(uc.now().Unix(), 10)
	id := base
	for n := 2; ; n++ {
		err := uc.statusRepo.Create(ctx, entity.JobStatus{
			ID:        id,
			Status:    entity.JobPending,
			Message:   "Waiting for a worker...",
			Job:       &job,
			UpdatedAt: uc.now(),
		})
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, repository.ErrJobExists) {
			return "", fmt.Errorf("failed to record job %s: %w", id, err)
		}
		id = base + "_" + strconv.Itoa(n)
	}
}
