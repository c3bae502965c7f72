package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/crawler"
	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
	"github.com/user/site-crawler/internal/summary"
	"github.com/user/site-crawler/pkg/metrics"
)

const (
	noContentAnalysis = "Error: No content was found to analyze. The crawler may have been blocked or the page may be empty."
	cancelledMessage  = "crawl cancelled"

	progressStarted    = 10
	progressCrawlSpan  = 60
	progressProcessing = 75
)

// JobRunner defines the interface for executing crawl jobs.
type JobRunner interface {
	// ProcessJobFromQueue runs the next queued job, if any, and reports whether one was taken.
	ProcessJobFromQueue(ctx context.Context) (bool, error)
	// Run executes job to a terminal status and returns that status. The error
	// is non-nil exactly when the job failed.
	Run(ctx context.Context, jobID string, job entity.CrawlJob) (entity.JobStatus, error)
}

// RunnerOption configures the optional collaborators of a JobRunner.
type RunnerOption func(*jobRunnerUseCase)

// WithCrawlWorkers sets how many pages of one job are rendered at once.
func WithCrawlWorkers(n int) RunnerOption {
	return func(uc *jobRunnerUseCase) {
		uc.crawlWorkers = n
	}
}

// WithPageStore persists rendered pages and fetch failures.
func WithPageStore(pages repository.PageRepository, failed repository.FailedURLRepository) RunnerOption {
	return func(uc *jobRunnerUseCase) {
		uc.pageRepo = pages
		uc.failedURLRepo = failed
	}
}

// WithSummarizer enables the analysis step.
func WithSummarizer(s repository.Summarizer) RunnerOption {
	return func(uc *jobRunnerUseCase) {
		uc.summarizer = s
	}
}

type jobRunnerUseCase struct {
	engine        *crawler.Engine
	queueRepo     repository.QueueRepository
	statusRepo    repository.JobStatusRepository
	artifacts     repository.ArtifactStore
	pageRepo      repository.PageRepository
	failedURLRepo repository.FailedURLRepository
	summarizer    repository.Summarizer
	crawlWorkers  int
	logger        *zap.Logger

	mu     sync.Mutex
	active map[string]entity.JobStatus
}

// NewJobRunner creates a new JobRunner use case. It owns the traversal
// engine so that page-level progress ends up in the job status.
func NewJobRunner(
	renderers repository.RendererFactory,
	visited repository.VisitedSetFactory,
	queueRepo repository.QueueRepository,
	statusRepo repository.JobStatusRepository,
	artifacts repository.ArtifactStore,
	logger *zap.Logger,
	opts ...RunnerOption,
) JobRunner {
	uc := &jobRunnerUseCase{
		queueRepo:    queueRepo,
		statusRepo:   statusRepo,
		artifacts:    artifacts,
		crawlWorkers: 1,
		logger:       logger,
		active:       make(map[string]entity.JobStatus),
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.engine = crawler.NewEngine(renderers,
		crawler.WithWorkers(uc.crawlWorkers),
		crawler.WithVisitedSets(visited),
		crawler.WithLogger(logger),
		crawler.WithProgress(uc.onProgress),
	)
	return uc
}

func (uc *jobRunnerUseCase) ProcessJobFromQueue(ctx context.Context) (bool, error) {
	jobID, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			return false, nil
		}
		return false, fmt.Errorf("failed to pop job from queue: %w", err)
	}
	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.SetQueueSize(size)
	}

	status, err := uc.statusRepo.Find(ctx, jobID)
	if err != nil {
		err = fmt.Errorf("failed to load job %s: %w", jobID, err)
		uc.fail(ctx, entity.JobStatus{ID: jobID}, err)
		return true, err
	}
	if status.Job == nil {
		uc.fail(ctx, status, errors.New("queued job has no parameters"))
		return true, nil
	}

	uc.logger.Info("processing job from queue", zap.String("job_id", jobID), zap.String("url", status.Job.SeedURL))
	// Failures end up in the job status.
	_, _ = uc.Run(ctx, jobID, *status.Job)
	return true, nil
}

func (uc *jobRunnerUseCase) Run(ctx context.Context, jobID string, job entity.CrawlJob) (entity.JobStatus, error) {
	log := uc.logger.With(zap.String("job_id", jobID))
	start := time.Now()

	status := entity.JobStatus{
		ID:       jobID,
		Status:   entity.JobRunning,
		Progress: progressStarted,
		Message:  "Starting crawl...",
		Job:      &job,
	}
	uc.track(status)
	uc.save(ctx, status)

	res, err := uc.engine.Traverse(ctx, jobID, job)
	uc.untrack(jobID)
	if err != nil {
		return uc.fail(ctx, status, err)
	}

	links := res.Links()
	if err := uc.artifacts.Write(ctx, jobID+"_links.txt", FormatLinks(links)); err != nil {
		return uc.fail(ctx, status, fmt.Errorf("failed to write links file: %w", err))
	}
	status.LinksFile = jobID + "_links.txt"

	status.Progress = progressProcessing
	status.Message = "Processing content and generating analysis..."
	uc.save(ctx, status)

	pages := res.Pages()
	texts := crawler.ExtractAll(pages, job.Filter, log)
	uc.persist(ctx, log, jobID, pages, texts, res.Failures())

	mainText, aboutText := splitAbout(texts)
	status.Analysis, status.AnalysisFile = uc.analyze(ctx, log, jobID, mainText, aboutText)

	if err := uc.artifacts.Write(ctx, jobID+"_content.txt", FormatContent(len(pages), texts)); err != nil {
		return uc.fail(ctx, status, fmt.Errorf("failed to write content file: %w", err))
	}
	status.ContentFile = jobID + "_content.txt"

	status.Status = entity.JobCompleted
	status.Progress = 100
	status.Message = "Crawl completed"
	status.Pages = len(pages)
	status.Links = len(links)
	uc.save(ctx, status)
	metrics.RecordJob(entity.JobCompleted)

	log.Info("job completed",
		zap.Int("pages", len(pages)),
		zap.Int("links", len(links)),
		zap.Int("failures", len(res.Failures())),
		zap.Duration("duration", time.Since(start)),
	)
	return status, nil
}

func (uc *jobRunnerUseCase) fail(ctx context.Context, status entity.JobStatus, err error) (entity.JobStatus, error) {
	status.Status = entity.JobFailed
	status.Message = ""
	status.Error = err.Error()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status.Error = cancelledMessage
	}
	uc.save(ctx, status)
	metrics.RecordJob(entity.JobFailed)

	uc.logger.Error("job failed", zap.String("job_id", status.ID), zap.Error(err))
	return status, err
}

// persist stores pages and fetch failures when a page store is configured.
// Storage problems are logged and do not fail the job; the artifacts are
// the primary output.
func (uc *jobRunnerUseCase) persist(ctx context.Context, log *zap.Logger, jobID string, pages []entity.PageRecord, texts []entity.PageText, failures []crawler.FetchFailure) {
	if uc.pageRepo != nil {
		byURL := make(map[string]string, len(texts))
		for _, t := range texts {
			byURL[t.URL] = t.Text
		}
		if err := uc.pageRepo.SavePages(ctx, jobID, pages, byURL); err != nil {
			log.Warn("failed to store pages", zap.Error(err))
		}
	}
	if uc.failedURLRepo != nil && len(failures) > 0 {
		failed := make([]entity.FailedURL, 0, len(failures))
		for _, f := range failures {
			failed = append(failed, entity.FailedURL{
				JobID:         jobID,
				URL:           f.URL,
				Depth:         f.Depth,
				ErrorType:     string(f.Err.Kind),
				FailureReason: f.Err.Error(),
			})
		}
		if err := uc.failedURLRepo.SaveAll(ctx, failed); err != nil {
			log.Warn("failed to store failed urls", zap.Error(err))
		}
	}
}

// analyze returns the analysis text and, when one was written, the analysis file name.
func (uc *jobRunnerUseCase) analyze(ctx context.Context, log *zap.Logger, jobID, mainText, aboutText string) (string, string) {
	if strings.TrimSpace(mainText) == "" {
		log.Warn("no content found to analyze")
		return noContentAnalysis, ""
	}
	if uc.summarizer == nil {
		return "", ""
	}

	analysis, err := uc.summarizer.Summarize(ctx, mainText, aboutText)
	if err != nil {
		log.Warn("analysis failed", zap.Error(err))
		return "Error generating analysis: " + err.Error(), ""
	}

	name := jobID + "_analysis.txt"
	if err := uc.artifacts.Write(ctx, name, summary.FormatForDownload(analysis)); err != nil {
		log.Warn("failed to write analysis file", zap.Error(err))
		return analysis, ""
	}
	return analysis, name
}

func (uc *jobRunnerUseCase) track(status entity.JobStatus) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.active[status.ID] = status
}

func (uc *jobRunnerUseCase) untrack(jobID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.active, jobID)
}

// onProgress turns traversal progress into a running status update. Reports
// from parallel workers can arrive out of order; the stored progress only
// moves forward and is written under the lock so writes keep that order.
func (uc *jobRunnerUseCase) onProgress(p crawler.Progress) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	status, ok := uc.active[p.JobID]
	if !ok {
		return
	}
	progress := progressStarted + min(progressCrawlSpan, p.Visited)
	if progress <= status.Progress && p.Pages <= status.Pages {
		return
	}
	status.Progress = max(status.Progress, progress)
	status.Pages = max(status.Pages, p.Pages)
	status.Message = fmt.Sprintf("Crawling website... %d pages fetched", status.Pages)
	uc.active[p.JobID] = status

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	uc.save(ctx, status)
}

// save records status. The write survives cancellation of ctx so that a
// cancelled job still reaches its terminal state.
func (uc *jobRunnerUseCase) save(ctx context.Context, status entity.JobStatus) {
	status.UpdatedAt = time.Now()
	if err := uc.statusRepo.Save(context.WithoutCancel(ctx), status); err != nil {
		uc.logger.Error("failed to save job status",
			zap.String("job_id", status.ID),
			zap.String("status", status.Status),
			zap.Error(err),
		)
	}
}

// splitAbout separates the last page whose URL mentions "about" from the
// rest. Pages without text are left out of both.
func splitAbout(texts []entity.PageText) (mainText, aboutText string) {
	var main []string
	for _, t := range texts {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		if strings.Contains(strings.ToLower(t.URL), "about") {
			aboutText = t.Text
			continue
		}
		main = append(main, t.Text)
	}
	return strings.Join(main, "\n\n"), aboutText
}

// FormatLinks renders the links artifact.
func FormatLinks(links []string) string {
	var b strings.Builder
	b.WriteString("\nScraped Links:\n")
	for _, l := range links {
		b.WriteString(l)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal unique links found: %d", len(links))
	return b.String()
}

// FormatContent renders the content dump. pageCount is the number of pages
// fetched, which may exceed len(texts) when extraction skipped some.
func FormatContent(pageCount int, texts []entity.PageText) string {
	heavy := strings.Repeat("=", 80)
	light := strings.Repeat("-", 80)

	var b strings.Builder
	fmt.Fprintf(&b, "Combined content from %d pages\n", pageCount)
	b.WriteString(heavy + "\n\n")
	for _, t := range texts {
		b.WriteString("URL: " + t.URL + "\n")
		b.WriteString(light + "\n")
		b.WriteString(t.Text)
		b.WriteString("\n\n")
		b.WriteString(heavy + "\n\n")
	}
	return b.String()
}
