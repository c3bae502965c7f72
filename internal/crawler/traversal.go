package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
	"github.com/user/site-crawler/pkg/metrics"
	"github.com/user/site-crawler/pkg/utils"
)

// Progress is reported after every fetch attempt.
type Progress struct {
	JobID   string
	URL     string
	Depth   int
	Visited int
	Pages   int
	Failed  bool
}

// Engine walks a site from its seed URL. Each call to Traverse owns its own
// VisitedSet and renderers; an Engine can run several jobs at once.
type Engine struct {
	renderers  repository.RendererFactory
	visited    repository.VisitedSetFactory
	workers    int
	logger     *zap.Logger
	onProgress func(Progress)
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many pages are rendered at once. With 1 (the default)
// pages are visited depth-first in document order; with more, each depth
// level is fanned out over a bounded pool with one renderer per worker.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithVisitedSets sets where each job keeps its visited URLs.
func WithVisitedSets(f repository.VisitedSetFactory) Option {
	return func(e *Engine) {
		e.visited = f
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithProgress registers a callback invoked after each fetch attempt.
// It may be called from several goroutines when workers > 1.
func WithProgress(fn func(Progress)) Option {
	return func(e *Engine) {
		e.onProgress = fn
	}
}

func NewEngine(renderers repository.RendererFactory, opts ...Option) *Engine {
	e := &Engine{
		renderers: renderers,
		visited:   MemoryVisitedSets{},
		workers:   1,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type frontierItem struct {
	url   string
	depth int
}

// traversal is the state of one job.
type traversal struct {
	jobID   string
	job     entity.CrawlJob
	policy  *Policy
	visited repository.VisitedSet
	result  *Result
}

// Traverse crawls job and returns every in-scope link discovered and every
// page rendered. Pages that fail to render are recorded in Result.Failures
// and do not stop the crawl. A returned *entity.JobFailure means the crawl
// could not run at all; a context error comes with whatever was collected.
func (e *Engine) Traverse(ctx context.Context, jobID string, job entity.CrawlJob) (*Result, error) {
	if job.MaxDepth < 0 {
		return nil, &entity.JobFailure{Message: fmt.Sprintf("invalid max depth %d", job.MaxDepth)}
	}
	seed, err := utils.NormalizeURL(job.SeedURL)
	if err != nil {
		return nil, &entity.JobFailure{Message: "invalid seed url", Err: err}
	}
	policy, err := NewPolicy(seed, job.AllowedDomains)
	if err != nil {
		return nil, &entity.JobFailure{Message: "invalid seed url", Err: err}
	}
	visited, err := e.visited.NewVisitedSet(ctx, jobID)
	if err != nil {
		return nil, &entity.JobFailure{Message: "could not create visited set", Err: err}
	}

	pool, err := e.openRenderers(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.close(e.logger)

	t := &traversal{
		jobID:   jobID,
		job:     job,
		policy:  policy,
		visited: visited,
		result:  newResult(),
	}

	e.logger.Info("crawl started",
		zap.String("job_id", jobID),
		zap.String("seed", seed),
		zap.Int("max_depth", job.MaxDepth),
		zap.Strings("allowed_domains", policy.AllowedDomains()),
		zap.Int("workers", e.workers),
	)

	root := frontierItem{url: seed, depth: 0}
	if e.workers == 1 {
		err = e.walkSequential(ctx, t, pool.renderers[0], root)
	} else {
		err = e.walkParallel(ctx, t, pool, root)
	}

	stored, lenErr := visited.Len(context.WithoutCancel(ctx))
	if lenErr != nil {
		e.logger.Warn("failed to read visited set size", zap.String("job_id", jobID), zap.Error(lenErr))
	}
	e.logger.Info("crawl finished",
		zap.String("job_id", jobID),
		zap.Int("visited", len(t.result.visited)),
		zap.Int64("visited_stored", stored),
		zap.Int("pages", len(t.result.pageOrder)),
		zap.Int("links", len(t.result.links)),
		zap.Int("failures", len(t.result.failures)),
		zap.Error(err),
	)
	return t.result, err
}

// walkSequential is an explicit-stack depth-first walk. Children are pushed
// in reverse so they pop in document order, which reproduces the visiting
// order of a recursive walk: the first occurrence of a URL wins.
func (e *Engine) walkSequential(ctx context.Context, t *traversal, r repository.Renderer, root frontierItem) error {
	stack := []frontierItem{root}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := e.visit(ctx, t, r, item)
		if err != nil {
			return err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

// walkParallel visits one depth level at a time, at most len(pool) pages at once.
// A URL reachable at several depths is visited at the shallowest one.
func (e *Engine) walkParallel(ctx context.Context, t *traversal, pool *rendererPool, root frontierItem) error {
	level := []frontierItem{root}
	for len(level) > 0 {
		next := make([][]frontierItem, len(level))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(len(pool.renderers))
		for i, item := range level {
			g.Go(func() error {
				r, err := pool.acquire(gctx)
				if err != nil {
					return err
				}
				defer pool.release(r)

				children, err := e.visit(gctx, t, r, item)
				next[i] = children
				return err
			})
		}
		if err := g.Wait(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		level = slices.Concat(next...)
	}
	return nil
}

// visit handles a single (url, depth) pair and returns the links to follow.
func (e *Engine) visit(ctx context.Context, t *traversal, r repository.Renderer, item frontierItem) ([]frontierItem, error) {
	if item.depth > t.job.MaxDepth {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fresh, err := t.visited.MarkVisited(ctx, item.url)
	if err != nil {
		return nil, &entity.JobFailure{Message: "visited set unavailable", Err: err}
	}
	if !fresh {
		return nil, nil
	}
	t.result.addVisited(item.url)

	log := e.logger.With(zap.String("url", item.url), zap.Int("depth", item.depth))
	log.Debug("fetching page")

	start := time.Now()
	markup, status, fetchErr := r.Fetch(ctx, item.url)
	elapsed := time.Since(start)

	if fetchErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		fe := asFetchError(item.url, fetchErr)
		metrics.RecordFetch(hostOf(item.url), elapsed.Seconds(), string(fe.Kind))
		log.Warn("failed to fetch page", zap.String("error_type", string(fe.Kind)), zap.Error(fe.Err))
		t.result.addFailure(FetchFailure{URL: item.url, Depth: item.depth, Err: fe})
		e.report(t, item, true)
		return nil, nil
	}
	metrics.RecordFetch(hostOf(item.url), elapsed.Seconds(), "")

	t.result.addPage(entity.PageRecord{
		URL:        item.url,
		Markup:     markup,
		StatusCode: status,
		Depth:      item.depth,
		FetchedAt:  time.Now(),
	})
	e.report(t, item, false)

	links, err := ExtractLinks(markup, item.url)
	if err != nil {
		log.Warn("failed to extract links", zap.Error(err))
		return nil, nil
	}

	var children []frontierItem
	found := 0
	for link := range links {
		found++
		if !t.policy.IsEligible(link) {
			continue
		}
		t.result.addLink(link)
		if item.depth < t.job.MaxDepth {
			children = append(children, frontierItem{url: link, depth: item.depth + 1})
		}
	}
	log.Debug("page processed",
		zap.Int("links_found", found),
		zap.Int("links_followed", len(children)),
		zap.Duration("duration", elapsed),
	)
	return children, nil
}

func (e *Engine) report(t *traversal, item frontierItem, failed bool) {
	if e.onProgress == nil {
		return
	}
	visited, pages := t.result.counts()
	e.onProgress(Progress{
		JobID:   t.jobID,
		URL:     item.url,
		Depth:   item.depth,
		Visited: visited,
		Pages:   pages,
		Failed:  failed,
	})
}

func asFetchError(url string, err error) *entity.FetchError {
	var fe *entity.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	kind := entity.FetchNavigation
	switch {
	case errors.Is(err, repository.ErrFetchTimeout), errors.Is(err, context.DeadlineExceeded):
		kind = entity.FetchTimeout
	case errors.Is(err, repository.ErrRendererCrashed):
		kind = entity.FetchCrash
	}
	return &entity.FetchError{URL: url, Kind: kind, Err: err}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}

// rendererPool holds one renderer per worker.
type rendererPool struct {
	renderers []repository.Renderer
	idle      chan repository.Renderer
}

func (e *Engine) openRenderers(ctx context.Context) (*rendererPool, error) {
	pool := &rendererPool{idle: make(chan repository.Renderer, e.workers)}
	for range e.workers {
		r, err := e.renderers.Open(ctx)
		if err != nil {
			pool.close(e.logger)
			return nil, &entity.JobFailure{Message: "renderer could not start", Err: err}
		}
		pool.renderers = append(pool.renderers, r)
		pool.idle <- r
	}
	return pool, nil
}

func (p *rendererPool) acquire(ctx context.Context) (repository.Renderer, error) {
	select {
	case r := <-p.idle:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *rendererPool) release(r repository.Renderer) {
	p.idle <- r
}

func (p *rendererPool) close(logger *zap.Logger) {
	for _, r := range p.renderers {
		if err := r.Close(); err != nil {
			logger.Warn("failed to close renderer", zap.Error(err))
		}
	}
}
