// Package app wires configuration into the adapters and use cases shared by
// the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	anthropicadapter "github.com/user/site-crawler/internal/adapter/anthropic"
	"github.com/user/site-crawler/internal/adapter/chromedp_renderer"
	"github.com/user/site-crawler/internal/adapter/filestore"
	"github.com/user/site-crawler/internal/adapter/postgres"
	redisadapter "github.com/user/site-crawler/internal/adapter/redis"
	"github.com/user/site-crawler/internal/proxy"
	"github.com/user/site-crawler/internal/repository"
	"github.com/user/site-crawler/internal/usecase"
	"github.com/user/site-crawler/pkg/config"
)

// Services holds the long-lived collaborators of a server or worker process.
type Services struct {
	Artifacts *filestore.ArtifactStoreImpl
	Manager   usecase.JobManager
	Runner    usecase.JobRunner

	closers []func()
}

// NewServices connects to Redis (required) and PostgreSQL (when configured)
// and builds the job manager and runner on top of them.
func NewServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Services, error) {
	s := &Services{}

	rdb, err := redisadapter.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, func() { _ = rdb.Close() })
	logger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))

	s.Artifacts, err = filestore.NewArtifactStore(cfg.OutputDir)
	if err != nil {
		s.Close()
		return nil, err
	}
	logger.Info("artifact store ready", zap.String("dir", s.Artifacts.Dir()))

	queueRepo := redisadapter.NewQueueRepo(rdb)
	statusRepo := redisadapter.NewJobStatusRepo(rdb, cfg.JobStatusTTL())
	visited := redisadapter.NewVisitedSets(rdb, cfg.JobStatusTTL())

	opts := []usecase.RunnerOption{usecase.WithCrawlWorkers(cfg.CrawlWorkers)}

	if cfg.PostgresURL != "" {
		db, err := postgres.NewPool(ctx, cfg.PostgresURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			s.Close()
			return nil, fmt.Errorf("prepare database: %w", err)
		}
		opts = append(opts, usecase.WithPageStore(postgres.NewPageRepo(db), postgres.NewFailedURLRepo(db)))
		logger.Info("PostgreSQL connection pool established")
	}

	if summarizer := NewSummarizer(cfg, logger); summarizer != nil {
		opts = append(opts, usecase.WithSummarizer(summarizer))
	}

	s.Manager = usecase.NewJobManager(statusRepo, queueRepo, cfg.DefaultMaxDepth, logger)
	s.Runner = usecase.NewJobRunner(NewRendererFactory(cfg, logger), visited, queueRepo, statusRepo, s.Artifacts, logger, opts...)
	return s, nil
}

// Close releases connections in reverse order of creation.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// NewRendererFactory builds the headless Chrome renderer factory.
func NewRendererFactory(cfg *config.Config, logger *zap.Logger) repository.RendererFactory {
	return chromedp_renderer.NewFactory(chromedp_renderer.Options{
		Timeout:  cfg.PageLoadTimeout(),
		Headless: cfg.ChromeHeadless,
		Identity: proxy.NewManager(cfg.ProxyList(), cfg.UserAgentList()),
		Logger:   logger,
	})
}

// NewSummarizer returns nil when no API key is configured.
func NewSummarizer(cfg *config.Config, logger *zap.Logger) repository.Summarizer {
	if cfg.AnthropicAPIKey == "" {
		logger.Info("ANTHROPIC_API_KEY not set, analysis disabled")
		return nil
	}
	return anthropicadapter.NewSummarizer(anthropicadapter.Options{
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.AnthropicModel,
		MaxTokens: int64(cfg.SummaryMaxTokens),
		MaxChars:  cfg.SummaryMaxChars,
		Logger:    logger,
	})
}
