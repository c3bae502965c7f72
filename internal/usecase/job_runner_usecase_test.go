package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/adapter/memory"
	"github.com/user/site-crawler/internal/crawler"
	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
	"github.com/user/site-crawler/internal/summary"
)

var acmeSite = map[string]string{
	"https://acme.test/": `<html><body>
<h1>Acme</h1>
<p>We build widgets.</p>
<a href="/about">About</a>
<a href="/products">Products</a>
<a href="/missing">Missing</a>
</body></html>`,
	"https://acme.test/about":    `<html><body><p>About us: founded 1990.</p></body></html>`,
	"https://acme.test/products": `<html><body><p>Our products are great.</p><script>track()</script></body></html>`,
}

type runnerFixture struct {
	runner    JobRunner
	statuses  *memory.JobStatusRepoImpl
	queue     *memory.QueueRepoImpl
	artifacts *memArtifacts
}

func newRunnerFixture(t *testing.T, site *fakeSite, opts ...RunnerOption) runnerFixture {
	t.Helper()
	f := runnerFixture{
		statuses:  memory.NewJobStatusRepo(),
		queue:     memory.NewQueueRepo(),
		artifacts: newMemArtifacts(),
	}
	f.runner = NewJobRunner(site, crawler.MemoryVisitedSets{}, f.queue, f.statuses, f.artifacts, zap.NewNop(), opts...)
	return f
}

func acmeJob() entity.CrawlJob {
	return entity.CrawlJob{
		SeedURL:  "https://acme.test/",
		MaxDepth: 1,
		Filter:   entity.TagFilter{entity.TagParagraph},
	}
}

func TestRun_CompletesWithArtifacts(t *testing.T) {
	sum := &fakeSummarizer{answer: "1. Company Description\nAcme builds widgets."}
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite}, WithSummarizer(sum))

	status, err := f.runner.Run(context.Background(), "acme_1", acmeJob())
	require.NoError(t, err)

	assert.Equal(t, entity.JobCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 3, status.Pages)
	assert.Equal(t, 3, status.Links)
	assert.Equal(t, "acme_1_links.txt", status.LinksFile)
	assert.Equal(t, "acme_1_content.txt", status.ContentFile)
	assert.Equal(t, "acme_1_analysis.txt", status.AnalysisFile)
	assert.Equal(t, sum.answer, status.Analysis)

	stored, err := f.statuses.Find(context.Background(), "acme_1")
	require.NoError(t, err)
	assert.Equal(t, entity.JobCompleted, stored.Status)

	links, ok := f.artifacts.get("acme_1_links.txt")
	require.True(t, ok)
	assert.Equal(t, "\nScraped Links:\n"+
		"https://acme.test/about\n"+
		"https://acme.test/products\n"+
		"https://acme.test/missing\n"+
		"\nTotal unique links found: 3", links)

	content, ok := f.artifacts.get("acme_1_content.txt")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(content, "Combined content from 3 pages\n"+strings.Repeat("=", 80)+"\n\n"))
	assert.Contains(t, content, "URL: https://acme.test/products\n"+strings.Repeat("-", 80)+"\nOur products are great.\n\n")
	assert.NotContains(t, content, "track()")

	analysis, ok := f.artifacts.get("acme_1_analysis.txt")
	require.True(t, ok)
	assert.Equal(t, summary.FormatForDownload(sum.answer), analysis)

	assert.Equal(t, 1, sum.calls)
	assert.Equal(t, "We build widgets.\n\nOur products are great.", sum.content)
	assert.Equal(t, "About us: founded 1990.", sum.about)
}

func TestRun_WithoutSummarizer(t *testing.T) {
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite})

	status, err := f.runner.Run(context.Background(), "acme_1", acmeJob())
	require.NoError(t, err)
	assert.Equal(t, entity.JobCompleted, status.Status)
	assert.Empty(t, status.Analysis)
	assert.Empty(t, status.AnalysisFile)

	_, ok := f.artifacts.get("acme_1_analysis.txt")
	assert.False(t, ok)
}

func TestRun_NoContentToAnalyze(t *testing.T) {
	sum := &fakeSummarizer{answer: "unused"}
	site := &fakeSite{pages: map[string]string{
		"https://empty.test/": `<html><body><div>no paragraphs here</div></body></html>`,
	}}
	f := newRunnerFixture(t, site, WithSummarizer(sum))

	job := entity.CrawlJob{SeedURL: "https://empty.test/", MaxDepth: 0, Filter: entity.TagFilter{entity.TagParagraph}}
	status, err := f.runner.Run(context.Background(), "empty_1", job)
	require.NoError(t, err)

	assert.Equal(t, entity.JobCompleted, status.Status)
	assert.Equal(t, noContentAnalysis, status.Analysis)
	assert.Empty(t, status.AnalysisFile)
	assert.Zero(t, sum.calls)
}

func TestRun_SummarizerErrorIsNotJobFailure(t *testing.T) {
	sum := &fakeSummarizer{err: errors.New("rate limited")}
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite}, WithSummarizer(sum))

	status, err := f.runner.Run(context.Background(), "acme_1", acmeJob())
	require.NoError(t, err)
	assert.Equal(t, entity.JobCompleted, status.Status)
	assert.Equal(t, "Error generating analysis: rate limited", status.Analysis)
	assert.Empty(t, status.AnalysisFile)
}

func TestRun_PersistsPagesAndFailures(t *testing.T) {
	pages := &fakePageStore{}
	failed := &fakeFailedStore{}
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite}, WithPageStore(pages, failed))

	_, err := f.runner.Run(context.Background(), "acme_1", acmeJob())
	require.NoError(t, err)

	stored, err := pages.FindByJob(context.Background(), "acme_1")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	assert.Equal(t, "We build widgets.", pages.texts["https://acme.test/"])

	failures, err := failed.FindByJob(context.Background(), "acme_1")
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "https://acme.test/missing", failures[0].URL)
	assert.Equal(t, string(entity.FetchNavigation), failures[0].ErrorType)
	assert.Equal(t, 1, failures[0].Depth)
	assert.Equal(t, "acme_1", failures[0].JobID)
}

func TestRun_RendererUnavailableFailsJob(t *testing.T) {
	site := &fakeSite{openErr: repository.ErrRendererUnavailable}
	f := newRunnerFixture(t, site)

	status, err := f.runner.Run(context.Background(), "acme_1", acmeJob())
	require.Error(t, err)

	var jf *entity.JobFailure
	assert.ErrorAs(t, err, &jf)
	assert.Equal(t, entity.JobFailed, status.Status)
	assert.Contains(t, status.Error, "renderer could not start")

	stored, err := f.statuses.Find(context.Background(), "acme_1")
	require.NoError(t, err)
	assert.Equal(t, entity.JobFailed, stored.Status)
	assert.True(t, stored.Terminal())
}

func TestRun_CancelledJobFails(t *testing.T) {
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := f.runner.Run(ctx, "acme_1", acmeJob())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, entity.JobFailed, status.Status)
	assert.Equal(t, cancelledMessage, status.Error)

	stored, err := f.statuses.Find(context.Background(), "acme_1")
	require.NoError(t, err)
	assert.Equal(t, cancelledMessage, stored.Error)
}

func TestProcessJobFromQueue(t *testing.T) {
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite})
	ctx := context.Background()

	processed, err := f.runner.ProcessJobFromQueue(ctx)
	require.NoError(t, err)
	assert.False(t, processed)

	manager := NewJobManager(f.statuses, f.queue, 1, zap.NewNop())
	jobID, err := manager.Submit(ctx, JobRequest{URL: "https://acme.test/", Filters: "p"})
	require.NoError(t, err)

	processed, err = f.runner.ProcessJobFromQueue(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	status, err := manager.GetStatus(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobCompleted, status.Status)
	assert.Equal(t, 3, status.Pages)
}

func TestProcessJobFromQueue_MissingStatus(t *testing.T) {
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite})
	require.NoError(t, f.queue.Push(context.Background(), "expired_1"))

	processed, err := f.runner.ProcessJobFromQueue(context.Background())
	assert.True(t, processed)
	assert.ErrorIs(t, err, repository.ErrJobNotFound)

	stored, err := f.statuses.Find(context.Background(), "expired_1")
	require.NoError(t, err)
	assert.Equal(t, entity.JobFailed, stored.Status)
	assert.Contains(t, stored.Error, "failed to load job")
}

func TestProcessJobFromQueue_JobWithoutParametersFails(t *testing.T) {
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite})
	ctx := context.Background()
	require.NoError(t, f.statuses.Save(ctx, entity.JobStatus{ID: "bare_1", Status: entity.JobPending}))
	require.NoError(t, f.queue.Push(ctx, "bare_1"))

	processed, err := f.runner.ProcessJobFromQueue(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	stored, err := f.statuses.Find(ctx, "bare_1")
	require.NoError(t, err)
	assert.Equal(t, entity.JobFailed, stored.Status)
	assert.True(t, stored.Terminal())
	assert.Equal(t, "queued job has no parameters", stored.Error)
}

func TestOnProgress_NeverMovesBackwards(t *testing.T) {
	f := newRunnerFixture(t, &fakeSite{pages: acmeSite})
	uc := f.runner.(*jobRunnerUseCase)
	ctx := context.Background()

	uc.track(entity.JobStatus{ID: "acme_1", Status: entity.JobRunning, Progress: progressStarted})
	defer uc.untrack("acme_1")

	uc.onProgress(crawler.Progress{JobID: "acme_1", Visited: 5, Pages: 4})
	uc.onProgress(crawler.Progress{JobID: "acme_1", Visited: 3, Pages: 2})

	stored, err := f.statuses.Find(ctx, "acme_1")
	require.NoError(t, err)
	assert.Equal(t, progressStarted+5, stored.Progress)
	assert.Equal(t, 4, stored.Pages)

	uc.onProgress(crawler.Progress{JobID: "acme_1", Visited: 6, Pages: 5})
	stored, err = f.statuses.Find(ctx, "acme_1")
	require.NoError(t, err)
	assert.Equal(t, progressStarted+6, stored.Progress)
	assert.Equal(t, 5, stored.Pages)
}

func TestSplitAbout(t *testing.T) {
	texts := []entity.PageText{
		{URL: "https://a.test/", Text: "home"},
		{URL: "https://a.test/About-Us", Text: "first about"},
		{URL: "https://a.test/empty", Text: "  "},
		{URL: "https://a.test/team/about", Text: "second about"},
		{URL: "https://a.test/blog", Text: "blog"},
	}
	mainText, aboutText := splitAbout(texts)
	assert.Equal(t, "home\n\nblog", mainText)
	assert.Equal(t, "second about", aboutText)
}

func TestFormatLinks_Empty(t *testing.T) {
	assert.Equal(t, "\nScraped Links:\n\nTotal unique links found: 0", FormatLinks(nil))
}

func TestFormatContent(t *testing.T) {
	heavy := strings.Repeat("=", 80)
	light := strings.Repeat("-", 80)
	got := FormatContent(2, []entity.PageText{{URL: "https://a.test/", Text: "Hello"}})
	want := "Combined content from 2 pages\n" + heavy + "\n\n" +
		"URL: https://a.test/\n" + light + "\nHello\n\n" + heavy + "\n\n"
	assert.Equal(t, want, got)
}
