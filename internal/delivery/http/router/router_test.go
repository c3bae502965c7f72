package router_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/adapter/filestore"
	"github.com/user/site-crawler/internal/adapter/memory"
	"github.com/user/site-crawler/internal/delivery/http/handler"
	"github.com/user/site-crawler/internal/delivery/http/response"
	"github.com/user/site-crawler/internal/delivery/http/router"
	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/usecase"
)

type testServer struct {
	srv       *httptest.Server
	statuses  *memory.JobStatusRepoImpl
	queue     *memory.QueueRepoImpl
	artifacts *filestore.ArtifactStoreImpl
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	statuses := memory.NewJobStatusRepo()
	queue := memory.NewQueueRepo()
	artifacts, err := filestore.NewArtifactStore(t.TempDir())
	require.NoError(t, err)

	manager := usecase.NewJobManager(statuses, queue, 3, zap.NewNop())
	h := handler.NewHandler(manager, artifacts, zap.NewNop())
	srv := httptest.NewServer(router.New(h, zap.NewNop()))
	t.Cleanup(srv.Close)

	return testServer{srv: srv, statuses: statuses, queue: queue, artifacts: artifacts}
}

func TestSubmitCrawl(t *testing.T) {
	ts := newTestServer(t)

	body := `{"url":"https://www.example.com","max_depth":1,"allowed_domains":"example.com","filters":"p,l"}`
	resp, err := http.Post(ts.srv.URL+"/api/crawl", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	var out response.SubmitCrawlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, strings.HasPrefix(out.TaskID, "example_"))
	assert.Equal(t, "Crawling started", out.Message)

	queued, err := ts.queue.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out.TaskID, queued)

	status, err := ts.statuses.Find(context.Background(), out.TaskID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Job.MaxDepth)
	assert.Equal(t, entity.TagFilter{entity.TagParagraph, entity.TagList}, status.Job.Filter)
}

func TestSubmitCrawl_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{
		`not json`,
		`{}`,
		`{"url":"notaurl"}`,
		`{"url":"https://example.com","max_depth":-2}`,
	} {
		resp, err := http.Post(ts.srv.URL+"/api/crawl", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestGetStatus(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.statuses.Save(context.Background(), entity.JobStatus{
		ID:          "example_1",
		Status:      entity.JobCompleted,
		Progress:    100,
		LinksFile:   "example_1_links.txt",
		ContentFile: "example_1_content.txt",
		Job:         &entity.CrawlJob{SeedURL: "https://example.com"},
	}))

	resp, err := http.Get(ts.srv.URL + "/api/status/example_1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out response.JobStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "example_1", out.TaskID)
	assert.Equal(t, entity.JobCompleted, out.Status)
	assert.Equal(t, 100, out.Progress)
	assert.Equal(t, "https://example.com", out.URL)
	assert.Equal(t, "example_1_links.txt", out.LinksFile)
}

func TestGetStatus_NotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/api/status/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out response.JobStatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.JobNotFound, out.Status)
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.artifacts.Write(context.Background(), "example_1_links.txt", "\nScraped Links:\n"))

	resp, err := http.Get(ts.srv.URL + "/api/download/example_1_links.txt")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="example_1_links.txt"`, resp.Header.Get("Content-Disposition"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "\nScraped Links:\n", string(data))
}

func TestDownload_Missing(t *testing.T) {
	ts := newTestServer(t)

	for _, name := range []string{"nope.txt", "..%2Fsecret"} {
		resp, err := http.Get(ts.srv.URL + "/api/download/" + name)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, name)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
