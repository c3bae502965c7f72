package usecase

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
)

type fakeSite struct {
	pages   map[string]string
	openErr error
}

func (s *fakeSite) Open(context.Context) (repository.Renderer, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return fakeRenderer{site: s}, nil
}

type fakeRenderer struct {
	site *fakeSite
}

func (r fakeRenderer) Fetch(ctx context.Context, url string) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, &entity.FetchError{URL: url, Kind: entity.FetchCancelled, Err: err}
	}
	markup, ok := r.site.pages[url]
	if !ok {
		return "", 0, &entity.FetchError{URL: url, Kind: entity.FetchNavigation, Err: repository.ErrNavigationFailed}
	}
	return markup, 200, nil
}

func (fakeRenderer) Close() error { return nil }

type memArtifacts struct {
	mu    sync.Mutex
	files map[string]string
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{files: make(map[string]string)}
}

func (a *memArtifacts) Write(_ context.Context, name, content string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.files[name] = content
	return nil
}

func (a *memArtifacts) Open(_ context.Context, name string) (io.ReadSeekCloser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	content, ok := a.files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return nopCloser{strings.NewReader(content)}, nil
}

func (a *memArtifacts) get(name string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	content, ok := a.files[name]
	return content, ok
}

type nopCloser struct {
	*strings.Reader
}

func (nopCloser) Close() error { return nil }

type fakeSummarizer struct {
	mu      sync.Mutex
	calls   int
	content string
	about   string
	answer  string
	err     error
}

func (s *fakeSummarizer) Summarize(_ context.Context, content, about string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.content = content
	s.about = about
	return s.answer, s.err
}

type fakePageStore struct {
	mu    sync.Mutex
	pages []entity.PageRecord
	texts map[string]string
}

func (s *fakePageStore) SavePages(_ context.Context, _ string, pages []entity.PageRecord, texts map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, pages...)
	s.texts = texts
	return nil
}

func (s *fakePageStore) FindByJob(context.Context, string) ([]entity.PageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages, nil
}

type fakeFailedStore struct {
	mu     sync.Mutex
	failed []entity.FailedURL
}

func (s *fakeFailedStore) SaveAll(_ context.Context, failed []entity.FailedURL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, failed...)
	return nil
}

func (s *fakeFailedStore) FindByJob(context.Context, string) ([]entity.FailedURL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed, nil
}
