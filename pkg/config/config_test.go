package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/site-crawler/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "downloads", cfg.OutputDir)
	assert.Equal(t, 10*time.Second, cfg.PageLoadTimeout())
	assert.Equal(t, 1, cfg.CrawlWorkers)
	assert.Equal(t, 3, cfg.DefaultMaxDepth)
	assert.True(t, cfg.ChromeHeadless)
	assert.Empty(t, cfg.PostgresURL)
	assert.Equal(t, 500*time.Millisecond, cfg.QueuePollInterval())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CRAWL_WORKERS", "4")
	t.Setenv("PAGE_LOAD_TIMEOUT", "3")
	t.Setenv("USER_AGENTS", "ua-one, ua-two,,")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 4, cfg.CrawlWorkers)
	assert.Equal(t, 3*time.Second, cfg.PageLoadTimeout())
	assert.Equal(t, []string{"ua-one", "ua-two"}, cfg.UserAgentList())
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"example.com", []string{"example.com"}},
		{" a.com , b.com ,", []string{"a.com", "b.com"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, config.SplitList(tt.in), "SplitList(%q)", tt.in)
	}
}
