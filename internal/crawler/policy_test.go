package crawler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/site-crawler/internal/crawler"
)

func TestIsEligible(t *testing.T) {
	allowed := []string{"example.com"}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/", true},
		{"http://example.com/page", true},
		{"https://sub.example.com/x", true},
		{"https://deep.sub.example.com/x", true},
		{"https://notexample.com", false},
		{"https://example.com.evil.test/", false},
		{"javascript:void(0)", false},
		{"mailto:someone@example.com", false},
		{"ftp://example.com/file", false},
		{"https://example.com:8443/", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, crawler.IsEligible(tt.url, allowed), "IsEligible(%q)", tt.url)
	}
}

func TestNewPolicy_EmptyAllowListFallsBackToSeedHost(t *testing.T) {
	p, err := crawler.NewPolicy("https://a.com", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.com"}, p.AllowedDomains())
	assert.True(t, p.IsEligible("https://a.com/page2"))
	assert.False(t, p.IsEligible("https://b.com"))
}

func TestNewPolicy_BlankEntriesIgnored(t *testing.T) {
	p, err := crawler.NewPolicy("https://a.com", []string{" ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com"}, p.AllowedDomains())
}

func TestNewPolicy_ExplicitAllowList(t *testing.T) {
	p, err := crawler.NewPolicy("https://a.com", []string{"b.com", " c.org "})
	require.NoError(t, err)

	assert.False(t, p.IsEligible("https://a.com/"))
	assert.True(t, p.IsEligible("https://b.com/"))
	assert.True(t, p.IsEligible("https://www.c.org/"))
}

func TestNewPolicy_SeedWithoutHost(t *testing.T) {
	_, err := crawler.NewPolicy("/relative/only", nil)
	assert.Error(t, err)
}
