package crawler_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/site-crawler/internal/crawler"
)

const linksHTML = `<html><body>
  <a href="/a">relative root</a>
  <a href="b">relative path</a>
  <a href="//cdn.site.test/c">protocol relative</a>
  <a href="https://other.test/d">absolute</a>
  <a href="">empty</a>
  <a href="   ">blank</a>
  <a href="#top">fragment only</a>
  <a>no href</a>
  <a href="/e#section">with fragment</a>
  <a href="javascript:void(0)">script</a>
  <a href="http://[::1">broken</a>
</body></html>`

func TestExtractLinks(t *testing.T) {
	seq, err := crawler.ExtractLinks(linksHTML, "https://site.test/docs/index.html")
	require.NoError(t, err)

	want := []string{
		"https://site.test/a",
		"https://site.test/docs/b",
		"https://cdn.site.test/c",
		"https://other.test/d",
		"https://site.test/e",
		"javascript:void(0)",
	}
	assert.Equal(t, want, slices.Collect(seq))
}

func TestExtractLinks_Restartable(t *testing.T) {
	seq, err := crawler.ExtractLinks(`<a href="/x"></a><a href="/y"></a>`, "https://site.test/")
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestExtractLinks_EarlyStop(t *testing.T) {
	seq, err := crawler.ExtractLinks(`<a href="/x"></a><a href="/y"></a><a href="/z"></a>`, "https://site.test/")
	require.NoError(t, err)

	var got []string
	for link := range seq {
		got = append(got, link)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"https://site.test/x", "https://site.test/y"}, got)
}

func TestExtractLinks_InvalidBase(t *testing.T) {
	_, err := crawler.ExtractLinks(`<a href="/x"></a>`, "http://[::1")
	assert.Error(t, err)
}
