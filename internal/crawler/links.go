package crawler

import (
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/site-crawler/pkg/utils"
)

// ExtractLinks parses markup once and returns the absolute form of every
// <a href> in document order. The sequence has no side effects and can be
// ranged over any number of times. Empty, fragment-only and unresolvable
// references are dropped; fragments are removed from the rest.
func ExtractLinks(markup, baseURL string) (iter.Seq[string], error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	anchors := doc.Find("a[href]")
	return func(yield func(string) bool) {
		for i := range anchors.Length() {
			href, _ := anchors.Eq(i).Attr("href")
			href = strings.TrimSpace(href)
			if href == "" || strings.HasPrefix(href, "#") {
				continue
			}
			abs, err := utils.ToAbsoluteURL(base, href)
			if err != nil {
				continue
			}
			if !yield(abs) {
				return
			}
		}
	}, nil
}
