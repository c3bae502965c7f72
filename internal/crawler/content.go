package crawler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
)

// nonContentSelectors never contribute text, not even whitespace.
const nonContentSelectors = "script, style, noscript, template"

var multiSpace = regexp.MustCompile(` {2,}`)

// ExtractText converts rendered markup into clean plain text. With a non-empty
// filter only the matching elements contribute, one per line, in document order.
// Entities are decoded, so the output is text and not markup: feeding it back
// in decodes again ("AT&amp;T" becomes "AT&T", "&lt;b&gt;" becomes a tag).
// Re-normalize extracted text with NormalizeText instead.
func ExtractText(markup string, filter entity.TagFilter) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrExtractionFailed, err)
	}
	doc.Find(nonContentSelectors).Remove()

	tags := filter.Tags()
	if len(tags) == 0 {
		return NormalizeText(doc.Text()), nil
	}

	var blocks []string
	doc.Find(strings.Join(tags, ", ")).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return NormalizeText(strings.Join(blocks, "\n")), nil
}

// NormalizeText trims every line, breaks lines apart on runs of two or more
// spaces, drops empty fragments and joins the rest with single newlines.
// Applying it twice gives the same result as applying it once.
func NormalizeText(text string) string {
	var out []string
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, chunk := range multiSpace.Split(line, -1) {
			if chunk = strings.TrimSpace(chunk); chunk != "" {
				out = append(out, chunk)
			}
		}
	}
	return strings.Join(out, "\n")
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// ExtractAll runs ExtractText over every page. A page whose markup cannot be
// processed is logged and skipped; it never fails the batch.
func ExtractAll(pages []entity.PageRecord, filter entity.TagFilter, logger *zap.Logger) []entity.PageText {
	if logger == nil {
		logger = zap.NewNop()
	}
	texts := make([]entity.PageText, 0, len(pages))
	for _, p := range pages {
		text, err := ExtractText(p.Markup, filter)
		if err != nil {
			logger.Warn("skipping page content", zap.String("url", p.URL), zap.Error(err))
			continue
		}
		texts = append(texts, entity.PageText{URL: p.URL, Text: text})
	}
	return texts
}
