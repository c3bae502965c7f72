// Package summary prepares crawled text for the summarizer and formats its
// answer. The section detection is a keyword heuristic, not a parser.
package summary

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxChars caps the text sent per source, roughly 2000 tokens.
const DefaultMaxChars = 8000

// SystemPrompt frames the summarizer as a business analyst.
const SystemPrompt = "You are a business analyst expert at analyzing company websites and providing structured insights."

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	boilerplateRe = regexp.MustCompile(`(?i)(accept\s+cookies?|privacy\s+policy|terms\s+of\s+use|copyright\s*(?:©|\(c\))?\s*\d{4}|all\s+rights\s+reserved)`)

	sectionHeadings = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(about\s+us|about\s+company|who\s+we\s+are)`),
		regexp.MustCompile(`(?i)(our\s+products|our\s+services|what\s+we\s+offer)`),
		regexp.MustCompile(`(?i)(our\s+team|leadership|management\s+team)`),
		regexp.MustCompile(`(?i)(contact\s+us|location|headquarters)`),
	}
)

// Preprocess collapses whitespace, strips common boilerplate phrases and
// truncates the result to maxChars runes. maxChars <= 0 means DefaultMaxChars.
func Preprocess(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = boilerplateRe.ReplaceAllString(text, "")

	runes := []rune(text)
	if len(runes) > maxChars {
		return string(runes[:maxChars])
	}
	return text
}

// ExtractKeySections picks out the about, offering, team and contact
// sections. Each section starts at its first heading match and runs to the
// next blank line or the end of text. Text without any heading is returned
// unchanged.
func ExtractKeySections(text string) string {
	var sections []string
	for _, heading := range sectionHeadings {
		loc := heading.FindStringIndex(text)
		if loc == nil {
			continue
		}
		end := len(text)
		if i := strings.Index(text[loc[1]:], "\n\n"); i >= 0 {
			end = loc[1] + i
		}
		sections = append(sections, text[loc[0]:end])
	}
	if len(sections) == 0 {
		return text
	}
	return strings.Join(sections, "\n\n")
}

// BuildPrompt turns the main text and the optional about page text into the
// user prompt.
func BuildPrompt(content, about string, maxChars int) string {
	final := ExtractKeySections(Preprocess(content, maxChars))
	if strings.TrimSpace(about) != "" {
		final = fmt.Sprintf("%s\n\nABOUT PAGE CONTENT:\n%s", final, ExtractKeySections(Preprocess(about, maxChars)))
	}

	return `Analyze the following website content and provide a structured analysis with these specific sections:

1. Company/Website Description (1 paragraph)
2. Key Offerings and Features
3. Market Positioning & Differentiators
4. Target Sectors & Use Cases
5. Team Members (if available)
6. Company Location


Website Content:
` + final + `

Please provide a structured analysis with clear section headers. If information for any section is not available, indicate "Information not available" for that section.
`
}

// FormatForDownload wraps the analysis in the report frame written to disk.
func FormatForDownload(analysis string) string {
	rule := strings.Repeat("=", 50)
	return "WEBSITE ANALYSIS REPORT\n" + rule + "\n\n" + analysis + "\n\n" + rule + "\nGenerated using AI-powered analysis\n"
}
