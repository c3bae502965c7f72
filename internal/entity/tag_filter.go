package entity

import "strings"

// TagCategory is one of the content categories a caller may restrict extraction to.
type TagCategory string

const (
	TagParagraph TagCategory = "p"
	TagHeading   TagCategory = "h"
	TagList      TagCategory = "l"
)

// TagFilter is an optional set of categories. Empty means all visible text.
type TagFilter []TagCategory

// ParseTagFilter reads a comma-separated list such as "p,h". Unknown entries are ignored.
func ParseTagFilter(raw string) TagFilter {
	var f TagFilter
	seen := make(map[TagCategory]bool)
	for _, part := range strings.Split(raw, ",") {
		c := TagCategory(strings.ToLower(strings.TrimSpace(part)))
		switch c {
		case TagParagraph, TagHeading, TagList:
			if !seen[c] {
				seen[c] = true
				f = append(f, c)
			}
		}
	}
	return f
}

// Tags expands the categories into element names.
func (f TagFilter) Tags() []string {
	var tags []string
	for _, c := range f {
		switch c {
		case TagParagraph:
			tags = append(tags, "p")
		case TagHeading:
			tags = append(tags, "h1", "h2", "h3", "h4", "h5", "h6")
		case TagList:
			tags = append(tags, "ul", "ol", "li")
		}
	}
	return tags
}

func (f TagFilter) String() string {
	parts := make([]string, len(f))
	for i, c := range f {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
