// Package feed extracts articles, press releases and posts from raw RSS,
// Atom and Nitter markup. Parsing is pattern based so malformed documents
// still yield whatever items can be recognized.
package feed

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleRunes       = 200
	maxDescriptionRunes = 300
)

var (
	cdataPattern     = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	tagPattern       = regexp.MustCompile(`(?s)<[^>]*>`)
	openTagPattern   = regexp.MustCompile(`<[^>]*$`)
	bareURLPattern   = regexp.MustCompile(`https?://\S+`)
	googleURLPattern = regexp.MustCompile(`url=([^&]+)`)
)

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Jan 2, 2006 · 3:04 PM MST",
	"2006-01-02",
}

// Unwrap removes a CDATA wrapper, leaving the enclosed text.
func Unwrap(text string) string {
	return cdataPattern.ReplaceAllString(text, "$1")
}

// Clean turns a feed fragment into display text: entities are decoded first
// so escaped markup is stripped too, then tags, whitespace runs and bare
// URLs left behind by removed anchors are dropped.
func Clean(text string) string {
	cleaned := html.UnescapeString(text)
	cleaned = Unwrap(cleaned)
	cleaned = tagPattern.ReplaceAllString(cleaned, "")
	cleaned = openTagPattern.ReplaceAllString(cleaned, "")
	cleaned = collapse(cleaned)
	cleaned = bareURLPattern.ReplaceAllString(cleaned, "")
	return collapse(cleaned)
}

// StripMarkup is Clean without URL removal; used for post bodies where links
// are content.
func StripMarkup(text string) string {
	cleaned := html.UnescapeString(Unwrap(text))
	cleaned = tagPattern.ReplaceAllString(cleaned, "")
	cleaned = openTagPattern.ReplaceAllString(cleaned, "")
	return collapse(cleaned)
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts text to at most n runes.
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}

// Summarize cuts text to n runes and marks the cut with "...".
func Summarize(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return Truncate(text, n) + "..."
}

// UnwrapGoogleLink resolves a Google News redirect to its target article.
func UnwrapGoogleLink(link string) string {
	if !strings.Contains(link, "news.google.com") || !strings.Contains(link, "url=") {
		return link
	}
	m := googleURLPattern.FindStringSubmatch(link)
	if m == nil {
		return link
	}
	target, err := url.QueryUnescape(m[1])
	if err != nil || target == "" {
		return link
	}
	return target
}

// ParseDate reads the date formats seen in RSS, Atom and Nitter. Unknown
// values fall back to now.
func ParseDate(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(Unwrap(raw))
	if raw == "" {
		return now.UTC()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return now.UTC()
}
