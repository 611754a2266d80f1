package feed

import (
	"html"
	"regexp"
	"strings"
	"time"

	"gmedash/internal/domain"
)

var (
	itemPattern  = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>(.*?)</item>|<entry(?:\s[^>]*)?>(.*?)</entry>`)
	titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	descPattern  = regexp.MustCompile(`(?is)<description[^>]*>(.*?)</description>|<summary[^>]*>(.*?)</summary>|<content[^>]*>(.*?)</content>`)
	linkPattern  = regexp.MustCompile(`(?is)<link[^>]*>([^<]*)</link>|<link[^>]*href="([^"]+)"`)
	datePattern  = regexp.MustCompile(`(?is)<pubDate[^>]*>(.*?)</pubDate>|<published[^>]*>(.*?)</published>|<updated[^>]*>(.*?)</updated>`)
)

// Item is one cleaned feed entry before any relevance filtering.
type Item struct {
	Title       string
	Description string
	Link        string
	PublishedAt time.Time
}

// Source describes where a document came from. Items of a trusted source
// skip the keyword filter.
type Source struct {
	Name    string
	Trusted bool
}

// Filter selects relevant items. Keywords are matched case-insensitively
// against title and description.
type Filter struct {
	Keywords []string
	MaxItems int
}

// Items returns every <item> or <entry> in document order.
func Items(raw string, now time.Time) []Item {
	matches := itemPattern.FindAllStringSubmatch(raw, -1)
	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		body := firstGroup(m)
		item := Item{
			Title:       Clean(firstGroup(titlePattern.FindStringSubmatch(body))),
			Description: Clean(firstGroup(descPattern.FindStringSubmatch(body))),
			Link:        strings.TrimSpace(html.UnescapeString(Unwrap(firstGroup(linkPattern.FindStringSubmatch(body))))),
			PublishedAt: ParseDate(firstGroup(datePattern.FindStringSubmatch(body)), now),
		}
		item.Link = UnwrapGoogleLink(item.Link)
		items = append(items, item)
	}
	return items
}

// firstGroup returns the first non-empty capture group of an alternation match.
func firstGroup(m []string) string {
	for i := 1; i < len(m); i++ {
		if m[i] != "" {
			return m[i]
		}
	}
	return ""
}

func (f Filter) Relevant(item Item, src Source) bool {
	if src.Trusted {
		return true
	}
	title := strings.ToLower(item.Title)
	desc := strings.ToLower(item.Description)
	for _, k := range f.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(title, k) || strings.Contains(desc, k) {
			return true
		}
	}
	return false
}

func (f Filter) limit() int {
	if f.MaxItems <= 0 {
		return 10
	}
	return f.MaxItems
}

// News extracts relevant articles in feed order. Items without a title or
// link are skipped.
func News(raw string, src Source, f Filter, now time.Time) []domain.NewsItem {
	out := make([]domain.NewsItem, 0)
	for _, item := range Items(raw, now) {
		if len(out) >= f.limit() {
			break
		}
		if item.Title == "" || item.Link == "" || !f.Relevant(item, src) {
			continue
		}
		out = append(out, domain.NewsItem{
			Title:       Truncate(item.Title, maxTitleRunes),
			Description: Summarize(item.Description, maxDescriptionRunes),
			URL:         item.Link,
			PublishedAt: item.PublishedAt,
			Source:      domain.NewsSource{Name: src.Name},
		})
	}
	return out
}

// PressReleases extracts relevant announcements in feed order.
func PressReleases(raw string, src Source, f Filter, now time.Time) []domain.PressRelease {
	out := make([]domain.PressRelease, 0)
	for _, item := range Items(raw, now) {
		if len(out) >= f.limit() {
			break
		}
		if item.Title == "" || !f.Relevant(item, src) {
			continue
		}
		out = append(out, domain.PressRelease{
			Title:       Truncate(item.Title, maxTitleRunes),
			Date:        item.PublishedAt,
			URL:         item.Link,
			Description: Summarize(item.Description, maxDescriptionRunes),
			Source:      src.Name,
		})
	}
	return out
}
