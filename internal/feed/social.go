package feed

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"gmedash/internal/domain"
)

const maxPostRunes = 500

var (
	nitterHostPattern   = regexp.MustCompile(`nitter\.[^/]+`)
	timelineItemPattern = regexp.MustCompile(`(?is)<div class="timeline-item[^"]*"(.*?)</div>\s*</div>\s*</div>`)
	tweetContentPattern = regexp.MustCompile(`(?is)<div class="tweet-content[^"]*"[^>]*>(.*?)</div>`)
	tweetDatePattern    = regexp.MustCompile(`(?is)<span class="tweet-date"[^>]*><a[^>]*title="([^"]+)"`)
	tweetLinkPattern    = regexp.MustCompile(`(?is)<a class="tweet-link"[^>]*href="([^"]+)"`)
	statNumberPattern   = regexp.MustCompile(`>\s*(\d+(?:,\d+)*(?:\.\d+)?[KMB]?)\s*<`)
)

// ProfileURL is the canonical profile page of handle.
func ProfileURL(handle string) string {
	return "https://twitter.com/" + strings.TrimPrefix(handle, "@")
}

// Posts reads a Nitter RSS document. Links are rewritten from the mirror host
// to twitter.com.
func Posts(raw, handle string, max int, now time.Time) []domain.Post {
	if max <= 0 {
		max = 10
	}
	out := make([]domain.Post, 0)
	for _, m := range itemPattern.FindAllStringSubmatch(raw, -1) {
		if len(out) >= max {
			break
		}
		body := firstGroup(m)
		title := StripMarkup(firstGroup(titlePattern.FindStringSubmatch(body)))
		desc := StripMarkup(firstGroup(descPattern.FindStringSubmatch(body)))
		if title == "" && desc == "" {
			continue
		}
		text := desc
		if text == "" {
			text = title
		}

		link := strings.TrimSpace(Unwrap(firstGroup(linkPattern.FindStringSubmatch(body))))
		link = stripFragment(nitterHostPattern.ReplaceAllString(link, "twitter.com"))
		if !strings.Contains(link, "twitter.com") {
			link = ProfileURL(handle)
		}

		createdAt := ParseDate(firstGroup(datePattern.FindStringSubmatch(body)), now)
		out = append(out, domain.Post{
			ID:        postID(link, createdAt, len(out)),
			Text:      Truncate(text, maxPostRunes),
			CreatedAt: createdAt,
			URL:       link,
		})
	}
	return out
}

// TimelinePosts reads a Nitter profile HTML page, which unlike the RSS view
// carries engagement counters.
func TimelinePosts(page, handle string, max int, now time.Time) []domain.Post {
	if max <= 0 {
		max = 10
	}
	out := make([]domain.Post, 0)
	for _, m := range timelineItemPattern.FindAllStringSubmatch(page, -1) {
		if len(out) >= max {
			break
		}
		block := m[0]
		content := tweetContentPattern.FindStringSubmatch(block)
		if content == nil {
			continue
		}
		text := StripMarkup(content[1])
		if text == "" {
			continue
		}

		url := ProfileURL(handle)
		path := ""
		if l := tweetLinkPattern.FindStringSubmatch(block); l != nil {
			path = stripFragment(l[1])
			url = "https://twitter.com" + path
		}
		createdAt := now.UTC()
		if d := tweetDatePattern.FindStringSubmatch(block); d != nil {
			createdAt = ParseDate(d[1], now)
		}

		post := domain.Post{
			ID:        postID(url, createdAt, len(out)),
			Text:      Truncate(text, maxPostRunes),
			CreatedAt: createdAt,
			URL:       url,
		}
		if stats := strings.Split(block, `class="tweet-stat"`); len(stats) > 1 {
			post.Metrics = parseStats(stats[1:])
		}
		out = append(out, post)
	}
	return out
}

// parseStats reads one counter from each chunk of markup that follows a
// tweet-stat marker. The icon class names the counter.
func parseStats(stats []string) *domain.PostMetrics {
	metrics := &domain.PostMetrics{}
	for _, stat := range stats {
		m := statNumberPattern.FindStringSubmatch(stat)
		if m == nil {
			continue
		}
		n := parseCount(m[1])
		lower := strings.ToLower(stat)
		switch {
		case strings.Contains(lower, "comment") || strings.Contains(lower, "reply"):
			metrics.Replies = n
		case strings.Contains(lower, "retweet"):
			metrics.Retweets = n
		case strings.Contains(lower, "like") || strings.Contains(lower, "heart"):
			metrics.Likes = n
		}
	}
	return metrics
}

// parseCount reads counters such as "1,234", "12.5K" or "3M".
func parseCount(raw string) int {
	raw = strings.ReplaceAll(raw, ",", "")
	mult := 1.0
	switch {
	case strings.HasSuffix(raw, "K"):
		mult = 1e3
	case strings.HasSuffix(raw, "M"):
		mult = 1e6
	case strings.HasSuffix(raw, "B"):
		mult = 1e9
	}
	raw = strings.TrimRight(raw, "KMB")
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return int(n * mult)
}

func stripFragment(link string) string {
	if i := strings.IndexByte(link, '#'); i >= 0 {
		return link[:i]
	}
	return link
}

// postID is the last path segment of the post URL, or a timestamp based id
// when the URL points at the profile.
func postID(link string, createdAt time.Time, index int) string {
	link = strings.TrimRight(link, "/")
	if i := strings.LastIndexByte(link, '/'); i >= 0 && i < len(link)-1 {
		id := link[i+1:]
		if _, err := strconv.ParseUint(id, 10, 64); err == nil {
			return id
		}
	}
	return strconv.FormatInt(createdAt.UnixMilli()+int64(index), 10)
}
