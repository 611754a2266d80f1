package feed

import (
	"sort"
	"strings"

	"gmedash/internal/domain"
)

const (
	NewsTitleWords  = 6
	PressTitleWords = 5
)

func titleKey(title string, words int) string {
	fields := strings.Fields(strings.ToLower(title))
	if len(fields) > words {
		fields = fields[:words]
	}
	return strings.Join(fields, " ")
}

// SortNews orders articles newest first, keeping feed order for ties.
func SortNews(items []domain.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

// DedupeNews drops an article when an earlier one shares its leading title
// words or its URL.
func DedupeNews(items []domain.NewsItem, words int) []domain.NewsItem {
	seenTitles := make(map[string]struct{}, len(items))
	seenURLs := make(map[string]struct{}, len(items))
	out := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		key := titleKey(item.Title, words)
		if _, dup := seenTitles[key]; dup {
			continue
		}
		if _, dup := seenURLs[item.URL]; dup && item.URL != "" {
			continue
		}
		seenTitles[key] = struct{}{}
		seenURLs[item.URL] = struct{}{}
		out = append(out, item)
	}
	return out
}

func SortPressReleases(items []domain.PressRelease) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
}

func DedupePressReleases(items []domain.PressRelease, words int) []domain.PressRelease {
	seenTitles := make(map[string]struct{}, len(items))
	seenURLs := make(map[string]struct{}, len(items))
	out := make([]domain.PressRelease, 0, len(items))
	for _, item := range items {
		key := titleKey(item.Title, words)
		if _, dup := seenTitles[key]; dup {
			continue
		}
		if _, dup := seenURLs[item.URL]; dup && item.URL != "" {
			continue
		}
		seenTitles[key] = struct{}{}
		seenURLs[item.URL] = struct{}{}
		out = append(out, item)
	}
	return out
}
