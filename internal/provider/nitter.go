package provider

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gmedash/internal/domain"
	"gmedash/internal/feed"
)

const maxPosts = 10

// NitterProvider reads a public profile through Nitter mirrors. Mirrors are
// tried in order and the first one returning posts wins.
type NitterProvider struct {
	pages   *FeedProvider
	mirrors []string
}

func NewNitterProvider(pages *FeedProvider, mirrors []string) *NitterProvider {
	clean := make([]string, 0, len(mirrors))
	for _, m := range mirrors {
		if m = strings.TrimRight(strings.TrimSpace(m), "/"); m != "" {
			clean = append(clean, m)
		}
	}
	return &NitterProvider{pages: pages, mirrors: clean}
}

// FetchPosts tries the RSS view of every mirror, then the HTML timeline,
// which also carries engagement counters.
func (p *NitterProvider) FetchPosts(ctx context.Context, handle string, now time.Time) ([]domain.Post, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("social handle is required")
	}

	for _, mirror := range p.mirrors {
		raw, err := p.pages.FetchFeed(ctx, "nitter", mirror+"/"+handle+"/rss")
		if err != nil {
			log.Printf("nitter mirror %s rss failed, trying next: %v", mirror, err)
			continue
		}
		if posts := feed.Posts(raw, handle, maxPosts, now); len(posts) > 0 {
			return posts, nil
		}
	}
	for _, mirror := range p.mirrors {
		page, err := p.pages.FetchPage(ctx, "nitter", mirror+"/"+handle)
		if err != nil {
			log.Printf("nitter mirror %s timeline failed, trying next: %v", mirror, err)
			continue
		}
		if posts := feed.TimelinePosts(page, handle, maxPosts, now); len(posts) > 0 {
			return posts, nil
		}
	}
	return nil, fmt.Errorf("fetch posts for %s: %w", handle, ErrNoData)
}
