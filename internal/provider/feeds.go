package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FeedProvider downloads RSS, Atom and HTML documents as text. Extraction is
// left to the feed package.
type FeedProvider struct {
	client    *http.Client
	userAgent string
	tracer    trace.Tracer
	health    *Health
}

func NewFeedProvider(tracer trace.Tracer, client *http.Client, userAgent string, health *Health) *FeedProvider {
	return &FeedProvider{
		client:    client,
		userAgent: userAgent,
		tracer:    tracer,
		health:    health,
	}
}

// FetchFeed returns the raw body of an RSS or Atom document. name is the
// health-tracking key of the source.
func (p *FeedProvider) FetchFeed(ctx context.Context, name, feedURL string) (string, error) {
	return p.fetch(ctx, "feed.fetch-feed", name, feedURL, "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")
}

// FetchPage returns the raw body of an HTML page.
func (p *FeedProvider) FetchPage(ctx context.Context, name, pageURL string) (string, error) {
	return p.fetch(ctx, "feed.fetch-page", name, pageURL, "text/html, */*")
}

func (p *FeedProvider) fetch(ctx context.Context, spanName, name, target, accept string) (string, error) {
	ctx, span := p.tracer.Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attribute.String("source", name))

	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("%s: url is required", name)
	}

	body, err := fetchBody(ctx, p.client, name, target, map[string]string{
		"User-Agent": p.userAgent,
		"Accept":     accept,
	})
	p.health.Record(name, err)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", name, err)
	}
	return string(body), nil
}
