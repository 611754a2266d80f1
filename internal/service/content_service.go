package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"gmedash/internal/config"
	"gmedash/internal/domain"
	"gmedash/internal/feed"
	"gmedash/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	newsTTL          = 5 * time.Minute
	pressTTL         = 10 * time.Minute
	filingsTTL       = 10 * time.Minute
	socialTTL        = 10 * time.Minute
	maxNewsItems     = 15
	maxItemsPerFeed  = 10
	maxPressReleases = 10
	maxFilings       = 10
	filingScanDepth  = 15
	eightKScanDepth  = 20
	maxFeedFetches   = 4
)

var keyForms = map[string]string{
	"10-K":    "Annual Report - Comprehensive overview of business and financial condition",
	"10-Q":    "Quarterly Report - Unaudited financial statements and updates",
	"8-K":     "Current Report - Material corporate events and information",
	"DEF 14A": "Proxy Statement - Information for shareholder meetings",
	"SC 13G":  "Beneficial Ownership Report - Large shareholding disclosure",
	"SC 13D":  "Beneficial Ownership Report - Active investor disclosure",
	"4":       "Insider Trading Report - Changes in beneficial ownership",
}

type FeedFetcher interface {
	FetchFeed(ctx context.Context, name, feedURL string) (string, error)
}

type FilingSource interface {
	FetchSubmissions(ctx context.Context, cik string) (*provider.Submissions, error)
}

type PostSource interface {
	FetchPosts(ctx context.Context, handle string, now time.Time) ([]domain.Post, error)
}

// ContentService resolves the news, press release, filing and social
// datasets.
type ContentService struct {
	tracer  trace.Tracer
	tiers   *Tiers
	feeds   FeedFetcher
	filings FilingSource
	posts   PostSource
	cfg     config.Feeds
	cik     string
	company string
}

func NewContentService(
	tracer trace.Tracer,
	tiers *Tiers,
	feeds FeedFetcher,
	filings FilingSource,
	posts PostSource,
	cfg config.Feeds,
	cik string,
	company string,
) *ContentService {
	return &ContentService{
		tracer:  tracer,
		tiers:   tiers,
		feeds:   feeds,
		filings: filings,
		posts:   posts,
		cfg:     cfg,
		cik:     cik,
		company: company,
	}
}

func (s *ContentService) DefaultCIK() string {
	return s.cik
}

func (s *ContentService) SocialHandle() string {
	return s.cfg.SocialHandle
}

func (s *ContentService) filter() feed.Filter {
	return feed.Filter{Keywords: s.cfg.Keywords, MaxItems: maxItemsPerFeed}
}

// GetNews merges every configured news feed. A failing feed only removes its
// own items; when nothing is left a single link to the fallback news page is
// returned.
func (s *ContentService) GetNews(ctx context.Context) (Result[[]domain.NewsItem], error) {
	ctx, span := s.tracer.Start(ctx, "content-service.get-news")
	defer span.End()

	return Waterfall[[]domain.NewsItem]{
		Key: "news",
		TTL: fixedTTL(newsTTL),
		Attempts: []Attempt[[]domain.NewsItem]{
			{Name: "feeds", Fetch: s.collectNews},
		},
		Validate: func(items []domain.NewsItem) error {
			if len(items) == 0 {
				return errors.New("no articles")
			}
			return nil
		},
		Placeholder: func() []domain.NewsItem {
			return []domain.NewsItem{{
				Title:       "Visit Yahoo Finance for Latest " + s.company + " News",
				Description: "Click to view the latest " + s.company + " news and updates on Yahoo Finance.",
				URL:         s.cfg.FallbackNewsURL,
				PublishedAt: s.tiers.now().UTC(),
				Source:      domain.NewsSource{Name: "Yahoo Finance"},
			}}
		},
	}.Run(ctx, s.tiers)
}

func (s *ContentService) collectNews(ctx context.Context) ([]domain.NewsItem, error) {
	now := s.tiers.now()
	results := make([][]domain.NewsItem, len(s.cfg.News))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFeedFetches)
	for i, src := range s.cfg.News {
		g.Go(func() error {
			raw, err := s.feeds.FetchFeed(gctx, src.Name, src.URL)
			if err != nil {
				log.Printf("%s RSS failed: %v", src.Name, err)
				return nil
			}
			results[i] = feed.News(raw, feed.Source{Name: src.Name, Trusted: src.Trusted}, s.filter(), now)
			return nil
		})
	}
	_ = g.Wait()

	var all []domain.NewsItem
	for _, items := range results {
		all = append(all, items...)
	}
	feed.SortNews(all)
	all = feed.DedupeNews(all, feed.NewsTitleWords)
	if len(all) > maxNewsItems {
		all = all[:maxNewsItems]
	}
	return all, nil
}

// GetPressReleases combines the investor relations feeds with 8-K filings.
func (s *ContentService) GetPressReleases(ctx context.Context) (Result[[]domain.PressRelease], error) {
	ctx, span := s.tracer.Start(ctx, "content-service.get-press-releases")
	defer span.End()

	return Waterfall[[]domain.PressRelease]{
		Key: "press_releases",
		TTL: fixedTTL(pressTTL),
		Attempts: []Attempt[[]domain.PressRelease]{
			{Name: "press", Fetch: s.collectPressReleases},
		},
		Validate: func(items []domain.PressRelease) error {
			if len(items) == 0 {
				return errors.New("no press releases")
			}
			return nil
		},
	}.Run(ctx, s.tiers)
}

func (s *ContentService) collectPressReleases(ctx context.Context) ([]domain.PressRelease, error) {
	now := s.tiers.now()
	results := make([][]domain.PressRelease, len(s.cfg.PressReleases)+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFeedFetches)
	for i, src := range s.cfg.PressReleases {
		g.Go(func() error {
			raw, err := s.feeds.FetchFeed(gctx, src.Name, src.URL)
			if err != nil {
				log.Printf("%s press feed failed: %v", src.Name, err)
				return nil
			}
			results[i] = feed.PressReleases(raw, feed.Source{Name: src.Name, Trusted: src.Trusted}, s.filter(), now)
			return nil
		})
	}
	g.Go(func() error {
		releases, err := s.eightKReleases(gctx)
		if err != nil {
			log.Printf("SEC 8-K filings failed: %v", err)
			return nil
		}
		results[len(results)-1] = releases
		return nil
	})
	_ = g.Wait()

	var all []domain.PressRelease
	for _, items := range results {
		all = append(all, items...)
	}
	feed.SortPressReleases(all)
	all = feed.DedupePressReleases(all, feed.PressTitleWords)
	if len(all) > maxPressReleases {
		all = all[:maxPressReleases]
	}
	return all, nil
}

func (s *ContentService) eightKReleases(ctx context.Context) ([]domain.PressRelease, error) {
	subs, err := s.filings.FetchSubmissions(ctx, s.cik)
	if err != nil {
		return nil, err
	}
	var out []domain.PressRelease
	for i, f := range subs.Recent {
		if i >= eightKScanDepth {
			break
		}
		if f.Form != "8-K" {
			continue
		}
		date, err := time.Parse(domain.DateLayout, f.FilingDate)
		if err != nil {
			continue
		}
		doc := f.PrimaryDocument
		if doc == "" {
			doc = "Current Report"
		}
		out = append(out, domain.PressRelease{
			Title:       s.company + " 8-K: " + doc,
			Date:        date.UTC(),
			URL:         provider.FilingIndexURL(subs.CIK, f.AccessionNumber),
			Description: "SEC Form 8-K - Report of material corporate events or changes",
			Source:      "SEC EDGAR",
		})
	}
	return out, nil
}

// GetFilings lists key filing types among the most recent submissions of
// cik, newest first.
func (s *ContentService) GetFilings(ctx context.Context, cik string) (Result[[]domain.Filing], error) {
	ctx, span := s.tracer.Start(ctx, "content-service.get-filings")
	defer span.End()
	span.SetAttributes(attribute.String("cik", cik))

	return Waterfall[[]domain.Filing]{
		Key: "sec_filings_" + cik,
		TTL: fixedTTL(filingsTTL),
		Attempts: []Attempt[[]domain.Filing]{
			{Name: "sec", Fetch: func(ctx context.Context) ([]domain.Filing, error) {
				subs, err := s.filings.FetchSubmissions(ctx, cik)
				if err != nil {
					return nil, err
				}
				return keyFilings(subs), nil
			}},
		},
		Validate: func(items []domain.Filing) error {
			if len(items) == 0 {
				return errors.New("no key filings")
			}
			return nil
		},
	}.Run(ctx, s.tiers)
}

func keyFilings(subs *provider.Submissions) []domain.Filing {
	name := subs.Name
	if name == "" {
		name = "GameStop Corp."
	}
	seen := make(map[string]struct{})
	out := make([]domain.Filing, 0)
	for i, f := range subs.Recent {
		if i >= filingScanDepth {
			break
		}
		fallback, ok := keyForms[f.Form]
		if !ok {
			continue
		}
		key := f.Form + "|" + f.FilingDate
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		desc := strings.TrimSpace(f.Description)
		if desc == "" || desc == f.Form {
			desc = fallback
		}
		out = append(out, domain.Filing{
			FormType:    f.Form,
			FilingDate:  f.FilingDate,
			Description: desc,
			URL:         provider.FilingIndexURL(subs.CIK, f.AccessionNumber),
			CompanyName: name,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FilingDate > out[j].FilingDate
	})
	if len(out) > maxFilings {
		out = out[:maxFilings]
	}
	return out
}

// GetPosts returns the latest posts of the configured profile.
func (s *ContentService) GetPosts(ctx context.Context) (Result[[]domain.Post], error) {
	ctx, span := s.tracer.Start(ctx, "content-service.get-posts")
	defer span.End()

	handle := s.cfg.SocialHandle
	return Waterfall[[]domain.Post]{
		Key: "social_" + handle,
		TTL: fixedTTL(socialTTL),
		Attempts: []Attempt[[]domain.Post]{
			{Name: "nitter", Fetch: func(ctx context.Context) ([]domain.Post, error) {
				posts, err := s.posts.FetchPosts(ctx, handle, s.tiers.now())
				if err != nil {
					return nil, err
				}
				sort.SliceStable(posts, func(i, j int) bool {
					return posts[i].CreatedAt.After(posts[j].CreatedAt)
				})
				if len(posts) > 10 {
					posts = posts[:10]
				}
				return posts, nil
			}},
		},
		Validate: func(posts []domain.Post) error {
			if len(posts) == 0 {
				return errors.New("no posts")
			}
			return nil
		},
	}.Run(ctx, s.tiers)
}
