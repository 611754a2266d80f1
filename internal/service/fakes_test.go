package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"gmedash/internal/cache"
	"gmedash/internal/domain"
	"gmedash/internal/provider"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var errUpstream = errors.New("upstream down")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestTiers(clock *fakeClock, mirror *cache.Mirror) *Tiers {
	tiers := NewTiers(trace.NewNoopTracerProvider().Tracer("test"), cache.NewStoreWithClock(clock.now), mirror)
	tiers.Now = clock.now
	return tiers
}

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

type memRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemRedis() *memRedis {
	return &memRedis{data: make(map[string]string)}
}

func (r *memRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := value.([]byte); ok {
		r.data[key] = string(b)
	}
	return redis.NewStatusResult("OK", nil)
}

func (r *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

type fakeFinnhub struct {
	mu           sync.Mutex
	quote        *domain.Quote
	quoteErr     error
	metrics      *domain.CompanyMetrics
	metricsErr   error
	candles      []domain.HistoricalPoint
	candlesErr   error
	short        *domain.ShortInterest
	shortErr     error
	quoteCalls   int
	candleCalls  int
	candleWindow [2]time.Time
}

func (f *fakeFinnhub) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q := *f.quote
	return &q, nil
}

func (f *fakeFinnhub) FetchMetrics(ctx context.Context, symbol string) (*domain.CompanyMetrics, error) {
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}
	m := *f.metrics
	return &m, nil
}

func (f *fakeFinnhub) FetchCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.HistoricalPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candleCalls++
	f.candleWindow = [2]time.Time{from, to}
	if f.candlesErr != nil {
		return nil, f.candlesErr
	}
	return f.candles, nil
}

func (f *fakeFinnhub) FetchShortInterest(ctx context.Context, symbol string, now time.Time) (*domain.ShortInterest, error) {
	if f.shortErr != nil {
		return nil, f.shortErr
	}
	return f.short, nil
}

type fakeYahoo struct {
	mu           sync.Mutex
	quote        *domain.Quote
	quoteErr     error
	history      []domain.HistoricalPoint
	historyErr   error
	chart        *domain.CompanyMetrics
	chartErr     error
	short        *domain.ShortInterest
	shortErr     error
	options      *domain.OptionsFlow
	optionsErr   error
	earnings     time.Time
	earningsErr  error
	quoteCalls   int
	historyRange string
}

func (f *fakeYahoo) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q := *f.quote
	return &q, nil
}

func (f *fakeYahoo) FetchHistorical(ctx context.Context, symbol, chartRange string) ([]domain.HistoricalPoint, error) {
	f.mu.Lock()
	f.historyRange = chartRange
	f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeYahoo) FetchChartMetrics(ctx context.Context, symbol string) (*domain.CompanyMetrics, error) {
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	m := *f.chart
	return &m, nil
}

func (f *fakeYahoo) FetchShortInterest(ctx context.Context, symbol string, now time.Time) (*domain.ShortInterest, error) {
	if f.shortErr != nil {
		return nil, f.shortErr
	}
	return f.short, nil
}

func (f *fakeYahoo) FetchOptionsFlow(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error) {
	if f.optionsErr != nil {
		return nil, f.optionsErr
	}
	return f.options, nil
}

func (f *fakeYahoo) FetchEarningsDate(ctx context.Context, symbol string) (time.Time, error) {
	return f.earnings, f.earningsErr
}

type fakeScraper struct {
	volume   *domain.OptionsFlow
	ratio    *domain.OptionsFlow
	volErr   error
	ratioErr error
}

func (f *fakeScraper) FetchMarketWatchVolume(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error) {
	return f.volume, f.volErr
}

func (f *fakeScraper) FetchBarchartPutCall(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error) {
	return f.ratio, f.ratioErr
}

type fakeArchive struct {
	mu       sync.Mutex
	stored   map[string][]domain.HistoricalPoint
	getErr   error
	upserted int
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{stored: make(map[string][]domain.HistoricalPoint)}
}

func (a *fakeArchive) UpsertPoints(ctx context.Context, symbol string, points []domain.HistoricalPoint) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.upserted += len(points)
	a.stored[symbol] = append([]domain.HistoricalPoint(nil), points...)
	return nil
}

func (a *fakeArchive) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]domain.HistoricalPoint, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.getErr != nil {
		return nil, a.getErr
	}
	return a.stored[symbol], nil
}

// fakeCalendar treats every day as a business day except weekends.
type fakeCalendar struct {
	open bool
}

func (c fakeCalendar) QuoteTTL(time.Time) time.Duration {
	if c.open {
		return 30 * time.Second
	}
	return 5 * time.Minute
}

func (c fakeCalendar) RollForward(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func (c fakeCalendar) Location() *time.Location {
	return time.UTC
}

type fakeFeeds struct {
	mu    sync.Mutex
	docs  map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeFeeds) FetchFeed(ctx context.Context, name, feedURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.fail[name] {
		return "", errUpstream
	}
	return f.docs[name], nil
}

type fakeFilings struct {
	subs *provider.Submissions
	err  error
}

func (f *fakeFilings) FetchSubmissions(ctx context.Context, cik string) (*provider.Submissions, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subs, nil
}

type fakePosts struct {
	posts []domain.Post
	err   error
}

func (f *fakePosts) FetchPosts(ctx context.Context, handle string, now time.Time) ([]domain.Post, error) {
	return f.posts, f.err
}

func dailyPoints(start time.Time, n int) []domain.HistoricalPoint {
	points := make([]domain.HistoricalPoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, domain.HistoricalPoint{
			Date:   start.AddDate(0, 0, i).Format(domain.DateLayout),
			Open:   20 + float64(i),
			High:   21 + float64(i),
			Low:    19 + float64(i),
			Close:  20.5 + float64(i),
			Volume: 1000,
		})
	}
	return points
}
