package job

import (
	"context"
	"log"
	"time"

	"gmedash/internal/domain"
	"gmedash/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type MarketWarmer interface {
	GetQuote(ctx context.Context, symbol string) (service.Result[domain.Quote], error)
	GetHistorical(ctx context.Context, symbol string, period domain.Period) (service.Result[[]domain.HistoricalPoint], error)
}

type NewsWarmer interface {
	GetNews(ctx context.Context) (service.Result[[]domain.NewsItem], error)
}

// CacheWarmer keeps the quote, news and history caches populated so the
// stale tier has something to serve before the first request arrives.
type CacheWarmer struct {
	tracer       trace.Tracer
	market       MarketWarmer
	news         NewsWarmer
	symbol       string
	pollInterval time.Duration

	newsInterval    time.Duration
	newsDelay       time.Duration
	historyInterval time.Duration
	historyDelay    time.Duration
}

func NewCacheWarmer(tracer trace.Tracer, market MarketWarmer, news NewsWarmer, symbol string, pollIntervalSecs int) *CacheWarmer {
	return &CacheWarmer{
		tracer:          tracer,
		market:          market,
		news:            news,
		symbol:          symbol,
		pollInterval:    time.Duration(pollIntervalSecs) * time.Second,
		newsInterval:    5 * time.Minute,
		newsDelay:       10 * time.Second,
		historyInterval: 5 * time.Minute,
		historyDelay:    30 * time.Second,
	}
}

// Start launches the warming loops and blocks until ctx is cancelled. A zero
// poll interval disables warming.
func (w *CacheWarmer) Start(ctx context.Context) {
	if w.pollInterval <= 0 {
		log.Println("Cache warmer disabled")
		<-ctx.Done()
		return
	}
	log.Println("Cache warmer starting...")

	// Tier 1: quote every pollInterval
	go w.loop(ctx, "quote", 0, w.pollInterval, func(ctx context.Context) error {
		_, err := w.market.GetQuote(ctx, w.symbol)
		return err
	})

	// Tier 2: news feeds
	go w.loop(ctx, "news", w.newsDelay, w.newsInterval, func(ctx context.Context) error {
		_, err := w.news.GetNews(ctx)
		return err
	})

	// Tier 3: one history period per tick, round-robin
	periodIndex := 0
	go w.loop(ctx, "history", w.historyDelay, w.historyInterval, func(ctx context.Context) error {
		return w.warmNextPeriod(ctx, &periodIndex)
	})

	<-ctx.Done()
	log.Println("Cache warmer stopped")
}

func (w *CacheWarmer) loop(ctx context.Context, name string, delay, interval time.Duration, fn func(context.Context) error) {
	if delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	w.run(ctx, name, fn)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.run(ctx, name, fn)
		}
	}
}

func (w *CacheWarmer) run(ctx context.Context, name string, fn func(context.Context) error) {
	ctx, span := w.tracer.Start(ctx, "cache-warmer.run")
	defer span.End()
	span.SetAttributes(attribute.String("tier", name))

	if err := fn(ctx); err != nil {
		log.Printf("cache warmer %s error: %v", name, err)
	}
}

func (w *CacheWarmer) warmNextPeriod(ctx context.Context, periodIndex *int) error {
	periods := domain.SupportedPeriods
	period := periods[*periodIndex%len(periods)]
	*periodIndex++

	_, err := w.market.GetHistorical(ctx, w.symbol, period)
	return err
}
