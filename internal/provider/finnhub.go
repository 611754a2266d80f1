package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gmedash/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubProvider is the primary quote, metrics and candle source. All calls
// return ErrNotConfigured when no API key is set.
type FinnhubProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
	health  *Health
}

func NewFinnhubProvider(tracer trace.Tracer, client *http.Client, apiKey string, perMinute int, health *Health) *FinnhubProvider {
	return &FinnhubProvider{
		client:  client,
		baseURL: finnhubBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		tracer:  tracer,
		limiter: PerMinute(perMinute),
		health:  health,
	}
}

func (p *FinnhubProvider) Configured() bool {
	return p.apiKey != ""
}

func (p *FinnhubProvider) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "finnhub.fetch-quote")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	var raw struct {
		Current       *float64 `json:"c"`
		Change        *float64 `json:"d"`
		ChangePercent *float64 `json:"dp"`
		High          *float64 `json:"h"`
		Low           *float64 `json:"l"`
		Open          *float64 `json:"o"`
		PreviousClose *float64 `json:"pc"`
	}
	if err := p.getJSON(ctx, "/quote", url.Values{"symbol": {symbol}}, &raw); err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	if raw.Current == nil || *raw.Current <= 0 || !finite(*raw.Current) {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, ErrNoData)
	}

	return &domain.Quote{
		Symbol:        symbol,
		Price:         *raw.Current,
		Change:        valueOf(raw.Change),
		ChangePercent: fmt.Sprintf("%.2f%%", valueOf(raw.ChangePercent)),
		Open:          valueOf(raw.Open),
		High:          valueOf(raw.High),
		Low:           valueOf(raw.Low),
		Volume:        "0",
		PreviousClose: valueOf(raw.PreviousClose),
		Source:        "finnhub",
	}, nil
}

func (p *FinnhubProvider) fetchMetricMap(ctx context.Context, symbol string) (map[string]any, error) {
	var raw struct {
		Metric map[string]any `json:"metric"`
	}
	if err := p.getJSON(ctx, "/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}}, &raw); err != nil {
		return nil, err
	}
	if len(raw.Metric) == 0 {
		return nil, ErrNoData
	}
	return raw.Metric, nil
}

// FetchMetrics maps the metric=all payload. Finnhub reports market cap,
// average volume and share count in millions.
func (p *FinnhubProvider) FetchMetrics(ctx context.Context, symbol string) (*domain.CompanyMetrics, error) {
	ctx, span := p.tracer.Start(ctx, "finnhub.fetch-metrics")
	defer span.End()

	m, err := p.fetchMetricMap(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics for %s: %w", symbol, err)
	}

	pe := optional(asFloat(m["peBasicExclExtraTTM"]))
	if pe == nil {
		pe = optional(asFloat(m["peTTM"]))
	}
	eps := optional(asFloat(m["epsBasicExclExtraItemsTTM"]))
	if eps == nil {
		eps = optional(asFloat(m["epsTTM"]))
	}
	marketCap := scaled(asFloat(m["marketCapitalization"]), 1e6)

	return &domain.CompanyMetrics{
		MarketCap:          marketCap,
		MarketCapFormatted: FormatMarketCap(marketCap),
		PERatio:            pe,
		EPS:                eps,
		Beta:               optional(asFloat(m["beta"])),
		FiftyTwoWeekHigh:   optional(asFloat(m["52WeekHigh"])),
		FiftyTwoWeekLow:    optional(asFloat(m["52WeekLow"])),
		AvgVolume:          scaled(asFloat(m["10DayAverageTradingVolume"]), 1e6),
		SharesOutstanding:  scaled(asFloat(m["sharesOutstanding"]), 1e6),
		DividendYield:      optional(asFloat(m["dividendYieldIndicatedAnnual"])),
		Source:             "finnhub",
	}, nil
}

// FetchShortInterest reads the short fields of the metric payload, which the
// free tier populates only for some tickers.
func (p *FinnhubProvider) FetchShortInterest(ctx context.Context, symbol string, now time.Time) (*domain.ShortInterest, error) {
	ctx, span := p.tracer.Start(ctx, "finnhub.fetch-short-interest")
	defer span.End()

	m, err := p.fetchMetricMap(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch short interest for %s: %w", symbol, err)
	}
	pct, ok := m["shortPercentOutstanding"]
	if !ok || pct == nil {
		return nil, fmt.Errorf("fetch short interest for %s: %w", symbol, ErrNoData)
	}

	return &domain.ShortInterest{
		Date:          now.UTC().Format(domain.DateLayout),
		ShortInterest: round2(asFloat(pct) * 100),
		DaysToCover:   asFloat(m["shortRatio"]),
		SharesShort:   optional(asFloat(m["sharesShort"])),
		Source:        "finnhub",
	}, nil
}

// FetchCandles returns daily candles between from and to, ascending, keeping
// only points with a positive close.
func (p *FinnhubProvider) FetchCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.HistoricalPoint, error) {
	ctx, span := p.tracer.Start(ctx, "finnhub.fetch-candles")
	defer span.End()

	var raw struct {
		Status string     `json:"s"`
		Times  []int64    `json:"t"`
		Open   []*float64 `json:"o"`
		High   []*float64 `json:"h"`
		Low    []*float64 `json:"l"`
		Close  []*float64 `json:"c"`
		Volume []*float64 `json:"v"`
	}
	params := url.Values{
		"symbol":     {symbol},
		"resolution": {"D"},
		"from":       {fmt.Sprintf("%d", from.Unix())},
		"to":         {fmt.Sprintf("%d", to.Unix())},
	}
	if err := p.getJSON(ctx, "/stock/candle", params, &raw); err != nil {
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}
	if raw.Status != "ok" || len(raw.Times) == 0 {
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, ErrNoData)
	}

	points := buildPoints(raw.Times, raw.Open, raw.High, raw.Low, raw.Close, raw.Volume)
	if len(points) == 0 {
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, ErrNoData)
	}
	span.SetAttributes(attribute.Int("points", len(points)))
	return points, nil
}

func (p *FinnhubProvider) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	if !p.Configured() {
		return ErrNotConfigured
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := fetchBody(ctx, p.client, "finnhub", p.baseURL+path+"?"+params.Encode(), map[string]string{
		"Accept":          "application/json",
		"X-Finnhub-Token": p.apiKey,
	})
	if err == nil {
		err = json.Unmarshal(body, dst)
	}
	p.health.Record("finnhub", err)
	return err
}

// FormatMarketCap renders a dollar amount with a T/B/M suffix.
func FormatMarketCap(v *float64) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	switch n := *v; {
	case n >= 1e12:
		return fmt.Sprintf("$%.2fT", n/1e12)
	case n >= 1e9:
		return fmt.Sprintf("$%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("$%.2fM", n/1e6)
	default:
		return fmt.Sprintf("$%.0f", n)
	}
}
