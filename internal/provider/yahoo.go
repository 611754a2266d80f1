package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gmedash/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider reads the unauthenticated Yahoo Finance chart, quoteSummary
// and options endpoints. It is the fallback for every market dataset.
type YahooProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
	health    *Health
}

func NewYahooProvider(tracer trace.Tracer, client *http.Client, userAgent string, health *Health) *YahooProvider {
	return &YahooProvider{
		client:    client,
		baseURL:   yahooBaseURL,
		userAgent: userAgent,
		tracer:    tracer,
		health:    health,
	}
}

type yahooChartMeta struct {
	Symbol               string  `json:"symbol"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	PreviousClose        float64 `json:"previousClose"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
	RegularMarketOpen    float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  float64 `json:"regularMarketVolume"`
	FiftyTwoWeekHigh     float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      float64 `json:"fiftyTwoWeekLow"`
	EarningsTimestamp    int64   `json:"earningsTimestamp"`
}

type yahooChartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type yahooChartResult struct {
	Meta       yahooChartMeta `json:"meta"`
	Timestamp  []int64        `json:"timestamp"`
	Indicators struct {
		Quote []yahooChartQuote `json:"quote"`
	} `json:"indicators"`
}

func (r *yahooChartResult) quote() *yahooChartQuote {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	return &r.Indicators.Quote[0]
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol string, params url.Values) (*yahooChartResult, error) {
	var raw struct {
		Chart struct {
			Result []yahooChartResult `json:"result"`
			Error  *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(symbol), params.Encode())
	if err := p.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", raw.Chart.Error.Code, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	return &raw.Chart.Result[0], nil
}

// FetchQuote builds a quote from the intraday chart. Day high, low and volume
// fall back to the minute bars when the chart meta omits them.
func (p *YahooProvider) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-quote")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	res, err := p.fetchChart(ctx, symbol, url.Values{
		"interval":       {"1m"},
		"range":          {"1d"},
		"includePrePost": {"true"},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	q := res.quote()
	if q == nil || len(res.Timestamp) == 0 {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, ErrNoData)
	}

	last := len(res.Timestamp) - 1
	meta := res.Meta
	price := meta.RegularMarketPrice
	if price == 0 {
		price = elem(q.Close, last)
	}
	prevClose := meta.PreviousClose
	if prevClose == 0 {
		prevClose = meta.ChartPreviousClose
	}
	if price <= 0 || prevClose <= 0 || !finite(price) || !finite(prevClose) {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, ErrNoData)
	}

	open := meta.RegularMarketOpen
	if open == 0 {
		open = elem(q.Open, 0)
	}
	high := meta.RegularMarketDayHigh
	if high == 0 {
		high = maxPositive(q.High)
	}
	low := meta.RegularMarketDayLow
	if low == 0 {
		low = minPositive(q.Low)
	}
	volume := meta.RegularMarketVolume
	if volume == 0 {
		volume = elem(q.Volume, last)
	}
	if meta.Symbol != "" {
		symbol = meta.Symbol
	}

	change := price - prevClose
	return &domain.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: fmt.Sprintf("%.2f%%", change/prevClose*100),
		Open:          open,
		High:          high,
		Low:           low,
		Volume:        strconv.FormatFloat(volume, 'f', -1, 64),
		PreviousClose: prevClose,
		Source:        "yahoo",
	}, nil
}

// FetchHistorical returns daily points for a chart range such as "1mo".
func (p *YahooProvider) FetchHistorical(ctx context.Context, symbol, chartRange string) ([]domain.HistoricalPoint, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-historical")
	defer span.End()
	span.SetAttributes(attribute.String("range", chartRange))

	res, err := p.fetchChart(ctx, symbol, url.Values{"interval": {"1d"}, "range": {chartRange}})
	if err != nil {
		return nil, fmt.Errorf("fetch historical for %s: %w", symbol, err)
	}
	q := res.quote()
	if q == nil || len(res.Timestamp) == 0 {
		return nil, fmt.Errorf("fetch historical for %s: %w", symbol, ErrNoData)
	}
	points := buildPoints(res.Timestamp, q.Open, q.High, q.Low, q.Close, q.Volume)
	if len(points) == 0 {
		return nil, fmt.Errorf("fetch historical for %s: %w", symbol, ErrNoData)
	}
	return points, nil
}

// FetchChartMetrics returns the 52-week range from a one year daily chart.
// Only the range fields are set.
func (p *YahooProvider) FetchChartMetrics(ctx context.Context, symbol string) (*domain.CompanyMetrics, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-chart-metrics")
	defer span.End()

	res, err := p.fetchChart(ctx, symbol, url.Values{"interval": {"1d"}, "range": {"1y"}})
	if err != nil {
		return nil, fmt.Errorf("fetch chart metrics for %s: %w", symbol, err)
	}

	high := optional(res.Meta.FiftyTwoWeekHigh)
	low := optional(res.Meta.FiftyTwoWeekLow)
	if q := res.quote(); q != nil {
		if high == nil {
			high = optional(maxPositive(q.High))
		}
		if low == nil {
			low = optional(minPositive(q.Low))
		}
	}

	return &domain.CompanyMetrics{
		MarketCapFormatted: "N/A",
		FiftyTwoWeekHigh:   high,
		FiftyTwoWeekLow:    low,
		Source:             "yahoo",
	}, nil
}

// FetchEarningsDate returns the next earnings timestamp announced in the
// chart meta.
func (p *YahooProvider) FetchEarningsDate(ctx context.Context, symbol string) (time.Time, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-earnings-date")
	defer span.End()

	res, err := p.fetchChart(ctx, symbol, url.Values{"interval": {"1d"}, "range": {"1d"}})
	if err != nil {
		return time.Time{}, fmt.Errorf("fetch earnings date for %s: %w", symbol, err)
	}
	if res.Meta.EarningsTimestamp <= 0 {
		return time.Time{}, fmt.Errorf("fetch earnings date for %s: %w", symbol, ErrNoData)
	}
	return time.Unix(res.Meta.EarningsTimestamp, 0).UTC(), nil
}

type yahooRawValue struct {
	Raw *float64 `json:"raw"`
}

// FetchShortInterest reads defaultKeyStatistics from quoteSummary.
func (p *YahooProvider) FetchShortInterest(ctx context.Context, symbol string, now time.Time) (*domain.ShortInterest, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-short-interest")
	defer span.End()

	var raw struct {
		QuoteSummary struct {
			Result []struct {
				Stats *struct {
					ShortPercentOfFloat *yahooRawValue `json:"shortPercentOfFloat"`
					ShortRatio          *yahooRawValue `json:"shortRatio"`
					SharesShort         *yahooRawValue `json:"sharesShort"`
				} `json:"defaultKeyStatistics"`
			} `json:"result"`
		} `json:"quoteSummary"`
	}
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=defaultKeyStatistics", p.baseURL, url.PathEscape(symbol))
	if err := p.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch short interest for %s: %w", symbol, err)
	}
	if len(raw.QuoteSummary.Result) == 0 || raw.QuoteSummary.Result[0].Stats == nil {
		return nil, fmt.Errorf("fetch short interest for %s: %w", symbol, ErrNoData)
	}
	stats := raw.QuoteSummary.Result[0].Stats
	if stats.ShortPercentOfFloat == nil || stats.ShortPercentOfFloat.Raw == nil {
		return nil, fmt.Errorf("fetch short interest for %s: %w", symbol, ErrNoData)
	}

	out := &domain.ShortInterest{
		Date:          now.UTC().Format(domain.DateLayout),
		ShortInterest: round2(*stats.ShortPercentOfFloat.Raw * 100),
		Source:        "yahoo",
	}
	if stats.ShortRatio != nil {
		out.DaysToCover = valueOf(stats.ShortRatio.Raw)
	}
	if stats.SharesShort != nil {
		out.SharesShort = stats.SharesShort.Raw
	}
	return out, nil
}

// FetchOptionsFlow sums volume and open interest over the nearest expiry.
func (p *YahooProvider) FetchOptionsFlow(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-options-flow")
	defer span.End()

	type contract struct {
		Volume       float64 `json:"volume"`
		OpenInterest float64 `json:"openInterest"`
	}
	var raw struct {
		OptionChain struct {
			Result []struct {
				Options []struct {
					Calls []contract `json:"calls"`
					Puts  []contract `json:"puts"`
				} `json:"options"`
			} `json:"result"`
		} `json:"optionChain"`
	}
	endpoint := fmt.Sprintf("%s/v7/finance/options/%s", p.baseURL, url.PathEscape(symbol))
	if err := p.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch options for %s: %w", symbol, err)
	}
	if len(raw.OptionChain.Result) == 0 || len(raw.OptionChain.Result[0].Options) == 0 {
		return nil, fmt.Errorf("fetch options for %s: %w", symbol, ErrNoData)
	}

	chain := raw.OptionChain.Result[0].Options[0]
	var callVol, putVol, callOI, putOI float64
	for _, c := range chain.Calls {
		callVol += c.Volume
		callOI += c.OpenInterest
	}
	for _, c := range chain.Puts {
		putVol += c.Volume
		putOI += c.OpenInterest
	}
	var ratio *float64
	if callVol > 0 {
		r := putVol / callVol
		ratio = &r
	}

	return &domain.OptionsFlow{
		Date:             now.UTC().Format(domain.DateLayout),
		CallVolume:       &callVol,
		PutVolume:        &putVol,
		CallOpenInterest: &callOI,
		PutOpenInterest:  &putOI,
		PutCallRatio:     ratio,
		Source:           "Yahoo Finance",
	}, nil
}

func (p *YahooProvider) getJSON(ctx context.Context, endpoint string, dst any) error {
	body, err := fetchBody(ctx, p.client, "yahoo", endpoint, map[string]string{
		"User-Agent": p.userAgent,
		"Accept":     "application/json",
		"Referer":    "https://finance.yahoo.com/",
	})
	if err == nil {
		err = json.Unmarshal(body, dst)
	}
	p.health.Record("yahoo", err)
	return err
}

func elem(s []*float64, i int) float64 {
	if i < 0 || i >= len(s) || s[i] == nil || !finite(*s[i]) {
		return 0
	}
	return *s[i]
}

func maxPositive(s []*float64) float64 {
	var out float64
	for _, v := range s {
		if v != nil && finite(*v) && *v > out {
			out = *v
		}
	}
	return out
}

func minPositive(s []*float64) float64 {
	var out float64
	for _, v := range s {
		if v == nil || !finite(*v) || *v <= 0 {
			continue
		}
		if out == 0 || *v < out {
			out = *v
		}
	}
	return out
}
