package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"gmedash/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	companyInfoTTL   = time.Hour
	historicalTTL    = 5 * time.Minute
	shortInterestTTL = 24 * time.Hour
	optionsFlowTTL   = 5 * time.Minute
	archiveTimeout   = 5 * time.Second
)

type FinnhubSource interface {
	FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	FetchMetrics(ctx context.Context, symbol string) (*domain.CompanyMetrics, error)
	FetchCandles(ctx context.Context, symbol string, from, to time.Time) ([]domain.HistoricalPoint, error)
	FetchShortInterest(ctx context.Context, symbol string, now time.Time) (*domain.ShortInterest, error)
}

type YahooSource interface {
	FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	FetchHistorical(ctx context.Context, symbol, chartRange string) ([]domain.HistoricalPoint, error)
	FetchChartMetrics(ctx context.Context, symbol string) (*domain.CompanyMetrics, error)
	FetchShortInterest(ctx context.Context, symbol string, now time.Time) (*domain.ShortInterest, error)
	FetchOptionsFlow(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error)
	FetchEarningsDate(ctx context.Context, symbol string) (time.Time, error)
}

type OptionsScraper interface {
	FetchMarketWatchVolume(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error)
	FetchBarchartPutCall(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error)
}

// CandleArchive is the durable tier of the historical waterfall.
type CandleArchive interface {
	UpsertPoints(ctx context.Context, symbol string, points []domain.HistoricalPoint) error
	GetRange(ctx context.Context, symbol string, from, to time.Time) ([]domain.HistoricalPoint, error)
}

type SessionCalendar interface {
	QuoteTTL(t time.Time) time.Duration
	RollForward(t time.Time) time.Time
	Location() *time.Location
}

// MarketService resolves the price, metrics, history, short interest and
// options datasets.
type MarketService struct {
	tracer   trace.Tracer
	tiers    *Tiers
	finnhub  FinnhubSource
	yahoo    YahooSource
	scraper  OptionsScraper
	archive  CandleArchive
	calendar SessionCalendar
	profile  domain.CompanyProfile
}

// NewMarketService wires the market datasets. archive may be nil.
func NewMarketService(
	tracer trace.Tracer,
	tiers *Tiers,
	finnhub FinnhubSource,
	yahoo YahooSource,
	scraper OptionsScraper,
	archive CandleArchive,
	calendar SessionCalendar,
	profile domain.CompanyProfile,
) *MarketService {
	return &MarketService{
		tracer:   tracer,
		tiers:    tiers,
		finnhub:  finnhub,
		yahoo:    yahoo,
		scraper:  scraper,
		archive:  archive,
		calendar: calendar,
		profile:  profile,
	}
}

// GetQuote prefers Finnhub, borrowing volume from Yahoo since the Finnhub
// quote has none.
func (s *MarketService) GetQuote(ctx context.Context, symbol string) (Result[domain.Quote], error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-quote")
	defer span.End()

	return Waterfall[domain.Quote]{
		Key: "stock_quote_" + symbol,
		TTL: s.calendar.QuoteTTL,
		Attempts: []Attempt[domain.Quote]{
			{Name: "finnhub", Fetch: func(ctx context.Context) (domain.Quote, error) {
				q, err := s.finnhub.FetchQuote(ctx, symbol)
				if err != nil {
					return domain.Quote{}, err
				}
				if yq, err := s.yahoo.FetchQuote(ctx, symbol); err == nil {
					q.Volume = yq.Volume
				}
				return *q, nil
			}},
			{Name: "yahoo", Fetch: func(ctx context.Context) (domain.Quote, error) {
				q, err := s.yahoo.FetchQuote(ctx, symbol)
				if err != nil {
					return domain.Quote{}, err
				}
				return *q, nil
			}},
		},
		Validate: validateQuote,
	}.Run(ctx, s.tiers)
}

// GetCompanyInfo merges the static profile with live metrics. Finnhub is
// accepted only when it reports a market cap.
func (s *MarketService) GetCompanyInfo(ctx context.Context) (Result[domain.CompanyInfo], error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-company-info")
	defer span.End()

	symbol := s.profile.Symbol
	return Waterfall[domain.CompanyInfo]{
		Key: "company_info_" + symbol,
		TTL: fixedTTL(companyInfoTTL),
		Attempts: []Attempt[domain.CompanyInfo]{
			{Name: "finnhub", Fetch: func(ctx context.Context) (domain.CompanyInfo, error) {
				m, err := s.finnhub.FetchMetrics(ctx, symbol)
				if err != nil {
					return domain.CompanyInfo{}, err
				}
				if m.MarketCap == nil {
					return domain.CompanyInfo{}, errors.New("finnhub metrics without market cap")
				}
				if m.FiftyTwoWeekHigh == nil || m.FiftyTwoWeekLow == nil {
					if ym, err := s.yahoo.FetchChartMetrics(ctx, symbol); err == nil {
						if m.FiftyTwoWeekHigh == nil {
							m.FiftyTwoWeekHigh = ym.FiftyTwoWeekHigh
						}
						if m.FiftyTwoWeekLow == nil {
							m.FiftyTwoWeekLow = ym.FiftyTwoWeekLow
						}
					}
				}
				return mergeCompanyInfo(s.profile, m), nil
			}},
			{Name: "yahoo", Fetch: func(ctx context.Context) (domain.CompanyInfo, error) {
				m, err := s.yahoo.FetchChartMetrics(ctx, symbol)
				if err != nil {
					return domain.CompanyInfo{}, err
				}
				return mergeCompanyInfo(s.profile, m), nil
			}},
		},
		Validate: validateCompanyInfo,
		Placeholder: func() domain.CompanyInfo {
			return mergeCompanyInfo(s.profile, &domain.CompanyMetrics{MarketCapFormatted: "N/A", Source: "static"})
		},
	}.Run(ctx, s.tiers)
}

func mergeCompanyInfo(profile domain.CompanyProfile, m *domain.CompanyMetrics) domain.CompanyInfo {
	formatted := m.MarketCapFormatted
	if formatted == "" {
		formatted = "N/A"
	}
	return domain.CompanyInfo{
		CompanyProfile:     profile,
		MarketCap:          m.MarketCap,
		MarketCapFormatted: formatted,
		PERatio:            m.PERatio,
		EPS:                m.EPS,
		DividendYield:      m.DividendYield,
		FiftyTwoWeekHigh:   m.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:    m.FiftyTwoWeekLow,
		AvgVolume:          m.AvgVolume,
		Beta:               m.Beta,
		SharesOutstanding:  m.SharesOutstanding,
		DataSource:         m.Source,
	}
}

// GetHistorical resolves daily points for period. Live results are copied
// to the archive, which in turn backs the waterfall once the caches are
// exhausted.
func (s *MarketService) GetHistorical(ctx context.Context, symbol string, period domain.Period) (Result[[]domain.HistoricalPoint], error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-historical")
	defer span.End()

	now := s.tiers.now()
	from := now.Add(-period.Length())

	w := Waterfall[[]domain.HistoricalPoint]{
		Key: fmt.Sprintf("historical_%s_%s", symbol, period),
		TTL: fixedTTL(historicalTTL),
		Attempts: []Attempt[[]domain.HistoricalPoint]{
			{Name: "finnhub", Fetch: func(ctx context.Context) ([]domain.HistoricalPoint, error) {
				return s.finnhub.FetchCandles(ctx, symbol, from, now)
			}},
			{Name: "yahoo", Fetch: func(ctx context.Context) ([]domain.HistoricalPoint, error) {
				return s.yahoo.FetchHistorical(ctx, symbol, period.YahooRange())
			}},
		},
		Validate: validatePoints,
	}
	if s.archive != nil {
		w.OnFresh = func(ctx context.Context, points []domain.HistoricalPoint) {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
			defer cancel()
			if err := s.archive.UpsertPoints(ctx, symbol, points); err != nil {
				log.Printf("archive upsert failed for %s: %v", symbol, err)
			}
		}
		w.Archive = func(ctx context.Context) ([]domain.HistoricalPoint, error) {
			return s.archive.GetRange(ctx, symbol, from, now)
		}
	}
	return w.Run(ctx, s.tiers)
}

// GetShortInterest returns a one element series so the chart widget can plot
// it alongside future observations.
func (s *MarketService) GetShortInterest(ctx context.Context) (Result[[]domain.ShortInterest], error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-short-interest")
	defer span.End()

	symbol := s.profile.Symbol
	wrap := func(fetch func(context.Context, string, time.Time) (*domain.ShortInterest, error)) func(context.Context) ([]domain.ShortInterest, error) {
		return func(ctx context.Context) ([]domain.ShortInterest, error) {
			si, err := fetch(ctx, symbol, s.tiers.now())
			if err != nil {
				return nil, err
			}
			return []domain.ShortInterest{*si}, nil
		}
	}
	return Waterfall[[]domain.ShortInterest]{
		Key: "short_interest_" + symbol,
		TTL: fixedTTL(shortInterestTTL),
		Attempts: []Attempt[[]domain.ShortInterest]{
			{Name: "finnhub", Fetch: wrap(s.finnhub.FetchShortInterest)},
			{Name: "yahoo", Fetch: wrap(s.yahoo.FetchShortInterest)},
		},
		Validate: validateShortInterest,
	}.Run(ctx, s.tiers)
}

// GetOptionsFlow queries every options source concurrently and keeps
// whichever answered.
func (s *MarketService) GetOptionsFlow(ctx context.Context, symbol string) (Result[[]domain.OptionsFlow], error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-options-flow")
	defer span.End()

	return Waterfall[[]domain.OptionsFlow]{
		Key: "options_flow_" + symbol,
		TTL: fixedTTL(optionsFlowTTL),
		Attempts: []Attempt[[]domain.OptionsFlow]{
			{Name: "options", Fetch: func(ctx context.Context) ([]domain.OptionsFlow, error) {
				return s.collectOptions(ctx, symbol)
			}},
		},
		Validate: validateOptionsFlow,
	}.Run(ctx, s.tiers)
}

func (s *MarketService) collectOptions(ctx context.Context, symbol string) ([]domain.OptionsFlow, error) {
	now := s.tiers.now()
	fetchers := []struct {
		name  string
		fetch func(context.Context, string, time.Time) (*domain.OptionsFlow, error)
	}{
		{"yahoo", s.yahoo.FetchOptionsFlow},
		{"marketwatch", s.scraper.FetchMarketWatchVolume},
		{"barchart", s.scraper.FetchBarchartPutCall},
	}

	results := make([]*domain.OptionsFlow, len(fetchers))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fetchers {
		g.Go(func() error {
			flow, err := f.fetch(gctx, symbol, now)
			if err != nil {
				log.Printf("%s options data not accessible: %v", f.name, err)
				return nil
			}
			results[i] = flow
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.OptionsFlow, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if len(out) == 0 {
		return nil, ErrUnavailable
	}
	return out, nil
}

func finiteValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finitePtr(p *float64) bool {
	return p == nil || finiteValue(*p)
}

func validateQuote(q domain.Quote) error {
	if q.Symbol == "" {
		return errors.New("quote without symbol")
	}
	if !finiteValue(q.Price) || q.Price <= 0 {
		return fmt.Errorf("quote price %v out of range", q.Price)
	}
	if !finiteValue(q.Change) {
		return errors.New("quote change not finite")
	}
	for _, v := range []float64{q.Open, q.High, q.Low, q.PreviousClose} {
		if !finiteValue(v) || v < 0 {
			return fmt.Errorf("quote field %v out of range", v)
		}
	}
	return nil
}

func validateCompanyInfo(info domain.CompanyInfo) error {
	for _, p := range []*float64{info.MarketCap, info.PERatio, info.EPS, info.DividendYield, info.FiftyTwoWeekHigh, info.FiftyTwoWeekLow, info.AvgVolume, info.Beta, info.SharesOutstanding} {
		if !finitePtr(p) {
			return errors.New("company metric not finite")
		}
	}
	if info.MarketCap != nil && *info.MarketCap < 0 {
		return errors.New("negative market cap")
	}
	return nil
}

func validatePoints(points []domain.HistoricalPoint) error {
	if len(points) == 0 {
		return errors.New("no points")
	}
	for i, p := range points {
		if !finiteValue(p.Close) || p.Close <= 0 {
			return fmt.Errorf("point %s has close %v", p.Date, p.Close)
		}
		if i > 0 && points[i-1].Date > p.Date {
			return fmt.Errorf("points out of order at %s", p.Date)
		}
	}
	return nil
}

func validateShortInterest(series []domain.ShortInterest) error {
	if len(series) == 0 {
		return errors.New("no short interest")
	}
	for _, si := range series {
		if !finiteValue(si.ShortInterest) || si.ShortInterest < 0 {
			return fmt.Errorf("short interest %v out of range", si.ShortInterest)
		}
		if !finiteValue(si.DaysToCover) || si.DaysToCover < 0 {
			return fmt.Errorf("days to cover %v out of range", si.DaysToCover)
		}
	}
	return nil
}

func validateOptionsFlow(flows []domain.OptionsFlow) error {
	if len(flows) == 0 {
		return errors.New("no options data")
	}
	for _, f := range flows {
		for _, p := range []*float64{f.CallVolume, f.PutVolume, f.CallOpenInterest, f.PutOpenInterest, f.PutCallRatio, f.TotalVolume} {
			if !finitePtr(p) || p != nil && *p < 0 {
				return errors.New("options metric out of range")
			}
		}
	}
	return nil
}
