package handler

import (
	"context"
	"time"

	"gmedash/internal/domain"
	"gmedash/internal/provider"
	"gmedash/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type stubMarket struct {
	quote        service.Result[domain.Quote]
	quoteErr     error
	info         service.Result[domain.CompanyInfo]
	infoErr      error
	history      service.Result[[]domain.HistoricalPoint]
	historyErr   error
	short        service.Result[[]domain.ShortInterest]
	shortErr     error
	options      service.Result[[]domain.OptionsFlow]
	optionsErr   error
	lastSymbol   string
	lastPeriod   domain.Period
	historyCalls int
}

func (s *stubMarket) GetQuote(ctx context.Context, symbol string) (service.Result[domain.Quote], error) {
	s.lastSymbol = symbol
	return s.quote, s.quoteErr
}

func (s *stubMarket) GetCompanyInfo(ctx context.Context) (service.Result[domain.CompanyInfo], error) {
	return s.info, s.infoErr
}

func (s *stubMarket) GetHistorical(ctx context.Context, symbol string, period domain.Period) (service.Result[[]domain.HistoricalPoint], error) {
	s.lastSymbol = symbol
	s.lastPeriod = period
	s.historyCalls++
	return s.history, s.historyErr
}

func (s *stubMarket) GetShortInterest(ctx context.Context) (service.Result[[]domain.ShortInterest], error) {
	return s.short, s.shortErr
}

func (s *stubMarket) GetOptionsFlow(ctx context.Context, symbol string) (service.Result[[]domain.OptionsFlow], error) {
	s.lastSymbol = symbol
	return s.options, s.optionsErr
}

type stubContent struct {
	news       service.Result[[]domain.NewsItem]
	newsErr    error
	press      service.Result[[]domain.PressRelease]
	pressErr   error
	filings    service.Result[[]domain.Filing]
	filingsErr error
	posts      service.Result[[]domain.Post]
	postsErr   error
	lastCIK    string
}

func (s *stubContent) GetNews(ctx context.Context) (service.Result[[]domain.NewsItem], error) {
	return s.news, s.newsErr
}

func (s *stubContent) GetPressReleases(ctx context.Context) (service.Result[[]domain.PressRelease], error) {
	return s.press, s.pressErr
}

func (s *stubContent) GetFilings(ctx context.Context, cik string) (service.Result[[]domain.Filing], error) {
	s.lastCIK = cik
	return s.filings, s.filingsErr
}

func (s *stubContent) GetPosts(ctx context.Context) (service.Result[[]domain.Post], error) {
	return s.posts, s.postsErr
}

func (s *stubContent) DefaultCIK() string {
	return "1326380"
}

func (s *stubContent) SocialHandle() string {
	return "ryancohen"
}

type stubEvents struct {
	events service.Result[[]domain.Event]
	err    error
}

func (s stubEvents) GetEvents(ctx context.Context) (service.Result[[]domain.Event], error) {
	return s.events, s.err
}

type stubHealth map[string]provider.HealthStatus

func (s stubHealth) Snapshot() map[string]provider.HealthStatus {
	return s
}

func newTestRouter(market MarketData, content ContentData, events EventData, health ProviderHealth, key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(trace.NewNoopTracerProvider().Tracer("handler-test"), market, content, events, health, "GME", key)
	h.now = testTime
	h.RegisterRoutes(r)
	return r
}

func testTime() time.Time {
	return time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)
}
