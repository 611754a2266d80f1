package handler

import (
	"context"
	"regexp"
	"strings"
	"time"

	"gmedash/internal/domain"
	"gmedash/internal/provider"
	"gmedash/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (service.Result[domain.Quote], error)
	GetCompanyInfo(ctx context.Context) (service.Result[domain.CompanyInfo], error)
	GetHistorical(ctx context.Context, symbol string, period domain.Period) (service.Result[[]domain.HistoricalPoint], error)
	GetShortInterest(ctx context.Context) (service.Result[[]domain.ShortInterest], error)
	GetOptionsFlow(ctx context.Context, symbol string) (service.Result[[]domain.OptionsFlow], error)
}

type ContentData interface {
	GetNews(ctx context.Context) (service.Result[[]domain.NewsItem], error)
	GetPressReleases(ctx context.Context) (service.Result[[]domain.PressRelease], error)
	GetFilings(ctx context.Context, cik string) (service.Result[[]domain.Filing], error)
	GetPosts(ctx context.Context) (service.Result[[]domain.Post], error)
	DefaultCIK() string
	SocialHandle() string
}

type EventData interface {
	GetEvents(ctx context.Context) (service.Result[[]domain.Event], error)
}

type ProviderHealth interface {
	Snapshot() map[string]provider.HealthStatus
}

type Handler struct {
	tracer         trace.Tracer
	market         MarketData
	content        ContentData
	events         EventData
	health         ProviderHealth
	symbol         string
	diagnosticsKey string
	now            func() time.Time
}

func New(tracer trace.Tracer, market MarketData, content ContentData, events EventData, health ProviderHealth, symbol, diagnosticsKey string) *Handler {
	return &Handler{
		tracer:         tracer,
		market:         market,
		content:        content,
		events:         events,
		health:         health,
		symbol:         symbol,
		diagnosticsKey: diagnosticsKey,
		now:            time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/stock", h.GetStock)
	api.GET("/company-info", h.GetCompanyInfo)
	api.GET("/historical", h.GetHistorical)
	api.GET("/news", h.GetNews)
	api.GET("/press-releases", h.GetPressReleases)
	api.GET("/sec", h.GetSECFilings)
	api.GET("/short-interest", h.GetShortInterest)
	api.GET("/events", h.GetEvents)
	api.GET("/options-flow", h.GetOptionsFlow)
	api.GET("/twitter", h.GetTwitter)
	api.GET("/providers/health", APIKeyAuth(h.diagnosticsKey), h.GetProviderHealth)
}

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// symbolParam reads ?symbol=, defaulting to the configured ticker.
func (h *Handler) symbolParam(c *gin.Context) (string, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if symbol == "" {
		symbol = h.symbol
	}
	return symbol, symbolPattern.MatchString(symbol)
}

// withProvenance adds the bookkeeping fields of res to body.
func withProvenance[T any](body gin.H, res service.Result[T]) gin.H {
	p := provenanceOf(res)
	body["source"] = p.Source
	if p.OriginalSource != "" {
		body["originalSource"] = p.OriginalSource
	}
	body["cacheAge"] = p.CacheAge
	if p.Stale {
		body["stale"] = true
	}
	return body
}
