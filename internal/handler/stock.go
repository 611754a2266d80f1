package handler

import (
	"net/http"

	"gmedash/internal/cache"
	"gmedash/internal/domain"
	"gmedash/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// provenance is the bookkeeping every resolved payload carries.
type provenance struct {
	Source         string `json:"source"`
	OriginalSource string `json:"originalSource,omitempty"`
	CacheAge       int64  `json:"cacheAge"`
	Stale          bool   `json:"stale,omitempty"`
}

func provenanceOf[T any](res service.Result[T]) provenance {
	return provenance{
		Source:         res.Source,
		OriginalSource: res.OriginalSource,
		CacheAge:       cache.AgeSeconds(res.CacheAge),
		Stale:          res.Stale,
	}
}

// quoteResponse flattens the quote. Its Source shadows the provider tag of
// the embedded quote.
type quoteResponse struct {
	domain.Quote
	Source         string `json:"source"`
	OriginalSource string `json:"originalSource,omitempty"`
	CacheAge       int64  `json:"cacheAge"`
	Stale          bool   `json:"stale,omitempty"`
}

type companyInfoResponse struct {
	domain.CompanyInfo
	Source         string `json:"source"`
	OriginalSource string `json:"originalSource,omitempty"`
	CacheAge       int64  `json:"cacheAge"`
	Stale          bool   `json:"stale,omitempty"`
	Message        string `json:"message,omitempty"`
}

// GetStock godoc
// @Summary      Latest quote
// @Description  Finnhub quote with Yahoo volume, then the Yahoo quote, then the last cached quote
// @Tags         market
// @Produce      json
// @Param        symbol  query  string  false  "Ticker symbol"  default(GME)
// @Success      200  {object}  quoteResponse
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/stock [get]
func (h *Handler) GetStock(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-stock")
	defer span.End()

	symbol, ok := h.symbolParam(c)
	span.SetAttributes(attribute.String("symbol", symbol))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol: " + symbol})
		return
	}

	res, err := h.market.GetQuote(ctx, symbol)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to fetch stock data from any provider"})
		return
	}

	p := provenanceOf(res)
	c.JSON(http.StatusOK, quoteResponse{
		Quote:          res.Data,
		Source:         p.Source,
		OriginalSource: p.OriginalSource,
		CacheAge:       p.CacheAge,
		Stale:          p.Stale,
	})
}

// GetCompanyInfo godoc
// @Summary      Company profile and metrics
// @Description  Static profile merged with Finnhub or Yahoo metrics. Falls back to the profile alone.
// @Tags         market
// @Produce      json
// @Success      200  {object}  companyInfoResponse
// @Router       /api/company-info [get]
func (h *Handler) GetCompanyInfo(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-company-info")
	defer span.End()

	res, err := h.market.GetCompanyInfo(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Company information temporarily unavailable"})
		return
	}

	p := provenanceOf(res)
	out := companyInfoResponse{
		CompanyInfo:    res.Data,
		Source:         p.Source,
		OriginalSource: p.OriginalSource,
		CacheAge:       p.CacheAge,
		Stale:          p.Stale,
	}
	if res.Placeholder {
		out.Message = "Unable to fetch live metrics. Showing the static company profile."
	}
	c.JSON(http.StatusOK, out)
}

// GetHistorical godoc
// @Summary      Daily price history
// @Description  Daily OHLCV points in ascending date order
// @Tags         market
// @Produce      json
// @Param        symbol  query  string  false  "Ticker symbol"  default(GME)
// @Param        period  query  string  false  "1W, 1M, 3M, 6M, 1Y or 5Y"  default(1Y)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/historical [get]
func (h *Handler) GetHistorical(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-historical")
	defer span.End()

	symbol, ok := h.symbolParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol: " + symbol})
		return
	}
	period := domain.ParsePeriod(c.DefaultQuery("period", string(domain.Period1Y)))
	span.SetAttributes(attribute.String("symbol", symbol), attribute.String("period", string(period)))

	res, err := h.market.GetHistorical(ctx, symbol, period)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"data":    []domain.HistoricalPoint{},
			"source":  service.SourceNone,
			"message": "Historical data temporarily unavailable",
			"count":   0,
		})
		return
	}

	c.JSON(http.StatusOK, withProvenance(gin.H{
		"data":   res.Data,
		"count":  len(res.Data),
		"period": period,
	}, res))
}

// GetShortInterest godoc
// @Summary      Short interest
// @Description  Short interest percent of float and days to cover
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/short-interest [get]
func (h *Handler) GetShortInterest(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-short-interest")
	defer span.End()

	res, err := h.market.GetShortInterest(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"data":      []domain.ShortInterest{},
			"available": false,
			"message":   "Short interest data temporarily unavailable",
			"source":    service.SourceNone,
		})
		return
	}

	c.JSON(http.StatusOK, withProvenance(gin.H{"data": res.Data, "available": true}, res))
}

// GetOptionsFlow godoc
// @Summary      Options activity
// @Description  Aggregates from Yahoo Finance, MarketWatch and Barchart. Any subset may be present.
// @Tags         market
// @Produce      json
// @Param        symbol  query  string  false  "Ticker symbol"  default(GME)
// @Success      200  {array}   domain.OptionsFlow
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/options-flow [get]
func (h *Handler) GetOptionsFlow(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-options-flow")
	defer span.End()

	symbol, ok := h.symbolParam(c)
	span.SetAttributes(attribute.String("symbol", symbol))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol: " + symbol})
		return
	}

	res, err := h.market.GetOptionsFlow(ctx, symbol)
	if err != nil || len(res.Data) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No real options flow data available"})
		return
	}

	c.JSON(http.StatusOK, res.Data)
}
