package handler

import (
	"net/http"
	"strings"

	"gmedash/internal/config"
	"gmedash/internal/domain"
	"gmedash/internal/feed"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetNews godoc
// @Summary      News headlines
// @Description  Merged, deduplicated headlines from the configured feeds, newest first. Never empty.
// @Tags         content
// @Produce      json
// @Success      200  {array}  domain.NewsItem
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	res, err := h.content.GetNews(ctx)
	if err != nil {
		c.JSON(http.StatusOK, []domain.NewsItem{})
		return
	}

	c.JSON(http.StatusOK, res.Data)
}

// GetPressReleases godoc
// @Summary      Press releases
// @Description  Investor relations announcements and 8-K filings, newest first
// @Tags         content
// @Produce      json
// @Success      200  {array}   domain.PressRelease
// @Failure      503  {object}  map[string]string
// @Router       /api/press-releases [get]
func (h *Handler) GetPressReleases(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-press-releases")
	defer span.End()

	res, err := h.content.GetPressReleases(ctx)
	if err != nil || len(res.Data) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No press releases available"})
		return
	}

	c.JSON(http.StatusOK, res.Data)
}

// GetSECFilings godoc
// @Summary      SEC filings
// @Description  Key forms among the latest EDGAR submissions, newest first
// @Tags         content
// @Produce      json
// @Param        cik  query  string  false  "Central index key"  default(1326380)
// @Success      200  {array}   domain.Filing
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/sec [get]
func (h *Handler) GetSECFilings(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-sec-filings")
	defer span.End()

	cik := strings.TrimSpace(c.Query("cik"))
	if cik == "" {
		cik = h.content.DefaultCIK()
	}
	span.SetAttributes(attribute.String("cik", cik))
	if !config.IsCIK(cik) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cik must be 1 to 10 digits"})
		return
	}

	res, err := h.content.GetFilings(ctx, cik)
	if err != nil || len(res.Data) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No real SEC filings data available from EDGAR"})
		return
	}

	c.JSON(http.StatusOK, res.Data)
}

// GetEvents godoc
// @Summary      Upcoming events
// @Description  Earnings, estimated filing deadlines and the annual meeting, soonest first
// @Tags         content
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/events [get]
func (h *Handler) GetEvents(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-events")
	defer span.End()

	res, err := h.events.GetEvents(ctx)
	if err != nil || len(res.Data) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"events":  []domain.Event{},
			"message": "No upcoming events scheduled. Check GameStop Investor Relations for updates.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":      res.Data,
		"lastUpdated": h.now().UTC(),
	})
}

// GetTwitter godoc
// @Summary      Social posts
// @Description  Latest posts of the configured profile, read through Nitter mirrors
// @Tags         content
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/twitter [get]
func (h *Handler) GetTwitter(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-twitter")
	defer span.End()

	handle := h.content.SocialHandle()
	body := gin.H{
		"profileUrl": feed.ProfileURL(handle),
		"handle":     "@" + handle,
	}

	res, err := h.content.GetPosts(ctx)
	if err != nil || len(res.Data) == 0 {
		body["tweets"] = []domain.Post{}
		body["message"] = "Unable to fetch tweets automatically. Please visit Twitter directly."
		c.JSON(http.StatusOK, body)
		return
	}

	body["tweets"] = res.Data
	c.JSON(http.StatusOK, body)
}
