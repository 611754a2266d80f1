package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gmedash/internal/cache"
	"gmedash/internal/config"
	"gmedash/internal/db"
	"gmedash/internal/domain"
	"gmedash/internal/handler"
	"gmedash/internal/job"
	"gmedash/internal/market"
	"gmedash/internal/provider"
	"gmedash/internal/repository"
	"gmedash/internal/service"
	"gmedash/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "gmedash/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newHTTPClientFunc      = provider.NewHTTPClient
	newCacheWarmerFunc     = job.NewCacheWarmer
	startWarmerFunc        = func(w *job.CacheWarmer, ctx context.Context) { go w.Start(ctx) }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           GMEDASH API
// @version         1.0
// @description     Single-ticker market dashboard backend with cached provider fallbacks.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)
	defer db.Close()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Optional durable tiers
	var mirror *cache.Mirror
	if cache.Client != nil {
		mirror = cache.NewMirror(cache.Client, time.Duration(cfg.StaleRetentionHr)*time.Hour)
	}
	var archive service.CandleArchive
	if db.Pool != nil {
		candleArchive := repository.NewCandleArchive(db.Pool, tracer)
		if err := candleArchive.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		archive = candleArchive
	}

	// Providers
	client := newHTTPClientFunc(time.Duration(cfg.UpstreamTimeoutSecs) * time.Second)
	health := provider.NewHealth()
	finnhub := provider.NewFinnhubProvider(tracer, client, cfg.FinnhubAPIKey, cfg.FinnhubRateLimitPerMin, health)
	yahoo := provider.NewYahooProvider(tracer, client, cfg.UserAgent, health)
	sec := provider.NewSECProvider(tracer, client, cfg.SECUserAgent, health)
	pages := provider.NewFeedProvider(tracer, client, cfg.UserAgent, health)
	scraper := provider.NewScrapeProvider(pages)
	nitter := provider.NewNitterProvider(pages, cfg.Feeds.NitterMirrors)

	// Services
	calendar := market.NewNYSE()
	profile := domain.GameStopProfile
	profile.Symbol = cfg.Symbol
	tiers := service.NewTiers(tracer, cache.NewStore(), mirror)
	marketService := service.NewMarketService(tracer, tiers, finnhub, yahoo, scraper, archive, calendar, profile)
	contentService := service.NewContentService(tracer, tiers, pages, sec, nitter, cfg.Feeds, cfg.CompanyCIK, "GameStop")
	eventsService := service.NewEventsService(tracer, tiers, yahoo, calendar, profile)

	// Start cache warmer (background goroutines, stopped by ctx cancel)
	warmer := newCacheWarmerFunc(tracer, marketService, contentService, cfg.Symbol, cfg.WarmPollSecs)
	startWarmerFunc(warmer, ctx)

	// Create handlers and routes
	h := newHandlerFunc(tracer, marketService, contentService, eventsService, health, cfg.Symbol, cfg.DiagnosticsAPIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName()))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()
	log.Printf("Serving %s on %s", cfg.Symbol, srv.Addr)

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
