package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          int
	Symbol        string
	CompanyCIK    string
	FinnhubAPIKey string
	UserAgent     string
	SECUserAgent  string

	DatabaseURL      string
	RedisURL         string
	StaleRetentionHr int

	UpstreamTimeoutSecs    int
	FinnhubRateLimitPerMin int
	WarmPollSecs           int

	// DiagnosticsAPIKey guards /api/providers/health when set.
	DiagnosticsAPIKey string

	FeedsConfigPath string
	Feeds           Feeds
}

func Load() *Config {
	cfg := &Config{
		FinnhubAPIKey:     strings.TrimSpace(os.Getenv("FINNHUB_API_KEY")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		FeedsConfigPath:   strings.TrimSpace(os.Getenv("FEEDS_CONFIG")),
		DiagnosticsAPIKey: strings.TrimSpace(os.Getenv("DIAGNOSTICS_API_KEY")),
	}

	if cfg.FinnhubAPIKey == "" {
		log.Println("Warning: FINNHUB_API_KEY not set, Finnhub sources will be unavailable")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, historical archive disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, stale data is kept in memory only")
	}

	cfg.Port = 8080
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.Port = n
		}
	}

	cfg.Symbol = strings.ToUpper(strings.TrimSpace(os.Getenv("TICKER")))
	if cfg.Symbol == "" {
		cfg.Symbol = "GME"
	}

	cfg.CompanyCIK = strings.TrimSpace(os.Getenv("COMPANY_CIK"))
	if !IsCIK(cfg.CompanyCIK) {
		if cfg.CompanyCIK != "" {
			log.Printf("Warning: invalid COMPANY_CIK=%q, defaulting to 1326380", cfg.CompanyCIK)
		}
		cfg.CompanyCIK = "1326380"
	}

	cfg.UserAgent = strings.TrimSpace(os.Getenv("HTTP_USER_AGENT"))
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; GMEDASH/1.0)"
	}

	cfg.SECUserAgent = strings.TrimSpace(os.Getenv("SEC_USER_AGENT"))
	if cfg.SECUserAgent == "" {
		cfg.SECUserAgent = "GMEDASH-SEC-Reader/1.0 contact@example.com"
	}

	cfg.StaleRetentionHr = 168
	if v := strings.TrimSpace(os.Getenv("STALE_RETENTION_HOURS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StaleRetentionHr = n
		}
	}

	cfg.UpstreamTimeoutSecs = 8
	if v := strings.TrimSpace(os.Getenv("UPSTREAM_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 60 {
			cfg.UpstreamTimeoutSecs = n
		}
	}

	cfg.FinnhubRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("FINNHUB_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FinnhubRateLimitPerMin = n
		}
	}

	cfg.WarmPollSecs = 60
	if v := strings.TrimSpace(os.Getenv("WARM_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.WarmPollSecs = n
		}
	}

	cfg.Feeds = DefaultFeeds(cfg.Symbol)
	if cfg.FeedsConfigPath != "" {
		feeds, err := LoadFeeds(cfg.FeedsConfigPath, cfg.Feeds)
		if err != nil {
			log.Printf("Warning: failed to load FEEDS_CONFIG, using built-in feeds: %v", err)
		} else {
			cfg.Feeds = feeds
		}
	}

	return cfg
}

// IsCIK reports whether v is a 1-10 digit SEC central index key.
func IsCIK(v string) bool {
	if v == "" || len(v) > 10 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
