package provider

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"gmedash/internal/domain"
)

var (
	optionsVolumePattern = regexp.MustCompile(`(?i)Options Volume[^>]*?(\d+(?:,\d+)*)`)
	putCallRatioPattern  = regexp.MustCompile(`(?i)Put/Call Ratio[^>]*?(\d+\.?\d*)`)
)

// ScrapeProvider reads options statistics out of public quote pages.
type ScrapeProvider struct {
	pages          *FeedProvider
	marketWatchURL string
	barchartURL    string
}

func NewScrapeProvider(pages *FeedProvider) *ScrapeProvider {
	return &ScrapeProvider{
		pages:          pages,
		marketWatchURL: "https://www.marketwatch.com/investing/stock",
		barchartURL:    "https://www.barchart.com/stocks/quotes",
	}
}

// FetchMarketWatchVolume reads total options volume from MarketWatch.
func (p *ScrapeProvider) FetchMarketWatchVolume(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error) {
	page, err := p.pages.FetchPage(ctx, "marketwatch", fmt.Sprintf("%s/%s/options", p.marketWatchURL, url.PathEscape(strings.ToLower(symbol))))
	if err != nil {
		return nil, err
	}
	m := optionsVolumePattern.FindStringSubmatch(page)
	if m == nil {
		return nil, fmt.Errorf("marketwatch options volume: %w", ErrNoData)
	}
	volume := parseFloatString(m[1])
	return &domain.OptionsFlow{
		Date:        now.UTC().Format(domain.DateLayout),
		TotalVolume: &volume,
		Source:      "MarketWatch",
	}, nil
}

// FetchBarchartPutCall reads the put/call ratio from Barchart.
func (p *ScrapeProvider) FetchBarchartPutCall(ctx context.Context, symbol string, now time.Time) (*domain.OptionsFlow, error) {
	page, err := p.pages.FetchPage(ctx, "barchart", fmt.Sprintf("%s/%s/options", p.barchartURL, url.PathEscape(strings.ToUpper(symbol))))
	if err != nil {
		return nil, err
	}
	m := putCallRatioPattern.FindStringSubmatch(page)
	if m == nil {
		return nil, fmt.Errorf("barchart put/call ratio: %w", ErrNoData)
	}
	ratio := parseFloatString(m[1])
	if !finite(ratio) {
		return nil, fmt.Errorf("barchart put/call ratio: %w", ErrNoData)
	}
	return &domain.OptionsFlow{
		Date:         now.UTC().Format(domain.DateLayout),
		PutCallRatio: &ratio,
		Source:       "Barchart",
	}, nil
}
