package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeedSource is one RSS/Atom endpoint. Items from a trusted source bypass
// the keyword filter.
type FeedSource struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Trusted bool   `yaml:"trusted"`
}

type Feeds struct {
	Keywords        []string     `yaml:"keywords"`
	News            []FeedSource `yaml:"news"`
	PressReleases   []FeedSource `yaml:"press_releases"`
	NitterMirrors   []string     `yaml:"nitter_mirrors"`
	SocialHandle    string       `yaml:"social_handle"`
	FallbackNewsURL string       `yaml:"fallback_news_url"`
}

func DefaultFeeds(symbol string) Feeds {
	return Feeds{
		Keywords: []string{"gamestop", strings.ToLower(symbol)},
		News: []FeedSource{
			{Name: "GameStop IR", URL: "https://news.gamestop.com/rss/news-releases.xml", Trusted: true},
			{Name: "Yahoo Finance", URL: "https://feeds.finance.yahoo.com/rss/2.0/headline?s=" + symbol + "&region=US&lang=en-US"},
			{Name: "Google News", URL: "https://news.google.com/rss/search?q=GameStop+" + symbol + "&hl=en-US&gl=US&ceid=US:en"},
		},
		PressReleases: []FeedSource{
			{Name: "GameStop IR", URL: "https://news.gamestop.com/rss/news-releases.xml", Trusted: true},
		},
		NitterMirrors: []string{
			"https://nitter.net",
			"https://nitter.privacydev.net",
			"https://nitter.poast.org",
			"https://nitter.1d4.us",
		},
		SocialHandle:    "ryancohen",
		FallbackNewsURL: "https://finance.yahoo.com/quote/" + symbol + "/news",
	}
}

// LoadFeeds reads a YAML feed file. Sections left empty in the file keep the
// values from base.
func LoadFeeds(path string, base Feeds) (Feeds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read feeds file: %w", err)
	}

	var file Feeds
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse feeds file: %w", err)
	}

	out := base
	if len(file.Keywords) > 0 {
		out.Keywords = make([]string, 0, len(file.Keywords))
		for _, k := range file.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				out.Keywords = append(out.Keywords, k)
			}
		}
	}
	if len(file.News) > 0 {
		out.News = file.News
	}
	if len(file.PressReleases) > 0 {
		out.PressReleases = file.PressReleases
	}
	if len(file.NitterMirrors) > 0 {
		out.NitterMirrors = file.NitterMirrors
	}
	if h := strings.TrimPrefix(strings.TrimSpace(file.SocialHandle), "@"); h != "" {
		out.SocialHandle = h
	}
	if u := strings.TrimSpace(file.FallbackNewsURL); u != "" {
		out.FallbackNewsURL = u
	}

	for _, group := range [][]FeedSource{out.News, out.PressReleases} {
		for _, f := range group {
			if strings.TrimSpace(f.URL) == "" || strings.TrimSpace(f.Name) == "" {
				return base, fmt.Errorf("feed entries need both name and url")
			}
		}
	}
	return out, nil
}
