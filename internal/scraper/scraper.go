// Package scraper fetches public view counts from social platforms.
// Adapters do not persist anything; callers decide what to record.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/set-night/clipwatch/internal/config"
	"github.com/set-night/clipwatch/internal/domain"
)

type Result struct {
	Views     int64
	Likes     *int64
	Author    string
	CreatedAt *time.Time
}

type Adapter interface {
	Scrape(ctx context.Context, url string) (Result, error)
}

type Registry struct {
	adapters map[domain.Platform]Adapter
}

// NewRegistry builds one adapter per platform. A provider without
// credentials gets an adapter that fails every call with ErrConfiguration.
func NewRegistry(cfg *config.Config) *Registry {
	httpClient := &http.Client{Timeout: config.ScrapeHTTPTimeout}
	adapters := make(map[domain.Platform]Adapter, len(domain.Platforms))

	for _, p := range domain.Platforms {
		switch p {
		case domain.PlatformTikTok:
			if cfg.ApifyToken == "" {
				slog.Warn("scraper not configured", "platform", p, "missing", "APIFY_TOKEN")
				adapters[p] = unconfigured{platform: p}
				continue
			}
			adapters[p] = NewTikTokScraper(httpClient, cfg.ApifyBaseURL, cfg.ApifyTikTokActor, cfg.ApifyToken)
		case domain.PlatformTwitter:
			if cfg.TwitterBearerToken == "" {
				slog.Warn("scraper not configured", "platform", p, "missing", "TWITTER_BEARER_TOKEN")
				adapters[p] = unconfigured{platform: p}
				continue
			}
			adapters[p] = NewTwitterScraper(httpClient, cfg.TwitterAPIURL, cfg.TwitterBearerToken)
		case domain.PlatformYouTube:
			adapters[p] = NewYouTubeScraper(httpClient, cfg.YouTubeHTMLScrape)
		case domain.PlatformInstagram:
			adapters[p] = InstagramScraper{}
		default:
			panic(fmt.Sprintf("scraper: no adapter for platform %s", p))
		}
	}

	return &Registry{adapters: adapters}
}

// NewStaticRegistry wires explicit adapters, mostly for tests.
func NewStaticRegistry(adapters map[domain.Platform]Adapter) *Registry {
	return &Registry{adapters: adapters}
}

func (r *Registry) Scrape(ctx context.Context, url string, platform domain.Platform) (Result, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", domain.ErrUnknownPlatform, platform)
	}
	return a.Scrape(ctx, url)
}

type unconfigured struct {
	platform domain.Platform
}

func (u unconfigured) Scrape(ctx context.Context, url string) (Result, error) {
	return Result{}, fmt.Errorf("%s: %w", u.platform, domain.ErrConfiguration)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
