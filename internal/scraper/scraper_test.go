package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/set-night/clipwatch/internal/config"
	"github.com/set-night/clipwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_UnconfiguredProviders(t *testing.T) {
	r := NewRegistry(&config.Config{})

	ctx := context.Background()
	_, err := r.Scrape(ctx, "https://www.tiktok.com/@a/video/1", domain.PlatformTikTok)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = r.Scrape(ctx, "https://x.com/a/status/1790000000000000001", domain.PlatformTwitter)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = r.Scrape(ctx, "https://www.youtube.com/watch?v=abc", domain.PlatformYouTube)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	_, err = r.Scrape(ctx, "https://www.instagram.com/reel/abc", domain.PlatformInstagram)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestNewRegistry_CoversEveryPlatform(t *testing.T) {
	r := NewRegistry(&config.Config{ApifyToken: "a", TwitterBearerToken: "b"})
	for _, p := range domain.Platforms {
		assert.Contains(t, r.adapters, p)
	}
}

func TestRegistry_UnknownPlatform(t *testing.T) {
	r := NewStaticRegistry(nil)
	_, err := r.Scrape(context.Background(), "https://example.com", domain.Platform("MYSPACE"))
	assert.ErrorIs(t, err, domain.ErrUnknownPlatform)
}

func TestYouTubeScrape_HTMLReader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head></head><body>
			<div itemscope><meta itemprop="interactionCount" content="123456">
			<span itemprop="author"><link itemprop="name" content="Channel"></span></div>
		</body></html>`))
	}))
	defer srv.Close()

	res, err := NewYouTubeScraper(srv.Client(), true).Scrape(context.Background(), srv.URL+"/watch?v=abc")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), res.Views)
	assert.Equal(t, "Channel", res.Author)
}

func TestYouTubeScrape_MissingCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>nothing</body></html>`))
	}))
	defer srv.Close()

	_, err := NewYouTubeScraper(srv.Client(), true).Scrape(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}
