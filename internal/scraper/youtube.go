package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/set-night/clipwatch/internal/domain"
)

// YouTubeScraper is not backed by an API. When htmlScrape is on it reads the
// interaction count embedded in the public watch page.
type YouTubeScraper struct {
	httpClient *http.Client
	htmlScrape bool
}

func NewYouTubeScraper(httpClient *http.Client, htmlScrape bool) *YouTubeScraper {
	return &YouTubeScraper{httpClient: httpClient, htmlScrape: htmlScrape}
}

func (s *YouTubeScraper) Scrape(ctx context.Context, videoURL string) (Result, error) {
	if !s.htmlScrape {
		return Result{}, fmt.Errorf("youtube: %w", domain.ErrNotImplemented)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch watch page: %w: %v", domain.ErrScrapeFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{}, fmt.Errorf("youtube: %w", domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, fmt.Errorf("youtube 429: %w", domain.ErrRateLimited)
	case resp.StatusCode >= 300:
		return Result{}, fmt.Errorf("youtube %d: %w", resp.StatusCode, domain.ErrScrapeFailed)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("parse watch page: %w", err)
	}

	res := Result{}
	raw, ok := doc.Find(`meta[itemprop="interactionCount"]`).First().Attr("content")
	if !ok {
		return Result{}, fmt.Errorf("youtube: no interaction count: %w", domain.ErrNotFound)
	}
	views, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return Result{}, fmt.Errorf("youtube: bad interaction count %q: %w", raw, domain.ErrScrapeFailed)
	}
	res.Views = views

	if author, ok := doc.Find(`span[itemprop="author"] link[itemprop="name"]`).First().Attr("content"); ok {
		res.Author = author
	}
	return res, nil
}
