package scraper

import (
	"context"
	"fmt"

	"github.com/set-night/clipwatch/internal/domain"
)

// InstagramScraper has no provider yet.
type InstagramScraper struct{}

func (InstagramScraper) Scrape(ctx context.Context, url string) (Result, error) {
	return Result{}, fmt.Errorf("instagram: %w", domain.ErrNotImplemented)
}
