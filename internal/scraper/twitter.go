package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/set-night/clipwatch/internal/domain"
)

// TwitterScraper reads impression counts from the X API v2 tweet lookup.
type TwitterScraper struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewTwitterScraper(httpClient *http.Client, baseURL, bearerToken string) *TwitterScraper {
	return &TwitterScraper{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      bearerToken,
	}
}

var (
	tweetPathRe  = regexp.MustCompile(`/(?:i/web/)?status(?:es)?/(\d+)`)
	bareIDRe     = regexp.MustCompile(`^\d{5,25}$`)
	longDigitsRe = regexp.MustCompile(`(\d{15,25})`)
)

// ExtractTweetID finds the numeric tweet id in the URL shapes X produces.
func ExtractTweetID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrInvalidURL
	}
	if bareIDRe.MatchString(raw) {
		return raw, nil
	}
	if m := tweetPathRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	if u, err := url.Parse(raw); err == nil {
		q := u.Query()
		for _, key := range []string{"id", "tweet_id"} {
			if v := q.Get(key); bareIDRe.MatchString(v) {
				return v, nil
			}
		}
	}
	if m := longDigitsRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: no tweet id in %q", domain.ErrInvalidURL, raw)
}

func (s *TwitterScraper) Scrape(ctx context.Context, tweetURL string) (Result, error) {
	id, err := ExtractTweetID(tweetURL)
	if err != nil {
		return Result{}, err
	}

	endpoint := fmt.Sprintf("%s/2/tweets/%s?tweet.fields=public_metrics,created_at&expansions=author_id&user.fields=username", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("tweet lookup: %w: %v", domain.ErrScrapeFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Result{}, fmt.Errorf("x api %d: %w", resp.StatusCode, domain.ErrAuth)
	case resp.StatusCode == http.StatusNotFound:
		return Result{}, fmt.Errorf("tweet %s: %w", id, domain.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, fmt.Errorf("x api 429: %w", domain.ErrRateLimited)
	case resp.StatusCode >= 300:
		return Result{}, fmt.Errorf("x api %d: %w", resp.StatusCode, domain.ErrScrapeFailed)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Data *struct {
			ID            string `json:"id"`
			AuthorID      string `json:"author_id"`
			CreatedAt     string `json:"created_at"`
			PublicMetrics struct {
				ImpressionCount int64 `json:"impression_count"`
				LikeCount       int64 `json:"like_count"`
			} `json:"public_metrics"`
		} `json:"data"`
		Includes struct {
			Users []struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"users"`
		} `json:"includes"`
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("parse response: %w", err)
	}

	if result.Data == nil {
		if len(result.Errors) > 0 {
			return Result{}, fmt.Errorf("tweet %s: %s: %w", id, result.Errors[0].Title, domain.ErrNotFound)
		}
		return Result{}, fmt.Errorf("tweet %s: empty response: %w", id, domain.ErrNotFound)
	}

	likes := result.Data.PublicMetrics.LikeCount
	res := Result{
		Views: result.Data.PublicMetrics.ImpressionCount,
		Likes: &likes,
	}
	for _, u := range result.Includes.Users {
		if u.ID == result.Data.AuthorID {
			res.Author = u.Username
			break
		}
	}
	if t, err := time.Parse(time.RFC3339, result.Data.CreatedAt); err == nil {
		res.CreatedAt = &t
	}
	return res, nil
}
