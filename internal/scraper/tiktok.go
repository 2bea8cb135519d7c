package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/set-night/clipwatch/internal/config"
	"github.com/set-night/clipwatch/internal/domain"
)

// TikTokScraper runs an Apify actor per URL and reads the first dataset item.
type TikTokScraper struct {
	httpClient   *http.Client
	baseURL      string
	actor        string
	token        string
	PollInterval time.Duration
	MaxPolls     int
}

func NewTikTokScraper(httpClient *http.Client, baseURL, actor, token string) *TikTokScraper {
	return &TikTokScraper{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		actor:        actor,
		token:        token,
		PollInterval: config.TikTokPollInterval,
		MaxPolls:     config.TikTokMaxPolls,
	}
}

type apifyRun struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

func (s *TikTokScraper) Scrape(ctx context.Context, videoURL string) (Result, error) {
	run, err := s.startRun(ctx, videoURL)
	if err != nil {
		return Result{}, err
	}

	datasetID, err := s.waitRun(ctx, run.Data.ID)
	if err != nil {
		return Result{}, err
	}
	if datasetID == "" {
		datasetID = run.Data.DefaultDatasetID
	}

	return s.fetchItem(ctx, datasetID)
}

func (s *TikTokScraper) startRun(ctx context.Context, videoURL string) (*apifyRun, error) {
	payload, err := json.Marshal(map[string]any{
		"postURLs":       []string{videoURL},
		"resultsPerPage": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s", s.baseURL, s.actor, url.QueryEscape(s.token))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var run apifyRun
	if err := s.do(req, &run); err != nil {
		return nil, fmt.Errorf("start apify run: %w", err)
	}
	if run.Data.ID == "" {
		return nil, fmt.Errorf("start apify run: empty run id: %w", domain.ErrScrapeFailed)
	}
	return &run, nil
}

// waitRun polls the run until it reaches a terminal state and returns its dataset id.
func (s *TikTokScraper) waitRun(ctx context.Context, runID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v2/actor-runs/%s?token=%s", s.baseURL, runID, url.QueryEscape(s.token))

	for i := 0; i < s.MaxPolls; i++ {
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}

		var run apifyRun
		if err := s.do(req, &run); err != nil {
			return "", fmt.Errorf("poll apify run: %w", err)
		}

		switch run.Data.Status {
		case "SUCCEEDED":
			return run.Data.DefaultDatasetID, nil
		case "FAILED", "ABORTED", "TIMED-OUT":
			return "", fmt.Errorf("apify run %s %s: %w", runID, run.Data.Status, domain.ErrScrapeFailed)
		}

		if err := Sleep(ctx, s.PollInterval); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("apify run %s after %d polls: %w", runID, s.MaxPolls, domain.ErrScrapeTimeout)
}

func (s *TikTokScraper) fetchItem(ctx context.Context, datasetID string) (Result, error) {
	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s", s.baseURL, datasetID, url.QueryEscape(s.token))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}

	var items []struct {
		PlayCount  int64  `json:"playCount"`
		DiggCount  *int64 `json:"diggCount"`
		CreateTime string `json:"createTimeISO"`
		AuthorMeta struct {
			Name string `json:"name"`
		} `json:"authorMeta"`
	}
	if err := s.do(req, &items); err != nil {
		return Result{}, fmt.Errorf("fetch dataset: %w", err)
	}
	if len(items) == 0 {
		return Result{}, fmt.Errorf("dataset %s empty: %w", datasetID, domain.ErrNotFound)
	}

	item := items[0]
	res := Result{
		Views:  item.PlayCount,
		Likes:  item.DiggCount,
		Author: item.AuthorMeta.Name,
	}
	if item.CreateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.CreateTime); err == nil {
			res.CreatedAt = &t
		}
	}
	return res, nil
}

func (s *TikTokScraper) do(req *http.Request, out any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrScrapeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("apify %d: %w", resp.StatusCode, domain.ErrAuth)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("apify 429: %w", domain.ErrRateLimited)
	case resp.StatusCode >= 300:
		return fmt.Errorf("apify %d: %w", resp.StatusCode, domain.ErrScrapeFailed)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
