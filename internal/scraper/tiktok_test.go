package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApifyServer(t *testing.T, statuses []string, items string) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/acts/actor~x/runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		w.Write([]byte(`{"data":{"id":"run1","status":"READY","defaultDatasetId":"ds1"}}`))
	})
	mux.HandleFunc("/v2/actor-runs/run1", func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&polls, 1)) - 1
		status := statuses[len(statuses)-1]
		if n < len(statuses) {
			status = statuses[n]
		}
		w.Write([]byte(`{"data":{"id":"run1","status":"` + status + `","defaultDatasetId":"ds1"}}`))
	})
	mux.HandleFunc("/v2/datasets/ds1/items", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(items))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func newTestTikTok(srv *httptest.Server) *TikTokScraper {
	s := NewTikTokScraper(srv.Client(), srv.URL, "actor~x", "secret")
	s.PollInterval = time.Millisecond
	return s
}

func TestTikTokScrape_MapsFirstItem(t *testing.T) {
	srv, polls := newApifyServer(t, []string{"RUNNING", "RUNNING", "SUCCEEDED"},
		`[{"playCount":15000,"diggCount":321,"createTimeISO":"2026-03-01T10:00:00Z","authorMeta":{"name":"clipper"}}]`)

	res, err := newTestTikTok(srv).Scrape(context.Background(), "https://www.tiktok.com/@clipper/video/1")
	require.NoError(t, err)

	assert.Equal(t, int64(15000), res.Views)
	require.NotNil(t, res.Likes)
	assert.Equal(t, int64(321), *res.Likes)
	assert.Equal(t, "clipper", res.Author)
	require.NotNil(t, res.CreatedAt)
	assert.Equal(t, 2026, res.CreatedAt.Year())
	assert.Equal(t, int32(3), atomic.LoadInt32(polls))
}

func TestTikTokScrape_TrailingSlashBaseURL(t *testing.T) {
	srv, _ := newApifyServer(t, []string{"SUCCEEDED"}, `[{"playCount":42}]`)
	s := NewTikTokScraper(srv.Client(), srv.URL+"/", "actor~x", "secret")
	s.PollInterval = time.Millisecond

	res, err := s.Scrape(context.Background(), "https://www.tiktok.com/@a/video/1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Views)
}

func TestTikTokScrape_FailedRun(t *testing.T) {
	srv, _ := newApifyServer(t, []string{"RUNNING", "FAILED"}, `[]`)

	_, err := newTestTikTok(srv).Scrape(context.Background(), "https://www.tiktok.com/@a/video/1")
	assert.ErrorIs(t, err, domain.ErrScrapeFailed)
}

func TestTikTokScrape_PollTimeout(t *testing.T) {
	srv, polls := newApifyServer(t, []string{"RUNNING"}, `[]`)
	s := newTestTikTok(srv)
	s.MaxPolls = 4

	_, err := s.Scrape(context.Background(), "https://www.tiktok.com/@a/video/1")
	assert.ErrorIs(t, err, domain.ErrScrapeTimeout)
	assert.Equal(t, int32(4), atomic.LoadInt32(polls))
}

func TestTikTokScrape_EmptyDataset(t *testing.T) {
	srv, _ := newApifyServer(t, []string{"SUCCEEDED"}, `[]`)

	_, err := newTestTikTok(srv).Scrape(context.Background(), "https://www.tiktok.com/@a/video/1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTikTokScrape_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestTikTok(srv).Scrape(context.Background(), "https://www.tiktok.com/@a/video/1")
	assert.ErrorIs(t, err, domain.ErrAuth)
}
