package service

import (
	"context"
	"testing"
	"time"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository/memory"
	"github.com/set-night/clipwatch/internal/scraper"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Scrape(ctx context.Context, url string, platform domain.Platform) (scraper.Result, error) {
	args := m.Called(ctx, url, platform)
	return args.Get(0).(scraper.Result), args.Error(1)
}

type recordingNotifier struct {
	NopNotifier
	sweeps    []SweepReport
	completed []string
}

func (n *recordingNotifier) SweepCompleted(r SweepReport) { n.sweeps = append(n.sweeps, r) }
func (n *recordingNotifier) CampaignCompleted(c domain.Campaign, spent decimal.Decimal) {
	n.completed = append(n.completed, c.ID)
}

var testDelays = map[domain.Platform]time.Duration{
	domain.PlatformTikTok:  time.Second,
	domain.PlatformTwitter: 3 * time.Second,
}

func newTestSweeper(store Store, scr Scraper, n Notifier) (*Sweeper, *[]time.Duration) {
	sw := NewSweeper(store, scr, n, testDelays, time.Second)
	sw.Now = func() time.Time { return day1 }
	var sleeps []time.Duration
	sw.Sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return sw, &sleeps
}

func TestRunSweep_ScrapesSharedURLOnce(t *testing.T) {
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "1000", "0", "2", domain.CampaignStatusActive, domain.PlatformTikTok)
	seedCampaign(t, s, "c2", "1000", "0", "1", domain.CampaignStatusActive, domain.PlatformTikTok)
	seedUser(s, "u1")
	seedUser(s, "u2")
	seedSubmission(s, "s1", "c1", "u1", tiktokURL, domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	seedSubmission(s, "s2", "c2", "u2", tiktokURL+"/", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)

	scr := &mockScraper{}
	scr.On("Scrape", mock.Anything, tiktokURL, domain.PlatformTikTok).Return(scraper.Result{Views: 15000}, nil).Once()

	sw, sleeps := newTestSweeper(s, scr, nil)
	report, err := sw.RunSweep(context.Background())
	require.NoError(t, err)
	scr.AssertNumberOfCalls(t, "Scrape", 1)
	assert.Empty(t, *sleeps)

	assert.Equal(t, 1, report.URLs)
	assert.Equal(t, 2, report.Recorded)
	assert.Equal(t, 2, report.Reconciled)
	assert.Equal(t, "45.00", report.Charged.StringFixed(2))

	for _, id := range []string{"u1", "u2"} {
		u, _ := s.User(id)
		assert.Equal(t, int64(15000), u.TotalViews, id)
	}
	c1, _ := s.Campaign("c1")
	assert.Equal(t, "30.00", c1.Spent.StringFixed(2))
	c2, _ := s.Campaign("c2")
	assert.Equal(t, "15.00", c2.Spent.StringFixed(2))
}

func TestRunSweep_FaultIsolation(t *testing.T) {
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "1000", "0", "1", domain.CampaignStatusActive, domain.PlatformTikTok)
	seedCampaign(t, s, "c2", "1000", "0", "1", domain.CampaignStatusActive, domain.PlatformTwitter)
	seedUser(s, "u1")
	seedUser(s, "u2")
	seedSubmission(s, "a", "c1", "u1", "https://www.tiktok.com/@a/video/1", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	seedSubmission(s, "b", "c1", "u1", "https://www.tiktok.com/@a/video/2", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1.Add(time.Minute))
	seedSubmission(s, "x", "c2", "u2", "https://x.com/u2/status/1790000000000000001", domain.PlatformTwitter, domain.SubmissionStatusApproved, day1)

	scr := &mockScraper{}
	scr.On("Scrape", mock.Anything, "https://www.tiktok.com/@a/video/1", domain.PlatformTikTok).Return(scraper.Result{}, domain.ErrScrapeTimeout)
	scr.On("Scrape", mock.Anything, "https://www.tiktok.com/@a/video/2", domain.PlatformTikTok).Return(scraper.Result{Views: 2000}, nil)
	scr.On("Scrape", mock.Anything, "https://x.com/u2/status/1790000000000000001", domain.PlatformTwitter).Return(scraper.Result{Views: 3000}, nil)

	sw, sleeps := newTestSweeper(s, scr, nil)
	report, err := sw.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.URLs)
	assert.Equal(t, 1, report.ScrapeErrors)
	assert.Equal(t, 2, report.Recorded)
	assert.Equal(t, []time.Duration{time.Second}, *sleeps)

	sub, _ := s.Submission("a")
	assert.Nil(t, sub.ClipID)
	u1, _ := s.User("u1")
	assert.Equal(t, int64(2000), u1.TotalViews)
	c2, _ := s.Campaign("c2")
	assert.Equal(t, "3.00", c2.Spent.StringFixed(2))
}

func TestRunSweep_UnconfiguredProviderIsIsolated(t *testing.T) {
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "1000", "0", "1", domain.CampaignStatusActive, domain.PlatformTikTok, domain.PlatformTwitter)
	seedUser(s, "u1")
	seedSubmission(s, "t1", "c1", "u1", "https://www.tiktok.com/@a/video/1", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	seedSubmission(s, "x1", "c1", "u1", "https://x.com/a/status/1790000000000000001", domain.PlatformTwitter, domain.SubmissionStatusApproved, day1)
	seedSubmission(s, "x2", "c1", "u1", "https://x.com/a/status/1790000000000000002", domain.PlatformTwitter, domain.SubmissionStatusApproved, day1)

	scr := &mockScraper{}
	scr.On("Scrape", mock.Anything, mock.Anything, domain.PlatformTikTok).Return(scraper.Result{}, domain.ErrConfiguration)
	scr.On("Scrape", mock.Anything, mock.Anything, domain.PlatformTwitter).Return(scraper.Result{Views: 1000}, nil)

	sw, sleeps := newTestSweeper(s, scr, nil)
	report, err := sw.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.ScrapeErrors)
	assert.Equal(t, 2, report.Recorded)
	assert.Equal(t, []time.Duration{3 * time.Second}, *sleeps)
	assert.Equal(t, 2, report.Platforms)
}

func TestRunSweep_PausedTrackedNotCharged(t *testing.T) {
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "1000", "0", "1", domain.CampaignStatusPaused, domain.PlatformTikTok)
	seedUser(s, "u1")
	seedSubmission(s, "s1", "c1", "u1", tiktokURL, domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)

	scr := &mockScraper{}
	scr.On("Scrape", mock.Anything, tiktokURL, domain.PlatformTikTok).Return(scraper.Result{Views: 9000}, nil)

	sw, _ := newTestSweeper(s, scr, nil)
	report, err := sw.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Recorded)
	assert.Equal(t, 1, report.PausedSkipped)
	assert.Equal(t, 0, report.Reconciled)

	u, _ := s.User("u1")
	assert.Equal(t, int64(9000), u.TotalViews)
	c, _ := s.Campaign("c1")
	assert.True(t, c.Spent.IsZero())
}

func TestRunSweep_ResumedCampaignChargesAccruedViews(t *testing.T) {
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "1000", "0", "1", domain.CampaignStatusPaused, domain.PlatformTikTok)
	seedUser(s, "u1")
	seedSubmission(s, "s1", "c1", "u1", tiktokURL, domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)

	scr := &mockScraper{}
	scr.On("Scrape", mock.Anything, tiktokURL, domain.PlatformTikTok).Return(scraper.Result{Views: 9000}, nil)

	sw, _ := newTestSweeper(s, scr, nil)
	_, err := sw.RunSweep(context.Background())
	require.NoError(t, err)

	c, _ := s.Campaign("c1")
	c.Status = domain.CampaignStatusActive
	s.PutCampaign(c)

	report, err := sw.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reconciled)
	assert.Equal(t, "9.00", report.Charged.StringFixed(2))

	c, _ = s.Campaign("c1")
	assert.Equal(t, "9.00", c.Spent.StringFixed(2))
	u, _ := s.User("u1")
	assert.Equal(t, int64(9000), u.TotalViews)
}

func TestRunSweep_SkipsNonSweepableCampaigns(t *testing.T) {
	s := memory.NewStore()
	seedCampaign(t, s, "draft", "1000", "0", "1", domain.CampaignStatusDraft, domain.PlatformTikTok)
	seedCampaign(t, s, "done", "1000", "0", "1", domain.CampaignStatusCompleted, domain.PlatformTikTok)
	seedUser(s, "u1")
	seedSubmission(s, "s1", "draft", "u1", tiktokURL, domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	seedSubmission(s, "s2", "done", "u1", tiktokURL, domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)

	scr := &mockScraper{}
	sw, _ := newTestSweeper(s, scr, nil)
	report, err := sw.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Campaigns)
	scr.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSweep_CompletesExhaustedCampaign(t *testing.T) {
	s := exhaustedCampaign(t)
	scr := &mockScraper{}
	scr.On("Scrape", mock.Anything, tiktokURL, domain.PlatformTikTok).Return(scraper.Result{Views: 15000}, nil)

	n := &recordingNotifier{}
	sw, _ := newTestSweeper(s, scr, n)
	report, err := sw.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"c1"}, report.CompletedCampaigns)
	assert.Equal(t, []string{"c1"}, n.completed)
	require.Len(t, n.sweeps, 1)

	c, _ := s.Campaign("c1")
	assert.Equal(t, domain.CampaignStatusCompleted, c.Status)
	assert.Equal(t, "105.00", c.Spent.StringFixed(2))
}

func TestRunSweep_ListFailure(t *testing.T) {
	fs := newFaultyStore(memory.NewStore())
	fs.failList = true

	sw, _ := newTestSweeper(fs, &mockScraper{}, nil)
	_, err := sw.RunSweep(context.Background())
	assert.ErrorIs(t, err, errInjected)
}

func TestRunSweep_Cancelled(t *testing.T) {
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "1000", "0", "1", domain.CampaignStatusActive, domain.PlatformTikTok)
	seedUser(s, "u1")
	seedSubmission(s, "a", "c1", "u1", "https://www.tiktok.com/@a/video/1", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	seedSubmission(s, "b", "c1", "u1", "https://www.tiktok.com/@a/video/2", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1.Add(time.Minute))

	scr := &mockScraper{}
	scr.On("Scrape", mock.Anything, mock.Anything, domain.PlatformTikTok).Return(scraper.Result{Views: 10}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	sw := NewSweeper(s, scr, nil, testDelays, time.Second)
	sw.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := sw.RunSweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	scr.AssertNumberOfCalls(t, "Scrape", 1)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, normalizeURL("https://WWW.TikTok.com/@a/video/1/"), normalizeURL(" https://www.tiktok.com/@a/video/1#top"))
	assert.NotEqual(t, normalizeURL("https://www.tiktok.com/@a/video/1"), normalizeURL("https://www.tiktok.com/@a/video/2"))
}

func TestRunSweep_RejectsOverlap(t *testing.T) {
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "1000", "0", "1", domain.CampaignStatusActive, domain.PlatformTikTok)
	seedUser(s, "u1")
	seedSubmission(s, "a", "c1", "u1", "https://www.tiktok.com/@a/video/1", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	seedSubmission(s, "b", "c1", "u1", "https://www.tiktok.com/@a/video/2", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1.Add(time.Minute))

	scr := &mockScraper{}
	scr.On("Scrape", mock.Anything, mock.Anything, domain.PlatformTikTok).Return(scraper.Result{Views: 10}, nil)

	sw, _ := newTestSweeper(s, scr, nil)
	var nested error
	sw.Sleep = func(ctx context.Context, d time.Duration) error {
		_, nested = sw.RunSweep(ctx)
		return nil
	}

	_, err := sw.RunSweep(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, nested, domain.ErrSweepRunning)

	_, err = sw.RunSweep(context.Background())
	assert.NoError(t, err)
}
