package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository"
	"github.com/set-night/clipwatch/internal/scraper"
	"github.com/shopspring/decimal"
)

// Scraper is satisfied by *scraper.Registry.
type Scraper interface {
	Scrape(ctx context.Context, url string, platform domain.Platform) (scraper.Result, error)
}

type SweepReport struct {
	StartedAt          time.Time
	FinishedAt         time.Time
	Campaigns          int
	Platforms          int
	URLs               int
	ScrapeErrors       int
	Recorded           int
	RecordErrors       int
	Reconciled         int
	ReconcileErrors    int
	PausedSkipped      int
	Charged            decimal.Decimal
	CompletedCampaigns []string
}

func (r SweepReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type Sweeper struct {
	store      Store
	scraper    Scraper
	recorder   *Recorder
	calculator *PayoutCalculator
	reconciler *Reconciler
	notifier   Notifier

	delays       map[domain.Platform]time.Duration
	defaultDelay time.Duration
	running      atomic.Bool

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewSweeper(store Store, scr Scraper, notifier Notifier, delays map[domain.Platform]time.Duration, defaultDelay time.Duration) *Sweeper {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Sweeper{
		store:        store,
		scraper:      scr,
		recorder:     NewRecorder(store),
		calculator:   NewPayoutCalculator(store),
		reconciler:   NewReconciler(store),
		notifier:     notifier,
		delays:       delays,
		defaultDelay: defaultDelay,
		Now:          time.Now,
		Sleep:        scraper.Sleep,
	}
}

func (s *Sweeper) Calculator() *PayoutCalculator {
	return s.calculator
}

type campaignWork struct {
	campaign    domain.Campaign
	submissions []domain.ClipSubmission
}

type urlGroup struct {
	url         string
	submissions []domain.ClipSubmission
}

// RunSweep scrapes every tracked URL once, records the readings and then
// charges each active campaign. Item failures are counted, not returned.
// Overlapping calls fail with domain.ErrSweepRunning.
func (s *Sweeper) RunSweep(ctx context.Context) (SweepReport, error) {
	report := SweepReport{StartedAt: s.Now(), Charged: decimal.Zero}
	if !s.running.CompareAndSwap(false, true) {
		return report, domain.ErrSweepRunning
	}
	defer s.running.Store(false)

	campaigns, err := s.store.ListSweepCampaigns(ctx)
	if err != nil {
		return report, fmt.Errorf("list campaigns: %w", err)
	}

	work := make([]campaignWork, 0, len(campaigns))
	for _, c := range campaigns {
		subs, err := s.store.ListCampaignSubmissions(ctx, repository.ListCampaignSubmissionsParams{
			CampaignID: c.ID,
			Statuses:   []domain.SubmissionStatus{domain.SubmissionStatusApproved, domain.SubmissionStatusPending},
		})
		if err != nil {
			slog.Error("failed to list submissions", "error", err, "campaign_id", c.ID)
			report.RecordErrors++
			continue
		}
		work = append(work, campaignWork{campaign: c, submissions: subs})
	}
	report.Campaigns = len(work)

	platforms := derivePlatforms(work)
	report.Platforms = len(platforms)

	for _, p := range platforms {
		if err := s.sweepPlatform(ctx, p, groupURLs(work, p), &report); err != nil {
			report.FinishedAt = s.Now()
			return report, err
		}
	}

	for _, w := range work {
		if ctx.Err() != nil {
			report.FinishedAt = s.Now()
			return report, ctx.Err()
		}
		s.settleCampaign(ctx, w.campaign, &report)
	}

	report.FinishedAt = s.Now()
	slog.Info("sweep finished",
		"campaigns", report.Campaigns,
		"urls", report.URLs,
		"scrape_errors", report.ScrapeErrors,
		"recorded", report.Recorded,
		"record_errors", report.RecordErrors,
		"reconcile_errors", report.ReconcileErrors,
		"charged", report.Charged.StringFixed(2),
		"duration", report.Duration(),
	)
	s.notifier.SweepCompleted(report)
	return report, nil
}

// sweepPlatform returns an error only when ctx is cancelled.
func (s *Sweeper) sweepPlatform(ctx context.Context, p domain.Platform, groups []urlGroup, report *SweepReport) error {
	delay, ok := s.delays[p]
	if !ok {
		delay = s.defaultDelay
	}

	for i, g := range groups {
		if i > 0 {
			if err := s.Sleep(ctx, delay); err != nil {
				return err
			}
		}
		report.URLs++

		res, err := s.scraper.Scrape(ctx, g.url, p)
		if err != nil {
			slog.Warn("scrape failed", "error", err, "platform", p, "url", g.url, "submissions", len(g.submissions))
			report.ScrapeErrors++
			continue
		}

		asOf := s.Now()
		for _, sub := range g.submissions {
			if _, err := s.recorder.RecordViews(ctx, sub.ID, res.Views, asOf); err != nil {
				slog.Error("failed to record views", "error", err, "submission_id", sub.ID, "url", g.url)
				report.RecordErrors++
				continue
			}
			report.Recorded++
		}
	}
	return nil
}

func (s *Sweeper) settleCampaign(ctx context.Context, c domain.Campaign, report *SweepReport) {
	if c.Status != domain.CampaignStatusActive {
		report.PausedSkipped++
		return
	}

	result, err := s.calculator.CalculateCampaignPayouts(ctx, c.ID)
	if err != nil {
		slog.Error("failed to calculate payouts", "error", err, "campaign_id", c.ID)
		report.ReconcileErrors++
		s.notifier.Error(err, "calculate payouts "+c.ID)
		return
	}

	out, err := s.reconciler.ApplyPayoutResult(ctx, result)
	if err != nil {
		slog.Error("failed to reconcile campaign", "error", err, "campaign_id", c.ID)
		report.ReconcileErrors++
		s.notifier.Error(err, "reconcile campaign "+c.ID)
		return
	}

	report.Reconciled++
	report.Charged = report.Charged.Add(out.Charged)
	if out.Completed {
		slog.Info("campaign completed", "campaign_id", c.ID, "spent", out.Spent.StringFixed(2), "paid_submissions", out.PaidSubmissions)
		report.CompletedCampaigns = append(report.CompletedCampaigns, c.ID)
		c.Status = domain.CampaignStatusCompleted
		c.Spent = out.Spent
		s.notifier.CampaignCompleted(c, out.Spent)
	}
}

// derivePlatforms is the union of target and submission platforms, in
// domain.Platforms order.
func derivePlatforms(work []campaignWork) []domain.Platform {
	seen := make(map[domain.Platform]bool)
	for _, w := range work {
		for _, p := range w.campaign.TargetPlatforms {
			seen[p] = true
		}
		for _, sub := range w.submissions {
			seen[sub.Platform] = true
		}
	}

	var out []domain.Platform
	for _, p := range domain.Platforms {
		if seen[p] {
			out = append(out, p)
		}
	}
	return out
}

// groupURLs collects submissions on platform p by normalized URL, keeping
// first-seen order.
func groupURLs(work []campaignWork, p domain.Platform) []urlGroup {
	index := make(map[string]int)
	var groups []urlGroup
	for _, w := range work {
		for _, sub := range w.submissions {
			if sub.Platform != p {
				continue
			}
			key := normalizeURL(sub.ClipURL)
			if key == "" {
				continue
			}
			i, ok := index[key]
			if !ok {
				i = len(groups)
				index[key] = i
				groups = append(groups, urlGroup{url: strings.TrimSpace(sub.ClipURL)})
			}
			groups[i].submissions = append(groups[i].submissions, sub)
		}
	}
	return groups
}

// normalizeURL drops the fragment and trailing slash and lowercases the host.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(raw, "/")
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}
