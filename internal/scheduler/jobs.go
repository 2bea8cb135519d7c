package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/service"
)

type SweepRunner interface {
	RunSweep(ctx context.Context) (service.SweepReport, error)
}

// SweepJob runs the tracking sweep on a fixed interval, starting right away.
type SweepJob struct {
	ctx      context.Context
	sweeper  SweepRunner
	interval time.Duration
	reporter interface{ Error(error, string) }
}

func NewSweepJob(ctx context.Context, sweeper SweepRunner, interval time.Duration, reporter interface{ Error(error, string) }) *SweepJob {
	return &SweepJob{ctx: ctx, sweeper: sweeper, interval: interval, reporter: reporter}
}

func (j *SweepJob) Name() string { return "view_sweep" }

func (j *SweepJob) Schedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *SweepJob) Options() []gocron.JobOption {
	return []gocron.JobOption{gocron.WithStartAt(gocron.WithStartImmediately())}
}

func (j *SweepJob) Execute() {
	if j.ctx.Err() != nil {
		return
	}
	slog.Info("starting scheduled sweep")

	_, err := j.sweeper.RunSweep(j.ctx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSweepRunning):
		slog.Warn("skipping scheduled sweep, previous still running")
	case errors.Is(err, context.Canceled):
		slog.Info("scheduled sweep cancelled")
	default:
		slog.Error("scheduled sweep failed", "error", err)
		if j.reporter != nil {
			j.reporter.Error(err, "scheduled sweep")
		}
	}
}

// Sweepable drops expired rate-limit windows.
type Sweepable interface {
	Sweep(now time.Time) int
}

type RateLimitGCJob struct {
	store    Sweepable
	interval time.Duration
	now      func() time.Time
}

func NewRateLimitGCJob(store Sweepable, interval time.Duration) *RateLimitGCJob {
	return &RateLimitGCJob{store: store, interval: interval, now: time.Now}
}

func (j *RateLimitGCJob) Name() string { return "ratelimit_gc" }

func (j *RateLimitGCJob) Schedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *RateLimitGCJob) Options() []gocron.JobOption { return nil }

func (j *RateLimitGCJob) Execute() {
	if n := j.store.Sweep(j.now()); n > 0 {
		slog.Debug("rate limit windows collected", "removed", n)
	}
}
