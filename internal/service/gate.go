package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/set-night/clipwatch/internal/config"
	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/ratelimit"
	"github.com/set-night/clipwatch/internal/repository"
)

type RateLimiter interface {
	CheckLimit(ctx context.Context, identifier, endpoint string) (ratelimit.Result, error)
}

type GateDecision struct {
	Allowed    bool
	RateLimit  ratelimit.Result
	Assessment FraudAssessment
}

// SubmissionGate is consulted before a submission is created. Only a rate
// limit denial or a "block" assessment rejects.
type SubmissionGate struct {
	store    repository.Querier
	limiter  RateLimiter
	scorer   FraudScorer
	notifier Notifier
	now      func() time.Time
}

func NewSubmissionGate(store repository.Querier, limiter RateLimiter, notifier Notifier) *SubmissionGate {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SubmissionGate{store: store, limiter: limiter, notifier: notifier, now: time.Now}
}

func (g *SubmissionGate) Check(ctx context.Context, userID, clipURL string) (GateDecision, error) {
	var d GateDecision

	rl, err := g.limiter.CheckLimit(ctx, userID, config.EndpointSubmissionCreate)
	if err != nil {
		return d, fmt.Errorf("check rate limit: %w", err)
	}
	d.RateLimit = rl
	if !rl.Allowed {
		return d, fmt.Errorf("user %s until %s: %w", userID, rl.ResetTime.Format(time.RFC3339), domain.ErrRateLimited)
	}

	sig, err := g.Signals(ctx, userID, clipURL)
	if err != nil {
		return d, err
	}
	d.Assessment = g.scorer.Score(sig)

	if d.Assessment.Action == FraudActionFlag || d.Assessment.Action == FraudActionBlock {
		slog.Warn("fraud heuristic triggered",
			"user_id", userID,
			"url", clipURL,
			"score", d.Assessment.Score,
			"action", d.Assessment.Action,
			"reasons", d.Assessment.Reasons,
		)
		g.notifier.FraudDecision(userID, clipURL, d.Assessment)
	}
	if d.Assessment.Action == FraudActionBlock {
		return d, fmt.Errorf("user %s score %d: %w", userID, d.Assessment.Score, domain.ErrSubmissionBlocked)
	}

	d.Allowed = true
	return d, nil
}

// Signals gathers the user's recent history, treating clipURL as a
// submission made now.
func (g *SubmissionGate) Signals(ctx context.Context, userID, clipURL string) (FraudSignals, error) {
	now := g.now()

	user, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return FraudSignals{}, fmt.Errorf("get user: %w", err)
	}
	recent, err := g.store.ListUserSubmissionsSince(ctx, repository.ListUserSubmissionsSinceParams{
		UserID: userID,
		Since:  now.Add(-config.FraudLookback),
	})
	if err != nil {
		return FraudSignals{}, fmt.Errorf("list recent submissions: %w", err)
	}

	sig := FraudSignals{
		SubmissionsLastHour: len(recent) + 1,
		AccountAge:          user.AccountAge(now),
		Verified:            user.Verified,
	}

	target := normalizeURL(clipURL)
	times := make([]time.Time, 0, len(recent)+1)
	for _, sub := range recent {
		if normalizeURL(sub.ClipURL) == target {
			sig.DuplicateURL = true
		}
		times = append(times, sub.CreatedAt)
	}
	times = append(times, now)

	// recent is ordered by created_at
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		if gap < 0 {
			gap = -gap
		}
		if sig.MinGap == nil || gap < *sig.MinGap {
			sig.MinGap = &gap
		}
	}
	return sig, nil
}
