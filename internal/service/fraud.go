package service

import (
	"time"

	"github.com/set-night/clipwatch/internal/config"
)

type FraudAction string

const (
	FraudActionAllow  FraudAction = "allow"
	FraudActionReview FraudAction = "review"
	FraudActionFlag   FraudAction = "flag"
	FraudActionBlock  FraudAction = "block"
)

// FraudSignals describes a user's submission pattern in the lookback
// window, counting the submission being scored.
type FraudSignals struct {
	SubmissionsLastHour int
	MinGap              *time.Duration // smallest gap between consecutive submissions
	DuplicateURL        bool
	AccountAge          time.Duration
	Verified            bool
}

type FraudAssessment struct {
	Score      int
	Suspicious bool
	Action     FraudAction
	Reasons    []string
}

// FraudScorer weighs submission signals into an advisory score.
type FraudScorer struct{}

func (FraudScorer) Score(sig FraudSignals) FraudAssessment {
	var a FraudAssessment

	add := func(points int, reason string) {
		a.Score += points
		a.Reasons = append(a.Reasons, reason)
	}

	switch {
	case sig.SubmissionsLastHour >= 10:
		add(30, "burst: 10+ submissions in an hour")
	case sig.SubmissionsLastHour >= 5:
		add(15, "burst: 5+ submissions in an hour")
	}
	if sig.MinGap != nil && *sig.MinGap < time.Second {
		add(25, "sub-second submission gap")
	}
	if sig.DuplicateURL {
		add(20, "duplicate url within an hour")
	}
	if sig.AccountAge < 24*time.Hour && sig.SubmissionsLastHour >= 3 {
		add(20, "new account with high activity")
	}
	if !sig.Verified && sig.SubmissionsLastHour >= 3 {
		add(15, "unverified account with multiple submissions")
	}

	a.Suspicious = a.Score >= config.FraudReviewThreshold
	switch {
	case a.Score >= config.FraudBlockThreshold:
		a.Action = FraudActionBlock
	case a.Score >= config.FraudFlagThreshold:
		a.Action = FraudActionFlag
	case a.Score >= config.FraudReviewThreshold:
		a.Action = FraudActionReview
	default:
		a.Action = FraudActionAllow
	}
	return a
}
