// Package ratelimit is a fixed-window request counter keyed by
// (identifier, endpoint). Windows reset lazily on the first hit after
// they expire.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/set-night/clipwatch/internal/config"
)

type Rule struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultRules are the per-endpoint limits.
var DefaultRules = map[string]Rule{
	config.EndpointSubmissionCreate: {Window: time.Minute, MaxRequests: 10},
	config.EndpointSubmissionUpdate: {Window: time.Minute, MaxRequests: 20},
	config.EndpointBotCommand:       {Window: time.Minute, MaxRequests: 30},
	config.EndpointDefault:          {Window: time.Minute, MaxRequests: 60},
}

type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

// Store increments the counter for key, opening a new window of length
// window when none is open at now. It returns the count and window end.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration, now time.Time) (count int, resetAt time.Time, err error)
}

type Limiter struct {
	store Store
	rules map[string]Rule
	now   func() time.Time
}

func NewLimiter(store Store, rules map[string]Rule) *Limiter {
	if rules == nil {
		rules = DefaultRules
	}
	return &Limiter{store: store, rules: rules, now: time.Now}
}

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) Rule(endpoint string) Rule {
	if r, ok := l.rules[endpoint]; ok {
		return r
	}
	if r, ok := l.rules[config.EndpointDefault]; ok {
		return r
	}
	return DefaultRules[config.EndpointDefault]
}

func (l *Limiter) CheckLimit(ctx context.Context, identifier, endpoint string) (Result, error) {
	rule := l.Rule(endpoint)
	key := fmt.Sprintf("ratelimit:%s:%s", endpoint, identifier)

	count, resetAt, err := l.store.Increment(ctx, key, rule.Window, l.now())
	if err != nil {
		return Result{}, fmt.Errorf("increment %s: %w", key, err)
	}

	remaining := rule.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= rule.MaxRequests,
		Remaining: remaining,
		ResetTime: resetAt,
	}, nil
}
