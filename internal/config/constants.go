package config

import "time"

const (
	// Apify run polling: one poll per second, three minutes at most
	TikTokPollInterval = 1 * time.Second
	TikTokMaxPolls     = 180

	// Provider HTTP timeouts
	ScrapeHTTPTimeout = 30 * time.Second

	// Rate-limit key GC
	RateLimitGCInterval = 5 * time.Minute

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Fraud scoring thresholds
	FraudReviewThreshold = 20
	FraudFlagThreshold   = 40
	FraudBlockThreshold  = 70

	// Fraud lookback for submission history
	FraudLookback = time.Hour
)

// Endpoint names used by the rate limiter.
const (
	EndpointSubmissionCreate = "submission-create"
	EndpointSubmissionUpdate = "submission-update"
	EndpointBotCommand       = "bot-command"
	EndpointDefault          = "default"
)
