package domain

import "errors"

var (
	// Scraper failures, all recoverable per URL.
	ErrScrapeTimeout  = errors.New("scrape timed out")
	ErrScrapeFailed   = errors.New("scrape failed")
	ErrNotImplemented = errors.New("platform scraper not implemented")
	ErrRateLimited    = errors.New("rate limited by provider")
	ErrAuth           = errors.New("provider authentication failed")
	ErrNotFound       = errors.New("content not found")
	ErrConfiguration  = errors.New("provider not configured")
	ErrInvalidURL     = errors.New("invalid content url")

	// Pipeline failures, recoverable per submission or campaign.
	ErrRecording      = errors.New("recording views failed")
	ErrReconciliation = errors.New("reconciling payouts failed")
	ErrStalePayout    = errors.New("submission payout changed since calculation")
	ErrSweepRunning   = errors.New("sweep already running")

	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrClipNotFound       = errors.New("clip not found")
	ErrTrackingNotFound   = errors.New("view tracking not found")
	ErrUserNotFound       = errors.New("user not found")

	ErrInvalidTransition = errors.New("invalid campaign status transition")
	ErrUnknownPlatform   = errors.New("unknown platform")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrSubmissionBlocked = errors.New("submission blocked")
)
