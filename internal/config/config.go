package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Sweep scheduling
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"60m"`
	RunOnce       bool          `env:"RUN_ONCE" envDefault:"false"`

	// Scraper: Apify (TikTok)
	ApifyToken       string `env:"APIFY_TOKEN"`
	ApifyBaseURL     string `env:"APIFY_BASE_URL" envDefault:"https://api.apify.com"`
	ApifyTikTokActor string `env:"APIFY_TIKTOK_ACTOR" envDefault:"clockworks~tiktok-scraper"`

	// Scraper: X API v2
	TwitterBearerToken string `env:"TWITTER_BEARER_TOKEN"`
	TwitterAPIURL      string `env:"TWITTER_API_URL" envDefault:"https://api.twitter.com"`

	// Scraper: YouTube watch page reader, off by default
	YouTubeHTMLScrape bool `env:"YOUTUBE_HTML_SCRAPE" envDefault:"false"`

	// Inter-request delays
	TikTokDelay        time.Duration `env:"TIKTOK_DELAY" envDefault:"1s"`
	TwitterDelay       time.Duration `env:"TWITTER_DELAY" envDefault:"3s"`
	DefaultScrapeDelay time.Duration `env:"DEFAULT_SCRAPE_DELAY" envDefault:"1s"`

	// Rate limiting; in-memory counters when empty
	RedisURL string `env:"REDIS_URL"`

	// Bot: admin commands and ops logs, disabled when empty
	BotToken string  `env:"BOT_TOKEN"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Telegram logging
	LogTelegramChatID     int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError         int   `env:"LOG_TOPIC_ERROR"`
	LogTopicSweep         int   `env:"LOG_TOPIC_SWEEP"`
	LogTopicCampaignDone  int   `env:"LOG_TOPIC_CAMPAIGN_COMPLETED"`
	LogTopicFraudDecision int   `env:"LOG_TOPIC_FRAUD"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) BotEnabled() bool {
	return c.BotToken != ""
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
