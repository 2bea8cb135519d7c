package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/redis/go-redis/v9"
	clipwatch "github.com/set-night/clipwatch"
	"github.com/set-night/clipwatch/internal/config"
	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/handler"
	"github.com/set-night/clipwatch/internal/middleware"
	"github.com/set-night/clipwatch/internal/ratelimit"
	"github.com/set-night/clipwatch/internal/repository"
	"github.com/set-night/clipwatch/internal/scheduler"
	"github.com/set-night/clipwatch/internal/scraper"
	"github.com/set-night/clipwatch/internal/service"
	"github.com/set-night/clipwatch/internal/telegram"
)

type rateLimitStore interface {
	ratelimit.Store
	scheduler.Sweepable
}

// errorRelay forwards to the Telegram logger once the bot exists.
type errorRelay struct {
	logger *telegram.TelegramLogger
}

func (r *errorRelay) Error(err error, context string) {
	if r.logger != nil {
		r.logger.Error(err, context)
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(clipwatch.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := repository.NewStore(pool)
	registry := scraper.NewRegistry(cfg)
	relay := &errorRelay{}

	// Rate limiting
	var limitStore rateLimitStore = ratelimit.NewMemoryStore()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, rate limits fall back to memory until it recovers", "error", err)
		}
		limitStore = ratelimit.NewRedisStore(rdb)
	}
	limiter := ratelimit.NewLimiter(limitStore, nil)

	// Telegram bot for ops logs and admin commands
	var b *bot.Bot
	var notifier service.Notifier = service.NopNotifier{}
	if cfg.BotEnabled() {
		b, err = bot.New(cfg.BotToken,
			bot.WithMiddlewares(
				middleware.Recover(relay),
				middleware.Logging(),
				middleware.AdminOnly(cfg),
				middleware.RateLimit(limiter),
			),
		)
		if err != nil {
			slog.Error("failed to create bot", "error", err)
			os.Exit(1)
		}
		relay.logger = telegram.NewTelegramLogger(b, cfg)
		notifier = relay.logger
	}

	sweeper := service.NewSweeper(store, registry, notifier, map[domain.Platform]time.Duration{
		domain.PlatformTikTok:  cfg.TikTokDelay,
		domain.PlatformTwitter: cfg.TwitterDelay,
	}, cfg.DefaultScrapeDelay)

	if cfg.RunOnce {
		report, err := sweeper.RunSweep(ctx)
		if err != nil {
			slog.Error("sweep failed", "error", err)
			relay.Error(err, "run once sweep")
			os.Exit(1)
		}
		slog.Info("run once sweep done",
			"urls", report.URLs,
			"recorded", report.Recorded,
			"charged", report.Charged.StringFixed(2),
		)
		return
	}

	// Scheduled jobs
	manager, err := scheduler.NewManager(
		scheduler.NewSweepJob(ctx, sweeper, cfg.SweepInterval, relay),
		scheduler.NewRateLimitGCJob(limitStore, config.RateLimitGCInterval),
	)
	if err != nil {
		slog.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}
	if err := manager.RegisterJobs(); err != nil {
		slog.Error("failed to register jobs", "error", err)
		os.Exit(1)
	}
	manager.Start()
	defer manager.Stop()

	if b == nil {
		slog.Info("bot disabled, running scheduler only", "interval", cfg.SweepInterval)
		<-ctx.Done()
		slog.Info("tracker stopped gracefully")
		return
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	h := handler.New(handler.Deps{
		Bot:        b,
		Cfg:        cfg,
		Sweeper:    sweeper,
		Calculator: sweeper.Calculator(),
		Queries:    store,
		TgLogger:   relay.logger,
	})
	h.Register()

	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("tracker stopped gracefully")
}
