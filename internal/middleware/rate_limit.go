package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/clipwatch/internal/config"
	"github.com/set-night/clipwatch/internal/ratelimit"
)

type Limiter interface {
	CheckLimit(ctx context.Context, identifier, endpoint string) (ratelimit.Result, error)
}

// RateLimit returns middleware that enforces the bot-command limit per user.
func RateLimit(limiter Limiter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			userID, chatID, ok := senderID(update)
			if !ok {
				next(ctx, b, update)
				return
			}

			res, err := limiter.CheckLimit(ctx, strconv.FormatInt(userID, 10), config.EndpointBotCommand)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "user_id", userID)
				next(ctx, b, update)
				return
			}

			if !res.Allowed {
				slog.Debug("rate limited", "user_id", userID, "reset", res.ResetTime)
				if chatID != 0 {
					b.SendMessage(ctx, &bot.SendMessageParams{
						ChatID: chatID,
						Text:   fmt.Sprintf("⏳ Too many commands. Try again in %s.", time.Until(res.ResetTime).Round(time.Second)),
					})
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
