package middleware

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly drops updates from users that are not configured admins.
func AdminOnly(cfg interface{ IsAdmin(int64) bool }) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			userID, _, ok := senderID(update)
			if !ok || !cfg.IsAdmin(userID) {
				slog.Debug("ignoring update from non-admin", "user_id", userID)
				return
			}
			next(ctx, b, update)
		}
	}
}
