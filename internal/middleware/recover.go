package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type ErrorReporter interface {
	Error(err error, context string)
}

// Recover returns middleware that recovers from panics and reports them.
func Recover(reporter ErrorReporter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic recovered in handler",
						"panic", r,
						"stack", string(debug.Stack()),
					)
					if reporter != nil {
						reporter.Error(fmt.Errorf("panic: %v", r), "bot handler")
					}
				}
			}()
			next(ctx, b, update)
		}
	}
}
