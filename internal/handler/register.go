package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/clipwatch/internal/telegram"
)

// Register wires all bot commands and callbacks.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/sweep", bot.MatchTypePrefix, h.handleSweep)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/campaign", bot.MatchTypePrefix, h.handleCampaign)

	// Campaign preview callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.CampaignCallbackPrefix, bot.MatchTypePrefix, h.handleCampaignRefresh)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, telegram.NoopCallback, bot.MatchTypeExact, h.handleNoop)
}

// handleNoop acknowledges callbacks from non-interactive buttons.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		h.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "Commands:\n/sweep - run a tracking sweep now\n/campaign <id> - payout preview",
	})
}
