package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/service"
	"github.com/set-night/clipwatch/internal/telegram"
)

const maxPreviewEntries = 25

func (h *Handler) handleSweep(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	h.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🔄 Sweep started.",
	})

	report, err := h.sweeper.RunSweep(ctx)
	if errors.Is(err, domain.ErrSweepRunning) {
		h.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ A sweep is already running.",
		})
		return
	}
	if err != nil {
		slog.Error("manual sweep failed", "error", err)
		if h.tgLogger != nil {
			h.tgLogger.Error(err, "manual sweep")
		}
		h.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Sweep failed: " + err.Error(),
		})
		return
	}

	if err := telegram.SendLongMessage(ctx, h.api, chatID, telegram.FormatSweepReport(report), nil); err != nil {
		slog.Error("send sweep report", "error", err)
	}
}

func (h *Handler) handleCampaign(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	// /campaign <id>
	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		h.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Usage: /campaign <id>",
		})
		return
	}

	h.sendPreview(ctx, chatID, parts[1])
}

func (h *Handler) handleCampaignRefresh(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	msg := update.CallbackQuery.Message.Message
	campaignID, ok := telegram.CampaignIDFromCallback(update.CallbackQuery.Data)
	if msg == nil || !ok {
		return
	}
	h.sendPreview(ctx, msg.Chat.ID, campaignID)
}

func (h *Handler) sendPreview(ctx context.Context, chatID int64, campaignID string) {
	campaign, err := h.queries.GetCampaign(ctx, campaignID)
	if errors.Is(err, domain.ErrCampaignNotFound) {
		h.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Campaign not found.",
		})
		return
	}
	if err != nil {
		slog.Error("get campaign", "error", err, "campaign_id", campaignID)
		return
	}

	result, err := h.calculator.CalculateCampaignPayouts(ctx, campaignID)
	if err != nil {
		slog.Error("preview payouts", "error", err, "campaign_id", campaignID)
		h.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to calculate payouts.",
		})
		return
	}

	kb := telegram.CampaignPreviewKeyboard(campaign, len(result.Payouts))
	if err := telegram.SendLongMessage(ctx, h.api, chatID, FormatPayoutPreview(campaign, result), kb); err != nil {
		slog.Error("send payout preview", "error", err)
	}
}

// FormatPayoutPreview renders what the next reconciliation would charge.
func FormatPayoutPreview(c domain.Campaign, r service.PayoutResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *%s*\n`%s` · %s\n\n", telegram.EscapeMarkdown(c.Title), c.ID, c.Status))
	sb.WriteString(fmt.Sprintf("*Budget:* $%s\n*Spent:* $%s\n*Rate:* $%s / 1000 views\n\n",
		c.Budget.StringFixed(2), c.Spent.StringFixed(2), c.PayoutRate.StringFixed(2)))

	if len(r.Payouts) == 0 {
		sb.WriteString("No payouts pending.\n")
	}
	for i, p := range r.Payouts {
		if i == maxPreviewEntries {
			sb.WriteString(fmt.Sprintf("… and %d more\n", len(r.Payouts)-maxPreviewEntries))
			break
		}
		sb.WriteString(fmt.Sprintf("• `%s` %d views: +$%s (total $%s)\n",
			p.SubmissionID, p.Views, p.Amount.StringFixed(2), p.Payout.StringFixed(2)))
	}

	sb.WriteString(fmt.Sprintf("\n*This cycle:* $%s\n*Remaining after:* $%s", r.TotalSpent.StringFixed(2), r.RemainingBudget.StringFixed(2)))
	if r.ShouldComplete {
		sb.WriteString("\n⚠️ Budget exhausted: campaign completes on next reconcile.")
	}
	return sb.String()
}
