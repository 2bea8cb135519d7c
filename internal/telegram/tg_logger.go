package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/set-night/clipwatch/internal/config"
	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/service"
	"github.com/shopspring/decimal"
)

// TelegramLogger posts operational events to topics of an ops chat.
type TelegramLogger struct {
	bot Sender
	cfg *config.Config
}

func NewTelegramLogger(b Sender, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

var _ service.Notifier = (*TelegramLogger)(nil)

type LogType string

const (
	LogTypeError             LogType = "error"
	LogTypeSweep             LogType = "sweep"
	LogTypeCampaignCompleted LogType = "campaignCompleted"
	LogTypeFraud             LogType = "fraud"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	// Truncate if too long
	if len([]rune(message)) > config.MaxTelegramMessageLen {
		message = string([]rune(message)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       "Markdown",
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) Error(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		EscapeMarkdown(context), strings.ReplaceAll(err.Error(), "`", "'"), time.Now().UTC().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) SweepCompleted(r service.SweepReport) {
	l.Log(LogTypeSweep, FormatSweepReport(r))
}

func (l *TelegramLogger) CampaignCompleted(c domain.Campaign, spent decimal.Decimal) {
	msg := fmt.Sprintf("🏁 *Campaign Completed*\n\n*ID:* `%s`\n*Title:* %s\n*Budget:* $%s\n*Spent:* $%s",
		c.ID, EscapeMarkdown(c.Title), c.Budget.StringFixed(2), spent.StringFixed(2))
	if spent.GreaterThan(c.Budget) {
		msg += fmt.Sprintf("\n*Overshoot:* $%s", spent.Sub(c.Budget).StringFixed(2))
	}
	l.Log(LogTypeCampaignCompleted, msg)
}

func (l *TelegramLogger) FraudDecision(userID, url string, a service.FraudAssessment) {
	msg := fmt.Sprintf("🚩 *Fraud %s*\n\n*User:* `%s`\n*URL:* %s\n*Score:* %d",
		strings.ToUpper(string(a.Action)), userID, EscapeMarkdown(url), a.Score)
	for _, r := range a.Reasons {
		msg += "\n• " + EscapeMarkdown(r)
	}
	l.Log(LogTypeFraud, msg)
}

// FormatSweepReport renders a sweep summary in Markdown.
func FormatSweepReport(r service.SweepReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔄 *Sweep Finished*\n\n*Campaigns:* %d\n*Platforms:* %d\n*URLs:* %d (%d failed)\n*Recorded:* %d (%d failed)\n*Reconciled:* %d (%d failed)\n*Charged:* $%s\n*Duration:* %s",
		r.Campaigns, r.Platforms, r.URLs, r.ScrapeErrors, r.Recorded, r.RecordErrors,
		r.Reconciled, r.ReconcileErrors, r.Charged.StringFixed(2), r.Duration().Round(time.Second))
	if r.PausedSkipped > 0 {
		fmt.Fprintf(&b, "\n*Paused (not charged):* %d", r.PausedSkipped)
	}
	if len(r.CompletedCampaigns) > 0 {
		fmt.Fprintf(&b, "\n*Completed:* `%s`", strings.Join(r.CompletedCampaigns, "`, `"))
	}
	return b.String()
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeSweep:
		return l.cfg.LogTopicSweep
	case LogTypeCampaignCompleted:
		return l.cfg.LogTopicCampaignDone
	case LogTypeFraud:
		return l.cfg.LogTopicFraudDecision
	default:
		return 0
	}
}
