package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/set-night/clipwatch/internal/config"
	"github.com/set-night/clipwatch/internal/repository"
	"github.com/set-night/clipwatch/internal/service"
	"github.com/set-night/clipwatch/internal/telegram"
)

type SweepRunner interface {
	RunSweep(ctx context.Context) (service.SweepReport, error)
}

type PayoutPreviewer interface {
	CalculateCampaignPayouts(ctx context.Context, campaignID string) (service.PayoutResult, error)
}

// botAPI is the subset of *bot.Bot the handlers call.
type botAPI interface {
	telegram.Sender
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot        *bot.Bot
	api        botAPI
	cfg        *config.Config
	sweeper    SweepRunner
	calculator PayoutPreviewer
	queries    repository.Querier
	tgLogger   *telegram.TelegramLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot        *bot.Bot
	Cfg        *config.Config
	Sweeper    SweepRunner
	Calculator PayoutPreviewer
	Queries    repository.Querier
	TgLogger   *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	h := &Handler{
		bot:        deps.Bot,
		cfg:        deps.Cfg,
		sweeper:    deps.Sweeper,
		calculator: deps.Calculator,
		queries:    deps.Queries,
		tgLogger:   deps.TgLogger,
	}
	if deps.Bot != nil {
		h.api = deps.Bot
	}
	return h
}
