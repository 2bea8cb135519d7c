package service

import (
	"context"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository"
	"github.com/shopspring/decimal"
)

// Store is satisfied by repository.Store (Postgres) and memory.Store.
type Store interface {
	repository.Querier
	InTx(ctx context.Context, fn func(q repository.Querier) error) error
}

// Notifier receives operational events worth surfacing outside the logs.
type Notifier interface {
	SweepCompleted(report SweepReport)
	CampaignCompleted(campaign domain.Campaign, spent decimal.Decimal)
	FraudDecision(userID, url string, assessment FraudAssessment)
	Error(err error, context string)
}

type NopNotifier struct{}

func (NopNotifier) SweepCompleted(SweepReport) {}
func (NopNotifier) CampaignCompleted(domain.Campaign, decimal.Decimal) {}
func (NopNotifier) FraudDecision(string, string, FraudAssessment) {}
func (NopNotifier) Error(error, string) {}
