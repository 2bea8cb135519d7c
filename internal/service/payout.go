package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository"
	"github.com/shopspring/decimal"
)

type PayoutEntry struct {
	SubmissionID   string
	UserID         string
	Views          int64
	PreviousPayout decimal.Decimal // already reflected in campaign spent
	Payout         decimal.Decimal // cumulative payout for Views
	Amount         decimal.Decimal // Payout - PreviousPayout, charged this cycle
}

type PayoutResult struct {
	CampaignID      string
	TotalSpent      decimal.Decimal
	RemainingBudget decimal.Decimal
	ShouldComplete  bool
	Payouts         []PayoutEntry
}

// CalculatePayoutAmount is views/1000 * rate rounded half-up to cents.
func CalculatePayoutAmount(views int64, rate decimal.Decimal) decimal.Decimal {
	return domain.RoundMoney(decimal.NewFromInt(views).Mul(rate).Shift(-3))
}

type PayoutCalculator struct {
	store repository.Querier
}

func NewPayoutCalculator(store repository.Querier) *PayoutCalculator {
	return &PayoutCalculator{store: store}
}

// CalculateCampaignPayouts prices the latest reading of every approved
// submission. It does not write anything.
func (c *PayoutCalculator) CalculateCampaignPayouts(ctx context.Context, campaignID string) (PayoutResult, error) {
	campaign, err := c.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return PayoutResult{}, fmt.Errorf("get campaign: %w", err)
	}

	subs, err := c.store.ListCampaignSubmissions(ctx, repository.ListCampaignSubmissionsParams{
		CampaignID: campaignID,
		Statuses:   []domain.SubmissionStatus{domain.SubmissionStatusApproved},
	})
	if err != nil {
		return PayoutResult{}, fmt.Errorf("list submissions: %w", err)
	}

	result := PayoutResult{CampaignID: campaignID, TotalSpent: decimal.Zero}
	for _, sub := range subs {
		if sub.ClipID == nil {
			continue
		}
		latest, err := c.store.GetLatestViewTrackingForClip(ctx, *sub.ClipID)
		if errors.Is(err, domain.ErrTrackingNotFound) {
			continue
		}
		if err != nil {
			return PayoutResult{}, fmt.Errorf("latest tracking for clip %s: %w", *sub.ClipID, err)
		}

		payout := CalculatePayoutAmount(latest.Views, campaign.PayoutRate)
		previous := sub.PaidSoFar()
		amount := payout.Sub(previous)
		if !amount.IsPositive() {
			continue
		}

		result.Payouts = append(result.Payouts, PayoutEntry{
			SubmissionID:   sub.ID,
			UserID:         sub.UserID,
			Views:          latest.Views,
			PreviousPayout: previous,
			Payout:         payout,
			Amount:         amount,
		})
		result.TotalSpent = result.TotalSpent.Add(amount)
	}

	result.RemainingBudget = campaign.Budget.Sub(campaign.Spent).Sub(result.TotalSpent)
	result.ShouldComplete = !result.RemainingBudget.IsPositive()
	return result, nil
}
