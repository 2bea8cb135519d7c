package service

import (
	"context"
	"fmt"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository"
	"github.com/shopspring/decimal"
)

type ReconcileOutcome struct {
	CampaignID      string
	Applied         int
	Charged         decimal.Decimal
	Spent           decimal.Decimal
	Completed       bool
	PaidSubmissions int64
	Skipped         bool // campaign was already completed
}

type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// ApplyPayoutResult charges one campaign in a single transaction. Spent may
// exceed budget by the last cycle; it is never clamped.
func (r *Reconciler) ApplyPayoutResult(ctx context.Context, result PayoutResult) (ReconcileOutcome, error) {
	var out ReconcileOutcome

	err := r.store.InTx(ctx, func(q repository.Querier) error {
		out = ReconcileOutcome{CampaignID: result.CampaignID, Charged: decimal.Zero}

		campaign, err := q.GetCampaignForUpdate(ctx, result.CampaignID)
		if err != nil {
			return fmt.Errorf("lock campaign: %w", err)
		}
		if campaign.Status == domain.CampaignStatusCompleted {
			out.Skipped = true
			out.Spent = campaign.Spent
			return nil
		}

		for _, entry := range result.Payouts {
			sub, err := q.GetSubmissionForUpdate(ctx, entry.SubmissionID)
			if err != nil {
				return fmt.Errorf("lock submission %s: %w", entry.SubmissionID, err)
			}
			if sub.CampaignID != campaign.ID || sub.Status != domain.SubmissionStatusApproved ||
				!sub.PaidSoFar().Equal(entry.PreviousPayout) {
				return fmt.Errorf("submission %s: %w", sub.ID, domain.ErrStalePayout)
			}

			if err := q.SetSubmissionPayout(ctx, repository.SetSubmissionPayoutParams{ID: sub.ID, Payout: entry.Payout}); err != nil {
				return fmt.Errorf("set payout %s: %w", sub.ID, err)
			}
			if err := q.IncrementUserEarnings(ctx, repository.IncrementUserEarningsParams{ID: sub.UserID, Amount: entry.Amount}); err != nil {
				return fmt.Errorf("increment earnings %s: %w", sub.UserID, err)
			}
			out.Applied++
			out.Charged = out.Charged.Add(entry.Amount)
		}

		spent := campaign.Spent
		if out.Charged.IsPositive() {
			spent, err = q.AddCampaignSpent(ctx, repository.AddCampaignSpentParams{ID: campaign.ID, Amount: out.Charged})
			if err != nil {
				return fmt.Errorf("add spent: %w", err)
			}
		}
		out.Spent = spent

		if !result.ShouldComplete && campaign.Budget.GreaterThan(spent) {
			return nil
		}
		if !campaign.Status.CanTransition(domain.CampaignStatusCompleted) {
			return fmt.Errorf("%s -> %s: %w", campaign.Status, domain.CampaignStatusCompleted, domain.ErrInvalidTransition)
		}
		if err := q.UpdateCampaignStatus(ctx, repository.UpdateCampaignStatusParams{ID: campaign.ID, Status: domain.CampaignStatusCompleted}); err != nil {
			return fmt.Errorf("complete campaign: %w", err)
		}
		paid, err := q.MarkCampaignSubmissionsPaid(ctx, campaign.ID)
		if err != nil {
			return fmt.Errorf("mark submissions paid: %w", err)
		}
		out.Completed = true
		out.PaidSubmissions = paid
		return nil
	})
	if err != nil {
		return ReconcileOutcome{CampaignID: result.CampaignID}, fmt.Errorf("%w: campaign %s: %w", domain.ErrReconciliation, result.CampaignID, err)
	}
	return out, nil
}
