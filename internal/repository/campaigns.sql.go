package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/clipwatch/internal/domain"
	"github.com/shopspring/decimal"
)

const campaignColumns = `id, title, budget, spent, payout_rate, status, target_platforms,
	start_date, is_test, deleted_at, created_at, updated_at`

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var c domain.Campaign
	var status string
	var platforms []string
	err := row.Scan(
		&c.ID, &c.Title, &c.Budget, &c.Spent, &c.PayoutRate, &status, &platforms,
		&c.StartDate, &c.IsTest, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Campaign{}, err
	}
	c.Status = domain.CampaignStatus(status)
	c.TargetPlatforms = make([]domain.Platform, 0, len(platforms))
	for _, p := range platforms {
		c.TargetPlatforms = append(c.TargetPlatforms, domain.Platform(p))
	}
	return c, nil
}

const listSweepCampaigns = `SELECT ` + campaignColumns + `
FROM campaigns
WHERE status IN ('ACTIVE', 'PAUSED') AND is_test = FALSE AND deleted_at IS NULL
ORDER BY created_at, id`

func (q *Queries) ListSweepCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := q.db.Query(ctx, listSweepCampaigns)
	if err != nil {
		return nil, fmt.Errorf("query sweep campaigns: %w", err)
	}
	defer rows.Close()

	var items []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getCampaign = `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

func (q *Queries) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	c, err := scanCampaign(q.db.QueryRow(ctx, getCampaign, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return c, err
}

const getCampaignForUpdate = getCampaign + ` FOR UPDATE`

func (q *Queries) GetCampaignForUpdate(ctx context.Context, id string) (domain.Campaign, error) {
	c, err := scanCampaign(q.db.QueryRow(ctx, getCampaignForUpdate, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return c, err
}

const addCampaignSpent = `UPDATE campaigns
SET spent = spent + $2, updated_at = now()
WHERE id = $1
RETURNING spent`

func (q *Queries) AddCampaignSpent(ctx context.Context, arg AddCampaignSpentParams) (decimal.Decimal, error) {
	var spent decimal.Decimal
	err := q.db.QueryRow(ctx, addCampaignSpent, arg.ID, arg.Amount).Scan(&spent)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, domain.ErrCampaignNotFound
	}
	return spent, err
}

const updateCampaignStatus = `UPDATE campaigns SET status = $2, updated_at = now() WHERE id = $1`

func (q *Queries) UpdateCampaignStatus(ctx context.Context, arg UpdateCampaignStatusParams) error {
	tag, err := q.db.Exec(ctx, updateCampaignStatus, arg.ID, string(arg.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}
