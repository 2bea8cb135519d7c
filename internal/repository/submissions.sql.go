package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/clipwatch/internal/domain"
)

const submissionColumns = `id, campaign_id, user_id, clip_id, clip_url, platform, status,
	payout, initial_views, final_earnings, created_at, updated_at`

func scanSubmission(row pgx.Row) (domain.ClipSubmission, error) {
	var s domain.ClipSubmission
	var platform, status string
	err := row.Scan(
		&s.ID, &s.CampaignID, &s.UserID, &s.ClipID, &s.ClipURL, &platform, &status,
		&s.Payout, &s.InitialViews, &s.FinalEarnings, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.ClipSubmission{}, err
	}
	s.Platform = domain.Platform(platform)
	s.Status = domain.SubmissionStatus(status)
	return s, nil
}

func collectSubmissions(rows pgx.Rows) ([]domain.ClipSubmission, error) {
	defer rows.Close()
	var items []domain.ClipSubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const listCampaignSubmissions = `SELECT ` + submissionColumns + `
FROM clip_submissions
WHERE campaign_id = $1 AND status = ANY($2)
ORDER BY created_at, id`

func (q *Queries) ListCampaignSubmissions(ctx context.Context, arg ListCampaignSubmissionsParams) ([]domain.ClipSubmission, error) {
	statuses := make([]string, len(arg.Statuses))
	for i, st := range arg.Statuses {
		statuses[i] = string(st)
	}
	rows, err := q.db.Query(ctx, listCampaignSubmissions, arg.CampaignID, statuses)
	if err != nil {
		return nil, fmt.Errorf("query campaign submissions: %w", err)
	}
	return collectSubmissions(rows)
}

const listUserSubmissionsSince = `SELECT ` + submissionColumns + `
FROM clip_submissions
WHERE user_id = $1 AND created_at >= $2
ORDER BY created_at, id`

func (q *Queries) ListUserSubmissionsSince(ctx context.Context, arg ListUserSubmissionsSinceParams) ([]domain.ClipSubmission, error) {
	rows, err := q.db.Query(ctx, listUserSubmissionsSince, arg.UserID, arg.Since)
	if err != nil {
		return nil, fmt.Errorf("query user submissions: %w", err)
	}
	return collectSubmissions(rows)
}

const getSubmissionForUpdate = `SELECT ` + submissionColumns + ` FROM clip_submissions WHERE id = $1 FOR UPDATE`

func (q *Queries) GetSubmissionForUpdate(ctx context.Context, id string) (domain.ClipSubmission, error) {
	s, err := scanSubmission(q.db.QueryRow(ctx, getSubmissionForUpdate, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ClipSubmission{}, domain.ErrSubmissionNotFound
	}
	return s, err
}

const setSubmissionClip = `UPDATE clip_submissions SET clip_id = $2, updated_at = now() WHERE id = $1`

func (q *Queries) SetSubmissionClip(ctx context.Context, arg SetSubmissionClipParams) error {
	return q.execOne(ctx, domain.ErrSubmissionNotFound, setSubmissionClip, arg.ID, arg.ClipID)
}

const setSubmissionInitialViews = `UPDATE clip_submissions
SET initial_views = $2, updated_at = now()
WHERE id = $1 AND initial_views IS NULL`

func (q *Queries) SetSubmissionInitialViews(ctx context.Context, arg SetSubmissionInitialViewsParams) error {
	_, err := q.db.Exec(ctx, setSubmissionInitialViews, arg.ID, arg.Views)
	return err
}

const setSubmissionPayout = `UPDATE clip_submissions SET payout = $2, updated_at = now() WHERE id = $1`

func (q *Queries) SetSubmissionPayout(ctx context.Context, arg SetSubmissionPayoutParams) error {
	return q.execOne(ctx, domain.ErrSubmissionNotFound, setSubmissionPayout, arg.ID, arg.Payout)
}

const markCampaignSubmissionsPaid = `UPDATE clip_submissions
SET status = 'PAID', final_earnings = COALESCE(payout, 0), updated_at = now()
WHERE campaign_id = $1 AND status = 'APPROVED'`

func (q *Queries) MarkCampaignSubmissionsPaid(ctx context.Context, campaignID string) (int64, error) {
	tag, err := q.db.Exec(ctx, markCampaignSubmissionsPaid, campaignID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// execOne runs a single-row statement and maps zero affected rows to notFound.
func (q *Queries) execOne(ctx context.Context, notFound error, sql string, args ...interface{}) error {
	tag, err := q.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
