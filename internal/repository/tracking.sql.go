package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/clipwatch/internal/domain"
)

const trackingColumns = `id, user_id, clip_id, date, platform, views, created_at, updated_at`

func scanTracking(row pgx.Row) (domain.ViewTracking, error) {
	var t domain.ViewTracking
	var platform string
	if err := row.Scan(&t.ID, &t.UserID, &t.ClipID, &t.Date, &platform, &t.Views, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.ViewTracking{}, err
	}
	t.Platform = domain.Platform(platform)
	t.Date = domain.TrackingDay(t.Date)
	return t, nil
}

func trackingOrNotFound(t domain.ViewTracking, err error) (domain.ViewTracking, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ViewTracking{}, domain.ErrTrackingNotFound
	}
	return t, err
}

const getViewTrackingForUpdate = `SELECT ` + trackingColumns + `
FROM view_tracking
WHERE user_id = $1 AND clip_id = $2 AND date = $3 AND platform = $4
FOR UPDATE`

func (q *Queries) GetViewTrackingForUpdate(ctx context.Context, key domain.TrackingKey) (domain.ViewTracking, error) {
	return trackingOrNotFound(scanTracking(q.db.QueryRow(ctx, getViewTrackingForUpdate,
		key.UserID, key.ClipID, domain.TrackingDay(key.Date), string(key.Platform),
	)))
}

const getLatestViewTrackingForClip = `SELECT ` + trackingColumns + `
FROM view_tracking
WHERE clip_id = $1
ORDER BY date DESC, updated_at DESC
LIMIT 1`

func (q *Queries) GetLatestViewTrackingForClip(ctx context.Context, clipID string) (domain.ViewTracking, error) {
	return trackingOrNotFound(scanTracking(q.db.QueryRow(ctx, getLatestViewTrackingForClip, clipID)))
}

const createViewTracking = `INSERT INTO view_tracking (id, user_id, clip_id, date, platform, views)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + trackingColumns

func (q *Queries) CreateViewTracking(ctx context.Context, row domain.ViewTracking) (domain.ViewTracking, error) {
	return scanTracking(q.db.QueryRow(ctx, createViewTracking,
		row.ID, row.UserID, row.ClipID, domain.TrackingDay(row.Date), string(row.Platform), row.Views,
	))
}

const updateViewTrackingViews = `UPDATE view_tracking SET views = $2, updated_at = now() WHERE id = $1`

func (q *Queries) UpdateViewTrackingViews(ctx context.Context, arg UpdateViewTrackingViewsParams) error {
	return q.execOne(ctx, domain.ErrTrackingNotFound, updateViewTrackingViews, arg.ID, arg.Views)
}
