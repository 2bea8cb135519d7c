package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/clipwatch/internal/domain"
)

const clipColumns = `id, user_id, url, platform, views, status, created_at, updated_at`

func scanClip(row pgx.Row) (domain.Clip, error) {
	var c domain.Clip
	var platform, status string
	if err := row.Scan(&c.ID, &c.UserID, &c.URL, &platform, &c.Views, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Clip{}, err
	}
	c.Platform = domain.Platform(platform)
	c.Status = domain.ClipStatus(status)
	return c, nil
}

const findUserClip = `SELECT ` + clipColumns + `
FROM clips
WHERE user_id = $1 AND url = $2 AND platform = $3
ORDER BY created_at
LIMIT 1`

func (q *Queries) FindUserClip(ctx context.Context, arg FindUserClipParams) (domain.Clip, error) {
	c, err := scanClip(q.db.QueryRow(ctx, findUserClip, arg.UserID, arg.URL, string(arg.Platform)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Clip{}, domain.ErrClipNotFound
	}
	return c, err
}

const createClip = `INSERT INTO clips (id, user_id, url, platform, views, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + clipColumns

func (q *Queries) CreateClip(ctx context.Context, clip domain.Clip) (domain.Clip, error) {
	if clip.Status == "" {
		clip.Status = domain.ClipStatusActive
	}
	return scanClip(q.db.QueryRow(ctx, createClip,
		clip.ID, clip.UserID, clip.URL, string(clip.Platform), clip.Views, string(clip.Status),
	))
}

const getClipForUpdate = `SELECT ` + clipColumns + ` FROM clips WHERE id = $1 FOR UPDATE`

func (q *Queries) GetClipForUpdate(ctx context.Context, id string) (domain.Clip, error) {
	c, err := scanClip(q.db.QueryRow(ctx, getClipForUpdate, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Clip{}, domain.ErrClipNotFound
	}
	return c, err
}

// The counter only moves forward.
const updateClipViews = `UPDATE clips SET views = GREATEST(views, $2), updated_at = now() WHERE id = $1`

func (q *Queries) UpdateClipViews(ctx context.Context, arg UpdateClipViewsParams) error {
	return q.execOne(ctx, domain.ErrClipNotFound, updateClipViews, arg.ID, arg.Views)
}
