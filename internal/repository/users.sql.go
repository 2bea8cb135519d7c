package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/clipwatch/internal/domain"
)

const getUser = `SELECT id, total_views, total_earnings, role, verified, created_at, updated_at
FROM users WHERE id = $1`

func (q *Queries) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	var role string
	err := q.db.QueryRow(ctx, getUser, id).Scan(
		&u.ID, &u.TotalViews, &u.TotalEarnings, &role, &u.Verified, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.UserRole(role)
	return u, nil
}

const incrementUserViews = `UPDATE users SET total_views = total_views + $2, updated_at = now() WHERE id = $1`

func (q *Queries) IncrementUserViews(ctx context.Context, arg IncrementUserViewsParams) error {
	return q.execOne(ctx, domain.ErrUserNotFound, incrementUserViews, arg.ID, arg.Delta)
}

const incrementUserEarnings = `UPDATE users SET total_earnings = total_earnings + $2, updated_at = now() WHERE id = $1`

func (q *Queries) IncrementUserEarnings(ctx context.Context, arg IncrementUserEarningsParams) error {
	return q.execOne(ctx, domain.ErrUserNotFound, incrementUserEarnings, arg.ID, arg.Amount)
}
