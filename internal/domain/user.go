package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserRole string

const (
	UserRoleClipper UserRole = "CLIPPER"
	UserRoleCreator UserRole = "CREATOR"
	UserRoleBrand   UserRole = "BRAND"
	UserRoleAdmin   UserRole = "ADMIN"
)

type User struct {
	ID            string
	TotalViews    int64
	TotalEarnings decimal.Decimal
	Role          UserRole
	Verified      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *User) AccountAge(now time.Time) time.Duration {
	return now.Sub(u.CreatedAt)
}
