package domain

import "time"

type ClipStatus string

const (
	ClipStatusActive  ClipStatus = "ACTIVE"
	ClipStatusRemoved ClipStatus = "REMOVED"
)

type Clip struct {
	ID        string
	UserID    string
	URL       string
	Platform  Platform
	Views     int64 // max reading ever observed
	Status    ClipStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
