package domain

import "time"

// ViewTracking is one absolute view reading per (user, clip, day, platform).
// The row for the current day is overwritten until the day rolls over.
type ViewTracking struct {
	ID        string
	UserID    string
	ClipID    string
	Date      time.Time
	Platform  Platform
	Views     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TrackingKey struct {
	UserID   string
	ClipID   string
	Date     time.Time
	Platform Platform
}

// TrackingDay truncates t to midnight UTC.
func TrackingDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
