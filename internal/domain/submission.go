package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
	SubmissionStatusRejected SubmissionStatus = "REJECTED"
	SubmissionStatusPaid     SubmissionStatus = "PAID"
)

type ClipSubmission struct {
	ID            string
	CampaignID    string
	UserID        string
	ClipID        *string
	ClipURL       string
	Platform      Platform
	Status        SubmissionStatus
	Payout        *decimal.Decimal
	InitialViews  *int64
	FinalEarnings *decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PaidSoFar is the payout already reflected in the campaign's spent amount.
func (s *ClipSubmission) PaidSoFar() decimal.Decimal {
	if s.Payout == nil {
		return decimal.Zero
	}
	return *s.Payout
}
