package repository

import (
	"context"
	"time"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/shopspring/decimal"
)

// Querier is the persistence surface used by the tracking and payout
// pipeline. Lookups return the matching domain.ErrXNotFound on a miss.
type Querier interface {
	// Campaigns
	ListSweepCampaigns(ctx context.Context) ([]domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	GetCampaignForUpdate(ctx context.Context, id string) (domain.Campaign, error)
	AddCampaignSpent(ctx context.Context, arg AddCampaignSpentParams) (decimal.Decimal, error)
	UpdateCampaignStatus(ctx context.Context, arg UpdateCampaignStatusParams) error

	// Submissions
	ListCampaignSubmissions(ctx context.Context, arg ListCampaignSubmissionsParams) ([]domain.ClipSubmission, error)
	ListUserSubmissionsSince(ctx context.Context, arg ListUserSubmissionsSinceParams) ([]domain.ClipSubmission, error)
	GetSubmissionForUpdate(ctx context.Context, id string) (domain.ClipSubmission, error)
	SetSubmissionClip(ctx context.Context, arg SetSubmissionClipParams) error
	SetSubmissionInitialViews(ctx context.Context, arg SetSubmissionInitialViewsParams) error
	SetSubmissionPayout(ctx context.Context, arg SetSubmissionPayoutParams) error
	MarkCampaignSubmissionsPaid(ctx context.Context, campaignID string) (int64, error)

	// Clips
	FindUserClip(ctx context.Context, arg FindUserClipParams) (domain.Clip, error)
	CreateClip(ctx context.Context, clip domain.Clip) (domain.Clip, error)
	GetClipForUpdate(ctx context.Context, id string) (domain.Clip, error)
	UpdateClipViews(ctx context.Context, arg UpdateClipViewsParams) error

	// View tracking
	GetViewTrackingForUpdate(ctx context.Context, key domain.TrackingKey) (domain.ViewTracking, error)
	GetLatestViewTrackingForClip(ctx context.Context, clipID string) (domain.ViewTracking, error)
	CreateViewTracking(ctx context.Context, row domain.ViewTracking) (domain.ViewTracking, error)
	UpdateViewTrackingViews(ctx context.Context, arg UpdateViewTrackingViewsParams) error

	// Users
	GetUser(ctx context.Context, id string) (domain.User, error)
	IncrementUserViews(ctx context.Context, arg IncrementUserViewsParams) error
	IncrementUserEarnings(ctx context.Context, arg IncrementUserEarningsParams) error
}

type AddCampaignSpentParams struct {
	ID     string
	Amount decimal.Decimal
}

type UpdateCampaignStatusParams struct {
	ID     string
	Status domain.CampaignStatus
}

type ListCampaignSubmissionsParams struct {
	CampaignID string
	Statuses   []domain.SubmissionStatus
}

type ListUserSubmissionsSinceParams struct {
	UserID string
	Since  time.Time
}

type SetSubmissionClipParams struct {
	ID     string
	ClipID string
}

type SetSubmissionInitialViewsParams struct {
	ID    string
	Views int64
}

type SetSubmissionPayoutParams struct {
	ID     string
	Payout decimal.Decimal
}

type FindUserClipParams struct {
	UserID   string
	URL      string
	Platform domain.Platform
}

type UpdateClipViewsParams struct {
	ID    string
	Views int64
}

type UpdateViewTrackingViewsParams struct {
	ID    string
	Views int64
}

type IncrementUserViewsParams struct {
	ID    string
	Delta int64
}

type IncrementUserEarningsParams struct {
	ID     string
	Amount decimal.Decimal
}
