package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository"
	"github.com/set-night/clipwatch/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	day1 = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	day2 = day1.AddDate(0, 0, 1)

	errInjected = errors.New("injected failure")
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := domain.ParseMoney(s)
	require.NoError(t, err)
	return d
}

func seedCampaign(t *testing.T, s *memory.Store, id, budget, spent, rate string, status domain.CampaignStatus, platforms ...domain.Platform) {
	t.Helper()
	s.PutCampaign(domain.Campaign{
		ID:              id,
		Title:           "campaign " + id,
		Budget:          money(t, budget),
		Spent:           money(t, spent),
		PayoutRate:      money(t, rate),
		Status:          status,
		TargetPlatforms: platforms,
		CreatedAt:       day1,
	})
}

func seedSubmission(s *memory.Store, id, campaignID, userID, url string, platform domain.Platform, status domain.SubmissionStatus, createdAt time.Time) {
	s.PutSubmission(domain.ClipSubmission{
		ID:         id,
		CampaignID: campaignID,
		UserID:     userID,
		ClipURL:    url,
		Platform:   platform,
		Status:     status,
		CreatedAt:  createdAt,
	})
}

func seedUser(s *memory.Store, id string) {
	s.PutUser(domain.User{ID: id, TotalEarnings: decimal.Zero, Role: domain.UserRoleClipper, CreatedAt: day1.AddDate(0, -1, 0)})
}

// faultyStore fails selected writes inside transactions.
type faultyStore struct {
	*memory.Store
	failEarnings map[string]bool
	failViews    map[string]bool
	failList     bool
}

func newFaultyStore(s *memory.Store) *faultyStore {
	return &faultyStore{Store: s, failEarnings: map[string]bool{}, failViews: map[string]bool{}}
}

func (f *faultyStore) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	return f.Store.InTx(ctx, func(q repository.Querier) error {
		return fn(faultyQuerier{Querier: q, f: f})
	})
}

func (f *faultyStore) ListSweepCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	if f.failList {
		return nil, errInjected
	}
	return f.Store.ListSweepCampaigns(ctx)
}

type faultyQuerier struct {
	repository.Querier
	f *faultyStore
}

func (q faultyQuerier) IncrementUserEarnings(ctx context.Context, arg repository.IncrementUserEarningsParams) error {
	if q.f.failEarnings[arg.ID] {
		return errInjected
	}
	return q.Querier.IncrementUserEarnings(ctx, arg)
}

func (q faultyQuerier) IncrementUserViews(ctx context.Context, arg repository.IncrementUserViewsParams) error {
	if q.f.failViews[arg.ID] {
		return errInjected
	}
	return q.Querier.IncrementUserViews(ctx, arg)
}
