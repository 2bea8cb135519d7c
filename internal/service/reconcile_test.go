package service

import (
	"context"
	"testing"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exhaustedCampaign(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "100", "90", "1", domain.CampaignStatusActive, domain.PlatformTikTok)
	seedUser(s, "u1")
	seedSubmission(s, "s1", "c1", "u1", tiktokURL, domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	recordViews(t, s, "s1", 15000)
	return s
}

func TestApplyPayoutResult_BudgetExhaustion(t *testing.T) {
	ctx := context.Background()
	s := exhaustedCampaign(t)

	res, err := NewPayoutCalculator(s).CalculateCampaignPayouts(ctx, "c1")
	require.NoError(t, err)

	out, err := NewReconciler(s).ApplyPayoutResult(ctx, res)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	assert.Equal(t, 1, out.Applied)
	assert.Equal(t, int64(1), out.PaidSubmissions)

	c, _ := s.Campaign("c1")
	assert.Equal(t, domain.CampaignStatusCompleted, c.Status)
	assert.Equal(t, "105.00", c.Spent.StringFixed(2))

	sub, _ := s.Submission("s1")
	assert.Equal(t, domain.SubmissionStatusPaid, sub.Status)
	require.NotNil(t, sub.FinalEarnings)
	assert.Equal(t, "15.00", sub.FinalEarnings.StringFixed(2))
	assert.Equal(t, "15.00", sub.Payout.StringFixed(2))

	u, _ := s.User("u1")
	assert.Equal(t, "15.00", u.TotalEarnings.StringFixed(2))
}

func TestApplyPayoutResult_CompletedIsNoop(t *testing.T) {
	ctx := context.Background()
	s := exhaustedCampaign(t)

	res, err := NewPayoutCalculator(s).CalculateCampaignPayouts(ctx, "c1")
	require.NoError(t, err)
	_, err = NewReconciler(s).ApplyPayoutResult(ctx, res)
	require.NoError(t, err)

	out, err := NewReconciler(s).ApplyPayoutResult(ctx, res)
	require.NoError(t, err)
	assert.True(t, out.Skipped)

	c, _ := s.Campaign("c1")
	assert.Equal(t, "105.00", c.Spent.StringFixed(2))
	u, _ := s.User("u1")
	assert.Equal(t, "15.00", u.TotalEarnings.StringFixed(2))
}

func TestApplyPayoutResult_StaleResultRejected(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedCampaign(t, s, "c1", "1000", "0", "2", domain.CampaignStatusActive, domain.PlatformTikTok)
	seedUser(s, "u1")
	seedSubmission(s, "s1", "c1", "u1", tiktokURL, domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	recordViews(t, s, "s1", 15000)

	res, err := NewPayoutCalculator(s).CalculateCampaignPayouts(ctx, "c1")
	require.NoError(t, err)
	_, err = NewReconciler(s).ApplyPayoutResult(ctx, res)
	require.NoError(t, err)

	_, err = NewReconciler(s).ApplyPayoutResult(ctx, res)
	assert.ErrorIs(t, err, domain.ErrReconciliation)
	assert.ErrorIs(t, err, domain.ErrStalePayout)

	c, _ := s.Campaign("c1")
	assert.Equal(t, "30.00", c.Spent.StringFixed(2))
	u, _ := s.User("u1")
	assert.Equal(t, "30.00", u.TotalEarnings.StringFixed(2))

	// the next cycle picks up only the growth
	recordViews(t, s, "s1", 20000)
	res, err = NewPayoutCalculator(s).CalculateCampaignPayouts(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, res.Payouts, 1)
	assert.Equal(t, "10.00", res.Payouts[0].Amount.StringFixed(2))
}

func TestApplyPayoutResult_FailureRollsBackCampaign(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewStore()
	seedCampaign(t, mem, "c1", "1000", "0", "1", domain.CampaignStatusActive, domain.PlatformTikTok)
	seedUser(mem, "u1")
	seedUser(mem, "u2")
	seedSubmission(mem, "s1", "c1", "u1", tiktokURL, domain.PlatformTikTok, domain.SubmissionStatusApproved, day1)
	seedSubmission(mem, "s2", "c1", "u2", tiktokURL+"2", domain.PlatformTikTok, domain.SubmissionStatusApproved, day1.Add(1))
	recordViews(t, mem, "s1", 5000)
	recordViews(t, mem, "s2", 7000)

	fs := newFaultyStore(mem)
	fs.failEarnings["u2"] = true

	res, err := NewPayoutCalculator(fs).CalculateCampaignPayouts(ctx, "c1")
	require.NoError(t, err)
	_, err = NewReconciler(fs).ApplyPayoutResult(ctx, res)
	require.ErrorIs(t, err, domain.ErrReconciliation)

	c, _ := mem.Campaign("c1")
	assert.True(t, c.Spent.IsZero())
	u1, _ := mem.User("u1")
	assert.True(t, u1.TotalEarnings.IsZero())
	s1, _ := mem.Submission("s1")
	assert.Nil(t, s1.Payout)

	delete(fs.failEarnings, "u2")
	out, err := NewReconciler(fs).ApplyPayoutResult(ctx, res)
	require.NoError(t, err)
	assert.Equal(t, "12.00", out.Charged.StringFixed(2))
}
