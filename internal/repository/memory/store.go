// Package memory is an in-process implementation of repository.Querier used
// by tests and dry runs. Transactions are serialized and rolled back by
// restoring a snapshot.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository"
	"github.com/shopspring/decimal"
)

type state struct {
	campaigns   map[string]domain.Campaign
	submissions map[string]domain.ClipSubmission
	clips       map[string]domain.Clip
	tracking    map[string]domain.ViewTracking
	users       map[string]domain.User
}

func newState() state {
	return state{
		campaigns:   make(map[string]domain.Campaign),
		submissions: make(map[string]domain.ClipSubmission),
		clips:       make(map[string]domain.Clip),
		tracking:    make(map[string]domain.ViewTracking),
		users:       make(map[string]domain.User),
	}
}

func (s state) clone() state {
	out := newState()
	for k, v := range s.campaigns {
		v.TargetPlatforms = append([]domain.Platform(nil), v.TargetPlatforms...)
		out.campaigns[k] = v
	}
	for k, v := range s.submissions {
		out.submissions[k] = v
	}
	for k, v := range s.clips {
		out.clips[k] = v
	}
	for k, v := range s.tracking {
		out.tracking[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

var _ repository.Querier = (*Store)(nil)

func (s *Store) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Seeding and inspection

func (s *Store) PutCampaign(c domain.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.campaigns[c.ID] = c
}

func (s *Store) PutSubmission(sub domain.ClipSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now()
	}
	s.st.submissions[sub.ID] = sub
}

func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = u
}

func (s *Store) PutClip(c domain.Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.clips[c.ID] = c
}

func (s *Store) PutTracking(t domain.ViewTracking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Date = domain.TrackingDay(t.Date)
	s.st.tracking[t.ID] = t
}

func (s *Store) Campaign(id string) (domain.Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.campaigns[id]
	return c, ok
}

func (s *Store) Submission(id string) (domain.ClipSubmission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.st.submissions[id]
	return sub, ok
}

func (s *Store) User(id string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	return u, ok
}

func (s *Store) Clip(id string) (domain.Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.clips[id]
	return c, ok
}

// TrackingRows returns every tracking row for a clip ordered by date.
func (s *Store) TrackingRows(clipID string) []domain.ViewTracking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []domain.ViewTracking
	for _, t := range s.st.tracking {
		if t.ClipID == clipID {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// Campaigns

func (s *Store) ListSweepCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []domain.Campaign
	for _, c := range s.st.campaigns {
		if c.IsSweepable() {
			items = append(items, c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *Store) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.campaigns[id]
	if !ok {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return c, nil
}

func (s *Store) GetCampaignForUpdate(ctx context.Context, id string) (domain.Campaign, error) {
	return s.GetCampaign(ctx, id)
}

func (s *Store) AddCampaignSpent(ctx context.Context, arg repository.AddCampaignSpentParams) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.campaigns[arg.ID]
	if !ok {
		return decimal.Zero, domain.ErrCampaignNotFound
	}
	c.Spent = c.Spent.Add(arg.Amount)
	c.UpdatedAt = s.now()
	s.st.campaigns[arg.ID] = c
	return c.Spent, nil
}

func (s *Store) UpdateCampaignStatus(ctx context.Context, arg repository.UpdateCampaignStatusParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.campaigns[arg.ID]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	c.Status = arg.Status
	c.UpdatedAt = s.now()
	s.st.campaigns[arg.ID] = c
	return nil
}

// Submissions

func sortSubmissions(items []domain.ClipSubmission) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}

func (s *Store) ListCampaignSubmissions(ctx context.Context, arg repository.ListCampaignSubmissionsParams) ([]domain.ClipSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []domain.ClipSubmission
	for _, sub := range s.st.submissions {
		if sub.CampaignID != arg.CampaignID {
			continue
		}
		for _, st := range arg.Statuses {
			if sub.Status == st {
				items = append(items, sub)
				break
			}
		}
	}
	sortSubmissions(items)
	return items, nil
}

func (s *Store) ListUserSubmissionsSince(ctx context.Context, arg repository.ListUserSubmissionsSinceParams) ([]domain.ClipSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []domain.ClipSubmission
	for _, sub := range s.st.submissions {
		if sub.UserID == arg.UserID && !sub.CreatedAt.Before(arg.Since) {
			items = append(items, sub)
		}
	}
	sortSubmissions(items)
	return items, nil
}

func (s *Store) GetSubmissionForUpdate(ctx context.Context, id string) (domain.ClipSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.st.submissions[id]
	if !ok {
		return domain.ClipSubmission{}, domain.ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *Store) updateSubmission(id string, fn func(*domain.ClipSubmission)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.st.submissions[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	fn(&sub)
	sub.UpdatedAt = s.now()
	s.st.submissions[id] = sub
	return nil
}

func (s *Store) SetSubmissionClip(ctx context.Context, arg repository.SetSubmissionClipParams) error {
	return s.updateSubmission(arg.ID, func(sub *domain.ClipSubmission) {
		clipID := arg.ClipID
		sub.ClipID = &clipID
	})
}

func (s *Store) SetSubmissionInitialViews(ctx context.Context, arg repository.SetSubmissionInitialViewsParams) error {
	return s.updateSubmission(arg.ID, func(sub *domain.ClipSubmission) {
		if sub.InitialViews == nil {
			views := arg.Views
			sub.InitialViews = &views
		}
	})
}

func (s *Store) SetSubmissionPayout(ctx context.Context, arg repository.SetSubmissionPayoutParams) error {
	return s.updateSubmission(arg.ID, func(sub *domain.ClipSubmission) {
		payout := arg.Payout
		sub.Payout = &payout
	})
}

func (s *Store) MarkCampaignSubmissionsPaid(ctx context.Context, campaignID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sub := range s.st.submissions {
		if sub.CampaignID != campaignID || sub.Status != domain.SubmissionStatusApproved {
			continue
		}
		final := sub.PaidSoFar()
		sub.FinalEarnings = &final
		sub.Status = domain.SubmissionStatusPaid
		sub.UpdatedAt = s.now()
		s.st.submissions[id] = sub
		n++
	}
	return n, nil
}

// Clips

func (s *Store) FindUserClip(ctx context.Context, arg repository.FindUserClipParams) (domain.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *domain.Clip
	for _, c := range s.st.clips {
		if c.UserID == arg.UserID && c.URL == arg.URL && c.Platform == arg.Platform {
			if found == nil || c.CreatedAt.Before(found.CreatedAt) {
				c := c
				found = &c
			}
		}
	}
	if found == nil {
		return domain.Clip{}, domain.ErrClipNotFound
	}
	return *found, nil
}

func (s *Store) CreateClip(ctx context.Context, clip domain.Clip) (domain.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clip.Status == "" {
		clip.Status = domain.ClipStatusActive
	}
	now := s.now()
	clip.CreatedAt, clip.UpdatedAt = now, now
	s.st.clips[clip.ID] = clip
	return clip, nil
}

func (s *Store) GetClipForUpdate(ctx context.Context, id string) (domain.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.clips[id]
	if !ok {
		return domain.Clip{}, domain.ErrClipNotFound
	}
	return c, nil
}

func (s *Store) UpdateClipViews(ctx context.Context, arg repository.UpdateClipViewsParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.clips[arg.ID]
	if !ok {
		return domain.ErrClipNotFound
	}
	if arg.Views > c.Views {
		c.Views = arg.Views
	}
	c.UpdatedAt = s.now()
	s.st.clips[arg.ID] = c
	return nil
}

// View tracking

func (s *Store) GetViewTrackingForUpdate(ctx context.Context, key domain.TrackingKey) (domain.ViewTracking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := domain.TrackingDay(key.Date)
	for _, t := range s.st.tracking {
		if t.UserID == key.UserID && t.ClipID == key.ClipID && t.Platform == key.Platform && t.Date.Equal(day) {
			return t, nil
		}
	}
	return domain.ViewTracking{}, domain.ErrTrackingNotFound
}

func (s *Store) GetLatestViewTrackingForClip(ctx context.Context, clipID string) (domain.ViewTracking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *domain.ViewTracking
	for _, t := range s.st.tracking {
		if t.ClipID != clipID {
			continue
		}
		if found == nil || t.Date.After(found.Date) ||
			(t.Date.Equal(found.Date) && t.UpdatedAt.After(found.UpdatedAt)) {
			t := t
			found = &t
		}
	}
	if found == nil {
		return domain.ViewTracking{}, domain.ErrTrackingNotFound
	}
	return *found, nil
}

func (s *Store) CreateViewTracking(ctx context.Context, row domain.ViewTracking) (domain.ViewTracking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row.Date = domain.TrackingDay(row.Date)
	now := s.now()
	row.CreatedAt, row.UpdatedAt = now, now
	s.st.tracking[row.ID] = row
	return row, nil
}

func (s *Store) UpdateViewTrackingViews(ctx context.Context, arg repository.UpdateViewTrackingViewsParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.st.tracking[arg.ID]
	if !ok {
		return domain.ErrTrackingNotFound
	}
	t.Views = arg.Views
	t.UpdatedAt = s.now()
	s.st.tracking[arg.ID] = t
	return nil
}

// Users

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) IncrementUserViews(ctx context.Context, arg repository.IncrementUserViewsParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[arg.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TotalViews += arg.Delta
	u.UpdatedAt = s.now()
	s.st.users[arg.ID] = u
	return nil
}

func (s *Store) IncrementUserEarnings(ctx context.Context, arg repository.IncrementUserEarningsParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[arg.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TotalEarnings = u.TotalEarnings.Add(arg.Amount)
	u.UpdatedAt = s.now()
	s.st.users[arg.ID] = u
	return nil
}
