package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/clipwatch/internal/domain"
	"github.com/set-night/clipwatch/internal/repository"
)

type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

type RecordResult struct {
	SubmissionID string
	ClipID       string
	TrackingID   string
	Delta        int64 // views added to aggregates, 0 when the reading did not grow
	NewRow       bool
	NewClip      bool
}

// RecordViews stores an absolute view reading for the submission's clip on
// the UTC day of asOf. Aggregates only ever move forward.
func (r *Recorder) RecordViews(ctx context.Context, submissionID string, currentViews int64, asOf time.Time) (RecordResult, error) {
	res := RecordResult{SubmissionID: submissionID}
	if currentViews < 0 {
		return res, fmt.Errorf("%w: submission %s: negative views %d", domain.ErrRecording, submissionID, currentViews)
	}

	err := r.store.InTx(ctx, func(q repository.Querier) error {
		res = RecordResult{SubmissionID: submissionID}

		sub, err := q.GetSubmissionForUpdate(ctx, submissionID)
		if err != nil {
			return fmt.Errorf("lock submission: %w", err)
		}

		clip, created, err := r.ensureClip(ctx, q, sub, currentViews)
		if err != nil {
			return err
		}
		res.ClipID, res.NewClip = clip.ID, created

		key := domain.TrackingKey{
			UserID:   sub.UserID,
			ClipID:   clip.ID,
			Date:     domain.TrackingDay(asOf),
			Platform: sub.Platform,
		}

		// The clip's max-ever reading is the baseline, so a reading that
		// dips and recovers, or carries over to a new day, is counted once.
		var baseline int64
		if !created {
			baseline = clip.Views
		}

		row, err := q.GetViewTrackingForUpdate(ctx, key)
		switch {
		case err == nil:
			baseline = max(baseline, row.Views)
			if err := q.UpdateViewTrackingViews(ctx, repository.UpdateViewTrackingViewsParams{ID: row.ID, Views: currentViews}); err != nil {
				return fmt.Errorf("update tracking: %w", err)
			}
			res.TrackingID = row.ID
		case errors.Is(err, domain.ErrTrackingNotFound):
			row, err := q.CreateViewTracking(ctx, domain.ViewTracking{
				ID:       uuid.NewString(),
				UserID:   key.UserID,
				ClipID:   key.ClipID,
				Date:     key.Date,
				Platform: key.Platform,
				Views:    currentViews,
			})
			if err != nil {
				return fmt.Errorf("create tracking: %w", err)
			}
			res.TrackingID, res.NewRow = row.ID, true
		default:
			return fmt.Errorf("lock tracking: %w", err)
		}

		delta := currentViews - baseline
		if delta > 0 {
			res.Delta = delta
			if err := q.IncrementUserViews(ctx, repository.IncrementUserViewsParams{ID: sub.UserID, Delta: delta}); err != nil {
				return fmt.Errorf("increment user views: %w", err)
			}
			if currentViews > clip.Views {
				if err := q.UpdateClipViews(ctx, repository.UpdateClipViewsParams{ID: clip.ID, Views: currentViews}); err != nil {
					return fmt.Errorf("update clip views: %w", err)
				}
			}
		}

		if sub.InitialViews == nil {
			if err := q.SetSubmissionInitialViews(ctx, repository.SetSubmissionInitialViewsParams{ID: sub.ID, Views: currentViews}); err != nil {
				return fmt.Errorf("set initial views: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return RecordResult{SubmissionID: submissionID}, fmt.Errorf("%w: submission %s: %w", domain.ErrRecording, submissionID, err)
	}
	return res, nil
}

// ensureClip returns the submission's clip, reusing the user's clip for the
// same URL or creating one on first sight.
func (r *Recorder) ensureClip(ctx context.Context, q repository.Querier, sub domain.ClipSubmission, currentViews int64) (domain.Clip, bool, error) {
	if sub.ClipID != nil {
		clip, err := q.GetClipForUpdate(ctx, *sub.ClipID)
		if err != nil {
			return domain.Clip{}, false, fmt.Errorf("lock clip: %w", err)
		}
		return clip, false, nil
	}

	created := false
	clip, err := q.FindUserClip(ctx, repository.FindUserClipParams{UserID: sub.UserID, URL: sub.ClipURL, Platform: sub.Platform})
	switch {
	case err == nil:
		clip, err = q.GetClipForUpdate(ctx, clip.ID)
		if err != nil {
			return domain.Clip{}, false, fmt.Errorf("lock clip: %w", err)
		}
	case errors.Is(err, domain.ErrClipNotFound):
		clip, err = q.CreateClip(ctx, domain.Clip{
			ID:       uuid.NewString(),
			UserID:   sub.UserID,
			URL:      sub.ClipURL,
			Platform: sub.Platform,
			Views:    currentViews,
			Status:   domain.ClipStatusActive,
		})
		if err != nil {
			return domain.Clip{}, false, fmt.Errorf("create clip: %w", err)
		}
		created = true
	default:
		return domain.Clip{}, false, fmt.Errorf("find clip: %w", err)
	}

	if err := q.SetSubmissionClip(ctx, repository.SetSubmissionClipParams{ID: sub.ID, ClipID: clip.ID}); err != nil {
		return domain.Clip{}, false, fmt.Errorf("attach clip: %w", err)
	}
	return clip, created, nil
}
