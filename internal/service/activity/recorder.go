package activity

import (
	"context"

	"github.com/membercircle/compliments/internal/app"
	"github.com/membercircle/compliments/internal/db"
	"github.com/membercircle/compliments/internal/repository"
)

// Recorder subscribes to compliment events and mirrors them into the
// member activity feed. When the activity subsystem is disabled every
// handler short-circuits to a no-op instead of failing.
type Recorder struct {
	appCtx  *app.AppContext
	repo    *repository.ActivityRepository
	enabled bool
}

func NewRecorder(appCtx *app.AppContext, enabled bool) *Recorder {
	return &Recorder{
		appCtx:  appCtx,
		repo:    repository.NewActivityRepository(appCtx.DB),
		enabled: enabled,
	}
}

func (r *Recorder) Name() string { return "activity" }

// OnComplimentCreated writes two feed entries: one attributed to the
// sender and one to the receiver, both tagged with the compliment id.
func (r *Recorder) OnComplimentCreated(ctx context.Context, c *db.Compliment) error {
	if !r.enabled {
		return nil
	}

	sent := db.ActivityEntry{
		UserID:          c.SenderID,
		Type:            db.ActivityComplimentSent,
		ItemID:          c.ID,
		SecondaryItemID: c.ReceiverID,
	}
	if err := r.repo.Record(ctx, &sent); err != nil {
		return err
	}

	received := db.ActivityEntry{
		UserID:          c.ReceiverID,
		Type:            db.ActivityComplimentReceived,
		ItemID:          c.ID,
		SecondaryItemID: c.SenderID,
	}
	return r.repo.Record(ctx, &received)
}

// OnComplimentDeleted removes every entry tagged with the compliment id.
func (r *Recorder) OnComplimentDeleted(ctx context.Context, complimentID uint64) error {
	if !r.enabled {
		return nil
	}
	removed, err := r.repo.DeleteByItem(ctx, complimentID)
	if err != nil {
		return err
	}
	r.appCtx.Logger.Debug("activity entries removed", "compliment_id", complimentID, "count", removed)
	return nil
}

// OnUserComplimentsPurged removes entries where the user is the owner or
// the secondary actor.
func (r *Recorder) OnUserComplimentsPurged(ctx context.Context, userID uint64) error {
	if !r.enabled {
		return nil
	}
	removed, err := r.repo.DeleteForUser(ctx, userID)
	if err != nil {
		return err
	}
	r.appCtx.Logger.Debug("activity entries purged", "user_id", userID, "count", removed)
	return nil
}

// Feed returns the user's own entries for the feed endpoint.
func (r *Recorder) Feed(ctx context.Context, userID uint64, limit int) ([]db.ActivityEntry, error) {
	if !r.enabled {
		return nil, nil
	}
	return r.repo.ListForUser(ctx, userID, limit)
}
