package repository

import (
	"context"

	"github.com/membercircle/compliments/internal/db"

	"gorm.io/gorm"
)

// ActivityRepository stores the member-feed entries produced by the
// compliment fan-out.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(database *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: database}
}

// Record inserts one feed entry. RecordedAt is server-assigned.
func (r *ActivityRepository) Record(ctx context.Context, e *db.ActivityEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// DeleteByItem removes every entry tagged with the given compliment id.
func (r *ActivityRepository) DeleteByItem(ctx context.Context, itemID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Delete(&db.ActivityEntry{})
	return res.RowsAffected, res.Error
}

// DeleteForUser removes entries where the user is the owner or the
// secondary actor.
func (r *ActivityRepository) DeleteForUser(ctx context.Context, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? OR secondary_item_id = ?", userID, userID).
		Delete(&db.ActivityEntry{})
	return res.RowsAffected, res.Error
}

// ListForUser returns a user's own feed entries, newest first.
func (r *ActivityRepository) ListForUser(ctx context.Context, userID uint64, limit int) ([]db.ActivityEntry, error) {
	var entries []db.ActivityEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
