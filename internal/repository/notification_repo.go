package repository

import (
	"context"

	"github.com/membercircle/compliments/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository persists in-app notification items.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

// Upsert creates the (item, user, action) notification or flips an
// existing one back to unread. The unique key guarantees that repeated
// compliments from the same sender never duplicate the row.
//
// Example:
//
//	repo.Upsert(ctx, senderID, receiverID, db.ActionNewCompliment)
func (r *NotificationRepository) Upsert(ctx context.Context, itemID, userID uint64, action string) error {
	n := db.Notification{
		ItemID: itemID,
		UserID: userID,
		Action: action,
		Unread: true,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}, {Name: "user_id"}, {Name: "action"}},
			DoUpdates: clause.AssignmentColumns([]string{"unread"}),
		}).
		Create(&n).Error
}

// MarkRead acknowledges the (user, item, action) notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, itemID uint64, action string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("user_id = ? AND item_id = ? AND action = ?", userID, itemID, action).
		Update("unread", false)
	return res.RowsAffected, res.Error
}

// DeleteAllForUser removes every notification of the given action type
// addressed to the user.
func (r *NotificationRepository) DeleteAllForUser(ctx context.Context, userID uint64, action string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND action = ?", userID, action).
		Delete(&db.Notification{})
	return res.RowsAffected, res.Error
}

// ListForUser returns the user's notifications, unread first, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Notification, error) {
	var notifications []db.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unread DESC, created_at DESC").
		Find(&notifications).Error
	return notifications, err
}
