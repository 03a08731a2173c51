package repository

import (
	"context"
	"errors"

	"github.com/membercircle/compliments/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserMetaRepository reads and writes per-user key/value metadata: the
// email opt-out preference and the sender's has-notified receiver set.
type UserMetaRepository struct {
	db *gorm.DB
}

func NewUserMetaRepository(database *gorm.DB) *UserMetaRepository {
	return &UserMetaRepository{db: database}
}

// Get returns the stored value, or "" when the key is absent.
func (r *UserMetaRepository) Get(ctx context.Context, userID uint64, key string) (string, error) {
	var meta db.UserMeta
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND meta_key = ?", userID, key).
		First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return meta.MetaValue, nil
}

// Set upserts the (user, key) row.
func (r *UserMetaRepository) Set(ctx context.Context, userID uint64, key, value string) error {
	meta := db.UserMeta{UserID: userID, MetaKey: key, MetaValue: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "meta_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"meta_value"}),
		}).
		Create(&meta).Error
}

// Delete removes the (user, key) row. This is the external clearing hook
// for the has-notified set; nothing inside this module expires it.
func (r *UserMetaRepository) Delete(ctx context.Context, userID uint64, key string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND meta_key = ?", userID, key).
		Delete(&db.UserMeta{}).Error
}
