package repository

import (
	"context"

	"github.com/membercircle/compliments/internal/db"

	"gorm.io/gorm"
)

// LookupRepository resolves display data for the listing view: taxonomy
// terms (icon + label) and user identities.
type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(database *gorm.DB) *LookupRepository {
	return &LookupRepository{db: database}
}

// TermsByIDs returns the terms with the given ids, keyed by id.
func (r *LookupRepository) TermsByIDs(ctx context.Context, ids []uint64) (map[uint64]db.ComplimentTerm, error) {
	terms := make(map[uint64]db.ComplimentTerm, len(ids))
	if len(ids) == 0 {
		return terms, nil
	}
	var rows []db.ComplimentTerm
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, t := range rows {
		terms[t.ID] = t
	}
	return terms, nil
}

// UsersByIDs returns the users with the given ids, keyed by id.
func (r *LookupRepository) UsersByIDs(ctx context.Context, ids []uint64) (map[uint64]db.User, error) {
	users := make(map[uint64]db.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	var rows []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

// UserByID returns a single user.
func (r *LookupRepository) UserByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
