package repository

import (
	"context"

	"github.com/membercircle/compliments/internal/db"
	svcErr "github.com/membercircle/compliments/internal/errors"

	"gorm.io/gorm"
)

// Counts aggregates a user's sent and received compliment totals.
type Counts struct {
	Sent     int64
	Received int64
}

// ComplimentRepository provides data access methods for the Compliment model.
// It owns the compliments table; side effects live behind the event bus.
type ComplimentRepository struct {
	db *gorm.DB
}

// NewComplimentRepository creates a new repository bound to the given DB connection.
func NewComplimentRepository(database *gorm.DB) *ComplimentRepository {
	return &ComplimentRepository{db: database}
}

// Create inserts a compliment and returns its new id.
//
// Behavior:
//   - TermID, ReceiverID and SenderID must all be non-zero; a violation
//     returns ErrMissingRequiredField before any database write.
//   - CreatedAt is server-assigned on insert, never client-supplied.
//
// Example:
//
//	repo.Create(ctx, &db.Compliment{TermID: 1, SenderID: 1, ReceiverID: 2})
func (r *ComplimentRepository) Create(ctx context.Context, c *db.Compliment) (uint64, error) {
	if c.TermID == 0 || c.ReceiverID == 0 || c.SenderID == 0 {
		return 0, svcErr.ErrMissingRequiredField
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return 0, err
	}
	return c.ID, nil
}

// GetByID fetches a single compliment row.
func (r *ComplimentRepository) GetByID(ctx context.Context, id uint64) (*db.Compliment, error) {
	var c db.Compliment
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the row with the given id and returns the affected count.
// A missing id is a 0-row no-op, not an error.
func (r *ComplimentRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&db.Compliment{}, id)
	return res.RowsAffected, res.Error
}

// DeleteAllForUser removes every row where the user is sender OR receiver.
func (r *ComplimentRepository) DeleteAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("receiver_id = ? OR sender_id = ?", userID, userID).
		Delete(&db.Compliment{})
	return res.RowsAffected, res.Error
}

// ListForReceiver returns a page of compliments received by a user.
//
// Behavior:
//   - Newest first: created_at DESC with id DESC as a stable tiebreak for
//     rows created within the same second.
//   - complimentID > 0 narrows the page to that exact row (single-compliment
//     permalink view).
//   - offset/limit form the classic page window.
//
// Example:
//
//	repo.ListForReceiver(ctx, 42, 0, 5, 0) // first page for user 42
func (r *ComplimentRepository) ListForReceiver(
	ctx context.Context,
	receiverID uint64,
	offset, limit int,
	complimentID uint64,
) ([]db.Compliment, error) {
	var compliments []db.Compliment

	query := r.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit)

	if complimentID > 0 {
		query = query.Where("id = ?", complimentID)
	}

	if err := query.Find(&compliments).Error; err != nil {
		return nil, err
	}
	return compliments, nil
}

// GetCounts returns how many compliments the user has sent and received.
//
// Example:
//
//	repo.GetCounts(ctx, 42) // -> {Sent: 3, Received: 12}
func (r *ComplimentRepository) GetCounts(ctx context.Context, userID uint64) (Counts, error) {
	var counts Counts

	err := r.db.WithContext(ctx).
		Model(&db.Compliment{}).
		Where("sender_id = ?", userID).
		Count(&counts.Sent).Error
	if err != nil {
		return Counts{}, err
	}

	err = r.db.WithContext(ctx).
		Model(&db.Compliment{}).
		Where("receiver_id = ?", userID).
		Count(&counts.Received).Error
	if err != nil {
		return Counts{}, err
	}

	return counts, nil
}
