package compliments

import (
	"context"
	"errors"
	"strings"

	"github.com/membercircle/compliments/internal/app"
	"github.com/membercircle/compliments/internal/config"
	"github.com/membercircle/compliments/internal/db"
	svcErr "github.com/membercircle/compliments/internal/errors"
	"github.com/membercircle/compliments/internal/events"
	"github.com/membercircle/compliments/internal/repository"
	"github.com/membercircle/compliments/internal/utils/pagination"
)

// maxMessageLen matches the varchar(1000) message column.
const maxMessageLen = 1000

// Service is the business logic on top of the compliment record store.
// Every successful state change is published to the event bus, which
// fans out to the activity recorder and notification dispatcher; this
// service never references those consumers directly.
type Service struct {
	appCtx *app.AppContext
	cfg    *config.Config
	repo   *repository.ComplimentRepository
	bus    *events.Bus
}

// Page is one rendered window of a user's received compliments.
type Page struct {
	Compliments []db.Compliment
	Total       int64
	Window      pagination.Window
}

func NewService(appCtx *app.AppContext, cfg *config.Config, bus *events.Bus) *Service {
	return &Service{
		appCtx: appCtx,
		cfg:    cfg,
		repo:   repository.NewComplimentRepository(appCtx.DB),
		bus:    bus,
	}
}

// Send validates and stores a compliment, then fans the creation out.
//
// Behavior:
//   - The message is sanitized at write time (tags stripped, length
//     bounded); render paths trust the stored value.
//   - A zero term/sender/receiver returns ErrMissingRequiredField with
//     nothing written and nothing published — callers treat that as a
//     silent no-op, not a loud failure.
//   - No transaction spans insert + fan-out; a crash between the two
//     leaves the row without its side effects.
func (s *Service) Send(ctx context.Context, senderID, receiverID, termID uint64, postID *uint64, message string) (uint64, error) {
	compliment := &db.Compliment{
		TermID:     termID,
		PostID:     postID,
		ReceiverID: receiverID,
		SenderID:   senderID,
		Message:    sanitizeMessage(message),
	}

	id, err := s.repo.Create(ctx, compliment)
	if err != nil {
		if errors.Is(err, svcErr.ErrMissingRequiredField) {
			s.appCtx.Logger.Debug("compliment rejected", "sender", senderID, "receiver", receiverID, "term", termID)
		}
		return 0, err
	}

	// received-count cache +1; a lapsed key is left for the next read
	// to repopulate from the DB
	_ = s.appCtx.RedisCache.AdjustReceivedCount(ctx, receiverID, 1)

	s.bus.PublishComplimentCreated(ctx, compliment)

	s.appCtx.Logger.Info("compliment sent", "id", id, "sender", senderID, "receiver", receiverID)
	return id, nil
}

// Remove deletes a single compliment. Only its sender or receiver may do
// so; anyone else gets ErrForbidden.
func (s *Service) Remove(ctx context.Context, complimentID, requesterID uint64) error {
	compliment, err := s.repo.GetByID(ctx, complimentID)
	if err != nil {
		return err
	}
	if requesterID != compliment.SenderID && requesterID != compliment.ReceiverID {
		return svcErr.ErrForbidden
	}

	affected, err := s.repo.Delete(ctx, complimentID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}

	_ = s.appCtx.RedisCache.AdjustReceivedCount(ctx, compliment.ReceiverID, -1)

	s.bus.PublishComplimentDeleted(ctx, complimentID)
	return nil
}

// PurgeUser removes every compliment the user sent or received and fans
// the purge out so activity entries and notifications follow. Called
// from the account-deletion path.
func (s *Service) PurgeUser(ctx context.Context, userID uint64) error {
	affected, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return err
	}

	// stale by definition now; drop rather than patch
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForReceivedCount(userID))

	s.bus.PublishUserComplimentsPurged(ctx, userID)

	s.appCtx.Logger.Info("compliments purged", "user_id", userID, "count", affected)
	return nil
}

// ListPage assembles one profile-tab page: the received total
// (cache-first), the normalized window and the row slice. complimentID
// narrows to a single-compliment view when > 0.
func (s *Service) ListPage(ctx context.Context, receiverID uint64, page int, complimentID uint64) (*Page, error) {
	window := pagination.NewWindow(page, s.cfg.Compliments.PageSize)

	total, err := s.receivedCount(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListForReceiver(ctx, receiverID, window.Offset, window.PageSize, complimentID)
	if err != nil {
		return nil, err
	}

	return &Page{Compliments: rows, Total: total, Window: window}, nil
}

// Counts returns sent/received totals. The received side is cache-first
// with DB fallback; sent is always read from the DB.
func (s *Service) Counts(ctx context.Context, userID uint64) (repository.Counts, error) {
	counts, err := s.repo.GetCounts(ctx, userID)
	if err != nil {
		return repository.Counts{}, err
	}
	return counts, nil
}

// receivedCount is the cache-first read used by pagination.
// Cache-first strategy:
//  1. Attempts to read from Redis (compliments:received:userID).
//  2. If cache miss or parse error, falls back to DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) receivedCount(ctx context.Context, userID uint64) (int64, error) {
	if count, ok, err := s.appCtx.RedisCache.GetReceivedCount(ctx, userID); err == nil && ok {
		return count, nil
	}

	counts, err := s.repo.GetCounts(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.UpdateReceivedCount(ctx, userID, counts.Received)
	return counts.Received, nil
}

// sanitizeMessage strips HTML tags and bounds the length. Storage holds
// the sanitized form; templates render it as-is.
func sanitizeMessage(message string) string {
	var b strings.Builder
	b.Grow(len(message))

	inTag := false
	for _, r := range message {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	cleaned := strings.TrimSpace(b.String())
	if len(cleaned) > maxMessageLen {
		// byte cut may split a multi-byte rune; drop the fragment
		cleaned = strings.ToValidUTF8(cleaned[:maxMessageLen], "")
	}
	return cleaned
}
