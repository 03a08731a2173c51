package events

import (
	"context"
	"log/slog"

	"github.com/membercircle/compliments/internal/db"
)

// Subscriber consumes compliment lifecycle events. Implementations must
// tolerate being called after a partially failed fan-out: an error from
// one subscriber never stops delivery to the next, and nothing is rolled
// back.
type Subscriber interface {
	Name() string
	OnComplimentCreated(ctx context.Context, c *db.Compliment) error
	OnComplimentDeleted(ctx context.Context, complimentID uint64) error
	OnUserComplimentsPurged(ctx context.Context, userID uint64) error
}

// Bus delivers events to an explicit, ordered subscriber list,
// synchronously and in registration order. The record store publishes
// here and never references the consumers directly.
type Bus struct {
	subscribers []Subscriber
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe appends a subscriber. Dispatch order equals registration order.
func (b *Bus) Subscribe(s Subscriber) {
	b.subscribers = append(b.subscribers, s)
}

func (b *Bus) PublishComplimentCreated(ctx context.Context, c *db.Compliment) {
	for _, s := range b.subscribers {
		if err := s.OnComplimentCreated(ctx, c); err != nil {
			b.logger.Error("subscriber failed", "event", "compliment.created", "subscriber", s.Name(), "err", err)
		}
	}
}

func (b *Bus) PublishComplimentDeleted(ctx context.Context, complimentID uint64) {
	for _, s := range b.subscribers {
		if err := s.OnComplimentDeleted(ctx, complimentID); err != nil {
			b.logger.Error("subscriber failed", "event", "compliment.deleted", "subscriber", s.Name(), "err", err)
		}
	}
}

func (b *Bus) PublishUserComplimentsPurged(ctx context.Context, userID uint64) {
	for _, s := range b.subscribers {
		if err := s.OnUserComplimentsPurged(ctx, userID); err != nil {
			b.logger.Error("subscriber failed", "event", "compliment.all-deleted", "subscriber", s.Name(), "err", err)
		}
	}
}
