package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/membercircle/compliments/internal/app"
	"github.com/membercircle/compliments/internal/config"
	"github.com/membercircle/compliments/internal/db"
	"github.com/membercircle/compliments/internal/mailer"
	"github.com/membercircle/compliments/internal/repository"
)

// Dispatcher subscribes to compliment events and maintains the persisted
// in-app notifications plus the one-time email per (sender, receiver)
// pair. Disabled ⇒ every handler is a no-op.
type Dispatcher struct {
	appCtx  *app.AppContext
	cfg     *config.Config
	repo    *repository.NotificationRepository
	meta    *repository.UserMetaRepository
	lookup  *repository.LookupRepository
	mailer  mailer.Mailer
	enabled bool
}

func NewDispatcher(appCtx *app.AppContext, cfg *config.Config, m mailer.Mailer) *Dispatcher {
	return &Dispatcher{
		appCtx:  appCtx,
		cfg:     cfg,
		repo:    repository.NewNotificationRepository(appCtx.DB),
		meta:    repository.NewUserMetaRepository(appCtx.DB),
		lookup:  repository.NewLookupRepository(appCtx.DB),
		mailer:  m,
		enabled: cfg.Compliments.NotificationsEnabled,
	}
}

func (d *Dispatcher) Name() string { return "notify" }

// OnComplimentCreated persists the (sender, receiver, new_compliment)
// notification item and then attempts the deduplicated email. A mailer
// failure is logged, never propagated: the notification row already
// exists and partial fan-out is accepted.
func (d *Dispatcher) OnComplimentCreated(ctx context.Context, c *db.Compliment) error {
	if !d.enabled {
		return nil
	}

	if err := d.repo.Upsert(ctx, c.SenderID, c.ReceiverID, db.ActionNewCompliment); err != nil {
		return err
	}

	if err := d.sendEmailOnce(ctx, c.SenderID, c.ReceiverID); err != nil {
		d.appCtx.Logger.Error("compliment email failed", "sender", c.SenderID, "receiver", c.ReceiverID, "err", err)
	}
	return nil
}

// OnComplimentDeleted has nothing to clean: notification rows are keyed
// by user pair, not compliment id, and stay until acknowledged.
func (d *Dispatcher) OnComplimentDeleted(ctx context.Context, complimentID uint64) error {
	return nil
}

// OnUserComplimentsPurged removes all new_compliment notifications
// addressed to the user.
func (d *Dispatcher) OnUserComplimentsPurged(ctx context.Context, userID uint64) error {
	if !d.enabled {
		return nil
	}
	_, err := d.repo.DeleteAllForUser(ctx, userID, db.ActionNewCompliment)
	return err
}

// MarkRead acknowledges the (receiver, sender) notification; the handler
// redirects to the canonical listing URL afterwards.
func (d *Dispatcher) MarkRead(ctx context.Context, receiverID, senderID uint64) error {
	if !d.enabled {
		return nil
	}
	_, err := d.repo.MarkRead(ctx, receiverID, senderID, db.ActionNewCompliment)
	return err
}

// ListForUser returns the user's persisted notifications.
func (d *Dispatcher) ListForUser(ctx context.Context, userID uint64) ([]db.Notification, error) {
	if !d.enabled {
		return nil, nil
	}
	return d.repo.ListForUser(ctx, userID)
}

// sendEmailOnce sends at most one email per (sender, receiver) pair, ever.
//
// Suppression, in order:
//  1. email sending disabled by config;
//  2. receiver opted out (notification_on_compliments = "no");
//  3. receiver already in the sender's has-notified set.
//
// On send the receiver id is appended to the set and persisted. The set
// has no expiry here; clearing it is an external concern (meta deletion).
func (d *Dispatcher) sendEmailOnce(ctx context.Context, senderID, receiverID uint64) error {
	if !d.cfg.Compliments.EmailEnabled {
		return nil
	}

	pref, err := d.meta.Get(ctx, receiverID, db.MetaNotificationPref)
	if err != nil {
		return err
	}
	if pref == "no" {
		return nil
	}

	notified, err := d.hasNotifiedSet(ctx, senderID)
	if err != nil {
		return err
	}
	for _, id := range notified {
		if id == receiverID {
			return nil
		}
	}

	notified = append(notified, receiverID)
	encoded, err := json.Marshal(notified)
	if err != nil {
		return err
	}
	if err := d.meta.Set(ctx, senderID, db.MetaHasNotified, string(encoded)); err != nil {
		return err
	}

	sender, err := d.lookup.UserByID(ctx, senderID)
	if err != nil {
		return err
	}
	receiver, err := d.lookup.UserByID(ctx, receiverID)
	if err != nil {
		return err
	}

	complimentLink := fmt.Sprintf("%s/members/%d/compliments/?bpc_read=true&bpc_sender_id=%d",
		d.cfg.App.BaseURL, receiverID, senderID)
	settingsLink := fmt.Sprintf("%s/members/%d/settings/notifications/", d.cfg.App.BaseURL, receiverID)

	msg := mailer.Message{
		To:      receiver.Email,
		Subject: fmt.Sprintf("[%s] %s has sent you a compliment", d.cfg.App.SiteName, sender.DisplayName),
		Body: fmt.Sprintf(
			"%s has sent you a compliment.\n\nTo view %s's compliment: %s\n\n---------------------\nTo disable these notifications please log in and go to:\n%s\n",
			sender.DisplayName, sender.DisplayName, complimentLink, settingsLink,
		),
	}
	return d.mailer.Send(msg)
}

func (d *Dispatcher) hasNotifiedSet(ctx context.Context, senderID uint64) ([]uint64, error) {
	raw, err := d.meta.Get(ctx, senderID, db.MetaHasNotified)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var ids []uint64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// unreadable set: start fresh rather than blocking every send
		d.appCtx.Logger.Warn("resetting unreadable has-notified set", "sender", senderID, "err", err)
		return nil, nil
	}
	return ids, nil
}
