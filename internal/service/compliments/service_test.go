package compliments_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/membercircle/compliments/internal/app"
	"github.com/membercircle/compliments/internal/cache"
	"github.com/membercircle/compliments/internal/config"
	"github.com/membercircle/compliments/internal/db"
	svcErr "github.com/membercircle/compliments/internal/errors"
	"github.com/membercircle/compliments/internal/events"
	"github.com/membercircle/compliments/internal/mailer"
	"github.com/membercircle/compliments/internal/service/activity"
	"github.com/membercircle/compliments/internal/service/compliments"
	"github.com/membercircle/compliments/internal/service/notify"
)

//
// Test helpers
//

// recordMailer captures outbound messages instead of delivering them.
type recordMailer struct {
	sent []mailer.Message
}

func (m *recordMailer) Send(msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type harness struct {
	svc   *compliments.Service
	db    *gorm.DB
	mail  *recordMailer
	redis *miniredis.Miniredis
}

// setupService spins up an in-memory SQLite DB, applies migrations,
// seeds three users, starts a miniredis, and wires the full fan-out:
// bus → activity recorder → notification dispatcher → recording mailer.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) *harness {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(
		&db.User{}, &db.ComplimentTerm{}, &db.Compliment{},
		&db.ActivityEntry{}, &db.Notification{}, &db.UserMeta{},
	))

	users := []db.User{
		{ID: 1, Username: "alice", Email: "alice@test.com", PasswordHash: "x", DisplayName: "Alice"},
		{ID: 2, Username: "bob", Email: "bob@test.com", PasswordHash: "x", DisplayName: "Bob"},
		{ID: 3, Username: "carol", Email: "carol@test.com", PasswordHash: "x", DisplayName: "Carol"},
	}
	require.NoError(t, dbase.Create(&users).Error)
	require.NoError(t, dbase.Create(&db.ComplimentTerm{ID: 1, Name: "Very Helpful"}).Error)

	// Fake Redis
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.App.BaseURL = "http://test.local"
	cfg.Compliments.PageSize = 5
	cfg.Compliments.ActivityEnabled = true
	cfg.Compliments.NotificationsEnabled = true
	cfg.Compliments.EmailEnabled = true

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(dbase, redisCache, logger)

	mail := &recordMailer{}
	bus := events.NewBus(logger)
	bus.Subscribe(activity.NewRecorder(appCtx, cfg.Compliments.ActivityEnabled))
	bus.Subscribe(notify.NewDispatcher(appCtx, cfg, mail))

	return &harness{
		svc:   compliments.NewService(appCtx, cfg, bus),
		db:    dbase,
		mail:  mail,
		redis: mr,
	}
}

//
// Tests
//

func TestSendRejectsMissingTerm(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	id, err := h.svc.Send(ctx, 1, 2, 0, nil, "hello")
	assert.ErrorIs(t, err, svcErr.ErrMissingRequiredField)
	assert.Zero(t, id)

	// nothing written, nothing fanned out
	var compliments, activities, notifications int64
	h.db.Model(&db.Compliment{}).Count(&compliments)
	h.db.Model(&db.ActivityEntry{}).Count(&activities)
	h.db.Model(&db.Notification{}).Count(&notifications)
	assert.Zero(t, compliments)
	assert.Zero(t, activities)
	assert.Zero(t, notifications)
	assert.Empty(t, h.mail.sent)
}

func TestSendFansOutToAllConsumers(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	id, err := h.svc.Send(ctx, 1, 2, 1, nil, "great post!")
	require.NoError(t, err)
	require.NotZero(t, id)

	// two activity entries: sent by Alice, received by Bob
	var entries []db.ActivityEntry
	require.NoError(t, h.db.Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, db.ActivityComplimentSent, entries[0].Type)
	assert.Equal(t, uint64(1), entries[0].UserID)
	assert.Equal(t, uint64(2), entries[0].SecondaryItemID)
	assert.Equal(t, db.ActivityComplimentReceived, entries[1].Type)
	assert.Equal(t, uint64(2), entries[1].UserID)
	assert.Equal(t, uint64(1), entries[1].SecondaryItemID)
	assert.Equal(t, id, entries[0].ItemID)

	// one persisted notification keyed (sender, receiver, new_compliment)
	var notifications []db.Notification
	require.NoError(t, h.db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, uint64(1), notifications[0].ItemID)
	assert.Equal(t, uint64(2), notifications[0].UserID)
	assert.True(t, notifications[0].Unread)

	// one email, to the receiver, naming the sender
	require.Len(t, h.mail.sent, 1)
	assert.Equal(t, "bob@test.com", h.mail.sent[0].To)
	assert.Contains(t, h.mail.sent[0].Subject, "Alice has sent you a compliment")
	assert.Contains(t, h.mail.sent[0].Body, "bpc_read=true&bpc_sender_id=1")
}

func TestSendUpdatesCounts(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	before, err := h.svc.Counts(ctx, 1)
	require.NoError(t, err)

	_, err = h.svc.Send(ctx, 1, 2, 1, nil, "")
	require.NoError(t, err)

	after, err := h.svc.Counts(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, before.Sent+1, after.Sent)

	received, err := h.svc.Counts(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), received.Received)
}

func TestSendStripsTagsAtWriteTime(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	id, err := h.svc.Send(ctx, 1, 2, 1, nil, `<script>alert("x")</script>well <b>done</b>`)
	require.NoError(t, err)

	var stored db.Compliment
	require.NoError(t, h.db.First(&stored, id).Error)
	assert.Equal(t, `alert("x")well done`, stored.Message)
}

func TestRemoveRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	id, err := h.svc.Send(ctx, 1, 2, 1, nil, "")
	require.NoError(t, err)

	// Carol is neither sender nor receiver
	err = h.svc.Remove(ctx, id, 3)
	assert.ErrorIs(t, err, svcErr.ErrForbidden)

	// receiver may delete; activity entries go with it
	require.NoError(t, h.svc.Remove(ctx, id, 2))
	var compliments, activities int64
	h.db.Model(&db.Compliment{}).Count(&compliments)
	h.db.Model(&db.ActivityEntry{}).Count(&activities)
	assert.Zero(t, compliments)
	assert.Zero(t, activities)
}

func TestPurgeUserLeavesOthersUntouched(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	_, err := h.svc.Send(ctx, 1, 2, 1, nil, "")
	require.NoError(t, err)
	_, err = h.svc.Send(ctx, 3, 1, 1, nil, "")
	require.NoError(t, err)
	_, err = h.svc.Send(ctx, 2, 3, 1, nil, "")
	require.NoError(t, err)

	require.NoError(t, h.svc.PurgeUser(ctx, 1))

	counts, err := h.svc.Counts(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, counts.Sent)
	assert.Zero(t, counts.Received)

	// the 2→3 compliment and its side effects survive
	remaining, err := h.svc.Counts(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining.Received)

	var notifications []db.Notification
	require.NoError(t, h.db.Where("user_id = ?", 1).Find(&notifications).Error)
	assert.Empty(t, notifications)
}

func TestListPageWindows(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	for i := 0; i < 12; i++ {
		_, err := h.svc.Send(ctx, 1, 2, 1, nil, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	page2, err := h.svc.ListPage(ctx, 2, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(12), page2.Total)
	assert.Equal(t, 5, page2.Window.Offset)
	assert.Len(t, page2.Compliments, 5)
	assert.Equal(t, "6 to 10 of 12", page2.Window.Summary(page2.Total))

	page3, err := h.svc.ListPage(ctx, 2, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, page3.Window.Offset)
	assert.Len(t, page3.Compliments, 2)
	assert.Equal(t, "11 to 12 of 12", page3.Window.Summary(page3.Total))
}

func TestListPageCacheFallsBackToDB(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	_, err := h.svc.Send(ctx, 1, 2, 1, nil, "")
	require.NoError(t, err)

	// first read falls back to the DB and warms the cache, second hits it
	page, err := h.svc.ListPage(ctx, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = h.svc.ListPage(ctx, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestSendAdjustsLiveCachedCount(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	_, err := h.svc.Send(ctx, 1, 2, 1, nil, "")
	require.NoError(t, err)

	// warm the cache, then send again while the key is live
	page, err := h.svc.ListPage(ctx, 2, 1, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)

	_, err = h.svc.Send(ctx, 1, 2, 1, nil, "")
	require.NoError(t, err)

	// drop the rows so the next total can only come from the cache
	require.NoError(t, h.db.Where("receiver_id = ?", 2).Delete(&db.Compliment{}).Error)

	page, err = h.svc.ListPage(ctx, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestListPageTotalSurvivesCacheExpiry(t *testing.T) {
	ctx := context.Background()
	h := setupService(t)

	for i := 0; i < 12; i++ {
		_, err := h.svc.Send(ctx, 1, 2, 1, nil, "")
		require.NoError(t, err)
	}

	// warm the cache so the count key carries its 1h TTL
	page, err := h.svc.ListPage(ctx, 2, 1, 0)
	require.NoError(t, err)
	require.Equal(t, int64(12), page.Total)

	// let the key lapse, then send one more; the count must not be
	// rebuilt from the lone increment
	h.redis.FastForward(2 * time.Hour)
	_, err = h.svc.Send(ctx, 1, 2, 1, nil, "")
	require.NoError(t, err)

	page, err = h.svc.ListPage(ctx, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(13), page.Total)
	assert.Equal(t, "1 to 5 of 13", page.Window.Summary(page.Total))
}
