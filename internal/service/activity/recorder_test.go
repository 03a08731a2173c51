package activity_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/membercircle/compliments/internal/app"
	"github.com/membercircle/compliments/internal/db"
	"github.com/membercircle/compliments/internal/service/activity"
)

func setupRecorder(t *testing.T, enabled bool) (*activity.Recorder, *gorm.DB) {
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

	require.NoError(t, dbase.AutoMigrate(&db.ActivityEntry{}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, nil, logger)
	return activity.NewRecorder(appCtx, enabled), dbase
}

func TestRecordsSentAndReceivedEntries(t *testing.T) {
	ctx := context.Background()
	rec, dbase := setupRecorder(t, true)

	c := &db.Compliment{ID: 5, TermID: 1, SenderID: 1, ReceiverID: 2}
	require.NoError(t, rec.OnComplimentCreated(ctx, c))

	var entries []db.ActivityEntry
	require.NoError(t, dbase.Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)

	assert.Equal(t, db.ActivityComplimentSent, entries[0].Type)
	assert.Equal(t, uint64(1), entries[0].UserID)
	assert.Equal(t, uint64(5), entries[0].ItemID)
	assert.Equal(t, uint64(2), entries[0].SecondaryItemID)

	assert.Equal(t, db.ActivityComplimentReceived, entries[1].Type)
	assert.Equal(t, uint64(2), entries[1].UserID)
	assert.Equal(t, uint64(5), entries[1].ItemID)
	assert.Equal(t, uint64(1), entries[1].SecondaryItemID)
}

func TestDeleteRemovesEntriesByItem(t *testing.T) {
	ctx := context.Background()
	rec, dbase := setupRecorder(t, true)

	require.NoError(t, rec.OnComplimentCreated(ctx, &db.Compliment{ID: 5, TermID: 1, SenderID: 1, ReceiverID: 2}))
	require.NoError(t, rec.OnComplimentCreated(ctx, &db.Compliment{ID: 6, TermID: 1, SenderID: 1, ReceiverID: 2}))

	require.NoError(t, rec.OnComplimentDeleted(ctx, 5))

	var remaining []db.ActivityEntry
	require.NoError(t, dbase.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	for _, e := range remaining {
		assert.Equal(t, uint64(6), e.ItemID)
	}
}

func TestPurgeRemovesOwnerAndSecondaryEntries(t *testing.T) {
	ctx := context.Background()
	rec, dbase := setupRecorder(t, true)

	// user 1 involved in both directions, plus an unrelated 3↔4 pair
	require.NoError(t, rec.OnComplimentCreated(ctx, &db.Compliment{ID: 5, TermID: 1, SenderID: 1, ReceiverID: 2}))
	require.NoError(t, rec.OnComplimentCreated(ctx, &db.Compliment{ID: 6, TermID: 1, SenderID: 2, ReceiverID: 1}))
	require.NoError(t, rec.OnComplimentCreated(ctx, &db.Compliment{ID: 7, TermID: 1, SenderID: 3, ReceiverID: 4}))

	require.NoError(t, rec.OnUserComplimentsPurged(ctx, 1))

	var remaining []db.ActivityEntry
	require.NoError(t, dbase.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	for _, e := range remaining {
		assert.Equal(t, uint64(7), e.ItemID)
	}
}

func TestDisabledRecorderIsNoOp(t *testing.T) {
	ctx := context.Background()
	rec, dbase := setupRecorder(t, false)

	require.NoError(t, rec.OnComplimentCreated(ctx, &db.Compliment{ID: 5, TermID: 1, SenderID: 1, ReceiverID: 2}))

	var count int64
	dbase.Model(&db.ActivityEntry{}).Count(&count)
	assert.Zero(t, count)
}
