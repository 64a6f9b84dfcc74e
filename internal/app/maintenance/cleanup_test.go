package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talentlink/talentlink/internal/cache"
	testutil "github.com/talentlink/talentlink/internal/database/testutil"
	"github.com/talentlink/talentlink/internal/models"
	"github.com/talentlink/talentlink/internal/services"
)

func TestCleanupCacheEntries(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	now := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)

	expired := models.CacheEntry{
		Key:       "unread_count:user-expired",
		Value:     []byte("3"),
		ExpiresAt: now.Add(-time.Hour),
	}
	active := models.CacheEntry{
		Key:       "unread_count:user-active",
		Value:     []byte("1"),
		ExpiresAt: now.Add(time.Hour),
	}
	// Zero expiry marks an entry that never expires.
	static := models.CacheEntry{
		Key:   "static",
		Value: []byte("v"),
	}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&static).Error)

	removed, err := CleanupCacheEntries(context.Background(), db, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	var remaining int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&remaining).Error)
	require.Equal(t, int64(2), remaining)

	var keys []string
	require.NoError(t, db.Model(&models.CacheEntry{}).Order("key").Pluck("key", &keys).Error)
	require.Equal(t, []string{"static", "unread_count:user-active"}, keys)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := cache.NewDatabaseStore(db)
	notifications, err := services.NewNotificationService(db, store)
	require.NoError(t, err)

	user := models.User{Name: "alice", Email: "alice@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	stale := models.Notification{
		BaseModel: models.BaseModel{CreatedAt: time.Now().AddDate(0, 0, -45)},
		UserID:    user.ID,
		Title:     "Stale",
		Message:   "body",
		Type:      models.NotificationTypeInfo,
	}
	fresh := models.Notification{
		UserID:  user.ID,
		Title:   "Fresh",
		Message: "body",
		Type:    models.NotificationTypeInfo,
	}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)

	cleaner := NewCleaner(db, notifications, WithRetentionDays(30))
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	require.Equal(t, int64(1), remaining)
}

func TestCleanerStartAndStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := cache.NewDatabaseStore(db)
	notifications, err := services.NewNotificationService(db, store)
	require.NoError(t, err)

	cleaner := NewCleaner(db, notifications,
		WithNotificationSchedule("@daily"),
		WithCacheEntrySchedule("@hourly"),
	)
	require.NoError(t, cleaner.Start())

	stopCtx := cleaner.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop in time")
	}
}
