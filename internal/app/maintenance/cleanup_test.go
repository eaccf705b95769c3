package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/database/testutil"
	"github.com/sergiovidalh/recluta/internal/models"
	"github.com/sergiovidalh/recluta/internal/services"
)

func seedNotification(t *testing.T, db *gorm.DB, userID string, read bool, age time.Duration) models.Notification {
	t.Helper()

	notification := models.Notification{
		UserID: userID,
		Type:   models.NotificationTypeStageChange,
		Title:  "Application moved",
		IsRead: read,
	}
	require.NoError(t, db.Create(&notification).Error)
	require.NoError(t, db.Model(&notification).
		Update("created_at", time.Now().UTC().Add(-age)).Error)
	return notification
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	user := models.User{Username: "u", Email: "u@x.test", Password: "irrelevant", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	oldRead := seedNotification(t, db, user.ID, true, 40*24*time.Hour)
	recentRead := seedNotification(t, db, user.ID, true, time.Hour)
	oldUnread := seedNotification(t, db, user.ID, false, 40*24*time.Hour)

	notifier, err := services.NewNotificationService(db, nil)
	require.NoError(t, err)

	cleaner := NewCleaner(notifier, WithRetentionDays(30))
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)

	ids := map[string]bool{}
	for _, n := range remaining {
		ids[n.ID] = true
	}
	require.False(t, ids[oldRead.ID])
	require.True(t, ids[recentRead.ID])
	require.True(t, ids[oldUnread.ID])
}

func TestCleanerWithoutNotifierIsNoOp(t *testing.T) {
	cleaner := NewCleaner(nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
	cleaner.Stop()
}

func TestCleanerStartRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	notifier, err := services.NewNotificationService(db, nil)
	require.NoError(t, err)

	cleaner := NewCleaner(notifier, WithSchedule("not-a-spec"))
	require.Error(t, cleaner.Start())
}
