package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sergiovidalh/recluta/internal/database/testutil"
	"github.com/sergiovidalh/recluta/internal/models"
	"github.com/sergiovidalh/recluta/internal/realtime"
	apperrors "github.com/sergiovidalh/recluta/pkg/errors"
)

func TestHiringMoveDispatchesNotifications(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewHiringService(db, realtime.NewHub())
	require.NoError(t, err)

	_, err = svc.MoveApplication(testContext(), MoveApplicationInput{
		ApplicationID: f.Application.ID,
		TargetStageID: "stage-screening",
		Actor:         f.Recruiter.ID,
	})
	require.NoError(t, err)

	// Candidate's linked user and the client org member both receive the
	// stage change.
	for _, userID := range []string{f.CandidateUser.ID, f.ClientUser.ID} {
		items, err := svc.Notifications().ListForUser(testContext(), ListNotificationsInput{UserID: userID})
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, models.NotificationTypeStageChange, items[0].Type)
	}
}

func TestHiringMoveIntoInterviewStageNotifiesActor(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewHiringService(db, realtime.NewHub())
	require.NoError(t, err)

	_, err = svc.MoveApplication(testContext(), MoveApplicationInput{
		ApplicationID: f.Application.ID,
		TargetStageID: "stage-interview",
		Actor:         f.Recruiter.ID,
	})
	require.NoError(t, err)

	items, err := svc.Notifications().ListForUser(testContext(), ListNotificationsInput{UserID: f.Recruiter.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationTypeInterviewSuggested, items[0].Type)
}

func TestHiringFailedMoveDispatchesNothing(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewHiringService(db, realtime.NewHub())
	require.NoError(t, err)

	_, err = svc.MoveApplication(testContext(), MoveApplicationInput{
		ApplicationID: f.Application.ID,
		TargetStageID: "stage-applied",
		Actor:         f.Recruiter.ID,
	})
	require.ErrorIs(t, err, apperrors.ErrNoOpMove)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestHiringInterviewLifecycleNotifications(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewHiringService(db, realtime.NewHub())
	require.NoError(t, err)

	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	slots := []models.InterviewSlot{
		{Start: base, End: base.Add(time.Hour)},
		{Start: base.Add(4 * time.Hour), End: base.Add(5 * time.Hour)},
	}

	interview, err := svc.CreateInterview(testContext(), CreateInterviewInput{
		VacancyID:   f.Vacancy.ID,
		CandidateID: f.Candidate.ID,
		Type:        models.InterviewTypeClient,
		Modality:    models.InterviewModalityOnline,
		Mode:        InterviewModePropose,
		Slots:       slots,
		Actor:       f.Recruiter.ID,
	})
	require.NoError(t, err)

	// The proposal reaches the candidate's linked profile only.
	items, err := svc.Notifications().ListForUser(testContext(), ListNotificationsInput{UserID: f.CandidateUser.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.NotificationTypeInterviewProposal, items[0].Type)

	_, err = svc.ConfirmSlot(testContext(), interview.ID, slots[0], f.CandidateUser.ID)
	require.NoError(t, err)

	// Confirmation reaches the recruiter and the client org member.
	for _, userID := range []string{f.Recruiter.ID, f.ClientUser.ID} {
		items, err := svc.Notifications().ListForUser(testContext(), ListNotificationsInput{UserID: userID})
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, models.NotificationTypeInterviewConfirmed, items[0].Type)
	}

	_, err = svc.CancelInterview(testContext(), interview.ID, "client pulled out", f.Recruiter.ID)
	require.NoError(t, err)

	// Cancellation reaches every party.
	for _, userID := range []string{f.Recruiter.ID, f.CandidateUser.ID, f.ClientUser.ID} {
		items, err := svc.Notifications().ListForUser(testContext(), ListNotificationsInput{UserID: userID})
		require.NoError(t, err)
		require.Equal(t, models.NotificationTypeInterviewCancelled, items[0].Type)
	}
}

func TestHiringCompleteEmitsNoNotification(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewHiringService(db, realtime.NewHub())
	require.NoError(t, err)

	interview, err := svc.CreateInterview(testContext(), CreateInterviewInput{
		VacancyID:       f.Vacancy.ID,
		CandidateID:     f.Candidate.ID,
		Type:            models.InterviewTypeTechnical,
		Modality:        models.InterviewModalityOnline,
		Mode:            InterviewModeSchedule,
		StartAt:         time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Actor:           f.Recruiter.ID,
	})
	require.NoError(t, err)

	var before int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&before).Error)

	_, err = svc.CompleteInterview(testContext(), interview.ID, "strong hire", f.Recruiter.ID)
	require.NoError(t, err)

	var after int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&after).Error)
	require.Equal(t, before, after)
}
