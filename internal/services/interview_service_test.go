package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sergiovidalh/recluta/internal/database/testutil"
	"github.com/sergiovidalh/recluta/internal/models"
	apperrors "github.com/sergiovidalh/recluta/pkg/errors"
)

func slotAt(t *testing.T, base time.Time, offsetHours, durationMinutes int) models.InterviewSlot {
	t.Helper()
	start := base.Add(time.Duration(offsetHours) * time.Hour)
	return models.InterviewSlot{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}
}

func TestInterviewCreateScheduled(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	interview, events, err := svc.Create(testContext(), CreateInterviewInput{
		VacancyID:       f.Vacancy.ID,
		CandidateID:     f.Candidate.ID,
		Type:            models.InterviewTypeTechnical,
		Modality:        models.InterviewModalityOnline,
		Mode:            InterviewModeSchedule,
		StartAt:         start,
		DurationMinutes: 60,
		MeetingLink:     "https://meet.test/abc",
		Actor:           f.Recruiter.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.InterviewStateScheduled, interview.State)
	require.True(t, interview.Confirmed)
	require.Equal(t, start, interview.StartAt)
	require.Equal(t, start.Add(time.Hour), interview.EndAt)
	require.Empty(t, interview.ProposedSlots)

	require.Len(t, events, 1)
	require.Equal(t, models.NotificationTypeInterviewConfirmed, events[0].Type)
	require.Equal(t, []string{f.Org.ID}, events[0].Recipients.ClientOrgIDs)
	require.Equal(t, interview.ID, events[0].Metadata["interview_id"])
}

func TestInterviewCreateProposal(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	base := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	slots := []models.InterviewSlot{
		slotAt(t, base, 0, 45),
		slotAt(t, base, 3, 45),
		slotAt(t, base, 24, 45),
	}

	interview, events, err := svc.Create(testContext(), CreateInterviewInput{
		VacancyID:   f.Vacancy.ID,
		CandidateID: f.Candidate.ID,
		Type:        models.InterviewTypeClient,
		Modality:    models.InterviewModalityInPerson,
		Mode:        InterviewModePropose,
		Slots:       slots,
		Actor:       f.Recruiter.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.InterviewStateProposed, interview.State)
	require.False(t, interview.Confirmed)

	decoded, err := interview.Slots()
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	// Order is preserved.
	require.True(t, decoded[0].Equal(slots[0]))
	require.True(t, decoded[2].Equal(slots[2]))

	require.Len(t, events, 1)
	require.Equal(t, models.NotificationTypeInterviewProposal, events[0].Type)
	require.Equal(t, []string{f.Candidate.ID}, events[0].Recipients.CandidateIDs)
}

func TestInterviewCreateSlotValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	base := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)

	input := CreateInterviewInput{
		VacancyID:   f.Vacancy.ID,
		CandidateID: f.Candidate.ID,
		Type:        models.InterviewTypeInternal,
		Modality:    models.InterviewModalityOnline,
		Mode:        InterviewModePropose,
	}

	// No slots.
	_, _, err = svc.Create(testContext(), input)
	require.True(t, apperrors.IsValidation(err))

	// More than three slots.
	input.Slots = []models.InterviewSlot{
		slotAt(t, base, 0, 30), slotAt(t, base, 1, 30),
		slotAt(t, base, 2, 30), slotAt(t, base, 3, 30),
	}
	_, _, err = svc.Create(testContext(), input)
	require.True(t, apperrors.IsValidation(err))

	// Duplicate slots.
	input.Slots = []models.InterviewSlot{slotAt(t, base, 0, 30), slotAt(t, base, 0, 30)}
	_, _, err = svc.Create(testContext(), input)
	require.True(t, apperrors.IsValidation(err))

	// End not after start.
	input.Slots = []models.InterviewSlot{{Start: base, End: base}}
	_, _, err = svc.Create(testContext(), input)
	require.True(t, apperrors.IsValidation(err))
}

func TestInterviewCreateRejectsSecondActive(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	input := CreateInterviewInput{
		VacancyID:       f.Vacancy.ID,
		CandidateID:     f.Candidate.ID,
		Type:            models.InterviewTypeTechnical,
		Modality:        models.InterviewModalityOnline,
		Mode:            InterviewModeSchedule,
		StartAt:         start,
		DurationMinutes: 30,
	}

	first, _, err := svc.Create(testContext(), input)
	require.NoError(t, err)

	_, _, err = svc.Create(testContext(), input)
	require.ErrorIs(t, err, apperrors.ErrActiveInterviewExists)

	// A terminal interview frees the pair for a new one.
	_, _, err = svc.Cancel(testContext(), first.ID, "candidate unavailable", f.Recruiter.ID)
	require.NoError(t, err)

	_, _, err = svc.Create(testContext(), input)
	require.NoError(t, err)
}

func TestInterviewConfirmSlot(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	base := time.Date(2026, 9, 11, 10, 0, 0, 0, time.UTC)
	slots := []models.InterviewSlot{slotAt(t, base, 0, 60), slotAt(t, base, 5, 60)}

	interview, _, err := svc.Create(testContext(), CreateInterviewInput{
		VacancyID:   f.Vacancy.ID,
		CandidateID: f.Candidate.ID,
		Type:        models.InterviewTypeClient,
		Modality:    models.InterviewModalityOnline,
		Mode:        InterviewModePropose,
		Slots:       slots,
	})
	require.NoError(t, err)

	// A slot that is not element-equal to a proposed one is rejected.
	_, _, err = svc.ConfirmSlot(testContext(), interview.ID, slotAt(t, base, 1, 60), f.CandidateUser.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidSlot)

	confirmed, events, err := svc.ConfirmSlot(testContext(), interview.ID, slots[1], f.CandidateUser.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStateScheduled, confirmed.State)
	require.True(t, confirmed.Confirmed)
	require.Equal(t, slots[1].Start, confirmed.StartAt)
	require.Equal(t, slots[1].End, confirmed.EndAt)
	require.Empty(t, confirmed.ProposedSlots)

	require.Len(t, events, 1)
	require.Equal(t, models.NotificationTypeInterviewConfirmed, events[0].Type)
	require.Equal(t, []string{f.Recruiter.ID}, events[0].Recipients.UserIDs)
	require.Equal(t, []string{f.Org.ID}, events[0].Recipients.ClientOrgIDs)

	// Confirming twice is an invalid transition, not a terminal rejection.
	_, _, err = svc.ConfirmSlot(testContext(), interview.ID, slots[1], f.CandidateUser.ID)
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestInterviewRescheduleAndComplete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	interview, _, err := svc.Create(testContext(), CreateInterviewInput{
		VacancyID:       f.Vacancy.ID,
		CandidateID:     f.Candidate.ID,
		Type:            models.InterviewTypeFollowUp,
		Modality:        models.InterviewModalityOnline,
		Mode:            InterviewModeSchedule,
		StartAt:         start,
		DurationMinutes: 45,
	})
	require.NoError(t, err)

	newStart := start.Add(48 * time.Hour)
	moved, events, err := svc.Reschedule(testContext(), interview.ID, newStart, newStart.Add(45*time.Minute), f.Recruiter.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStateRescheduled, moved.State)
	require.Equal(t, newStart, moved.StartAt)
	require.Len(t, events, 1)
	require.Equal(t, models.NotificationTypeInterviewRescheduled, events[0].Type)
	require.Equal(t, []string{f.Candidate.ID}, events[0].Recipients.CandidateIDs)

	// Rescheduled interviews can still be rescheduled again or completed.
	done, err := svc.MarkCompleted(testContext(), interview.ID, "went well", f.Recruiter.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStateCompleted, done.State)
	require.Contains(t, done.Notes, "went well")

	// Completed is terminal.
	_, err = svc.MarkCompleted(testContext(), interview.ID, "again", f.Recruiter.ID)
	require.ErrorIs(t, err, apperrors.ErrTerminalState)
	_, _, err = svc.Reschedule(testContext(), interview.ID, newStart, newStart.Add(time.Hour), f.Recruiter.ID)
	require.ErrorIs(t, err, apperrors.ErrTerminalState)
}

func TestInterviewCancel(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	base := time.Date(2026, 9, 20, 11, 0, 0, 0, time.UTC)
	interview, _, err := svc.Create(testContext(), CreateInterviewInput{
		VacancyID:   f.Vacancy.ID,
		CandidateID: f.Candidate.ID,
		Type:        models.InterviewTypeTechnical,
		Modality:    models.InterviewModalityInPerson,
		Mode:        InterviewModePropose,
		Slots:       []models.InterviewSlot{slotAt(t, base, 0, 60)},
		Notes:       "bring portfolio",
	})
	require.NoError(t, err)

	cancelled, events, err := svc.Cancel(testContext(), interview.ID, "role closed", f.Recruiter.ID)
	require.NoError(t, err)
	require.Equal(t, models.InterviewStateCancelled, cancelled.State)
	require.Contains(t, cancelled.Notes, "bring portfolio")
	require.Contains(t, cancelled.Notes, "Cancelled: role closed")
	require.Empty(t, cancelled.ProposedSlots)

	require.Len(t, events, 1)
	require.Equal(t, models.NotificationTypeInterviewCancelled, events[0].Type)
	require.Equal(t, "warning", events[0].Severity)
	require.Equal(t, []string{f.Recruiter.ID}, events[0].Recipients.UserIDs)
	require.Equal(t, []string{f.Candidate.ID}, events[0].Recipients.CandidateIDs)
	require.Equal(t, []string{f.Org.ID}, events[0].Recipients.ClientOrgIDs)

	// Cancellation is terminal and not idempotent: the second reason would be
	// silently lost otherwise.
	_, _, err = svc.Cancel(testContext(), interview.ID, "second reason", f.Recruiter.ID)
	require.ErrorIs(t, err, apperrors.ErrTerminalState)
}

func TestInterviewDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	start := time.Date(2026, 9, 22, 16, 0, 0, 0, time.UTC)
	interview, _, err := svc.Create(testContext(), CreateInterviewInput{
		VacancyID:       f.Vacancy.ID,
		CandidateID:     f.Candidate.ID,
		Type:            models.InterviewTypeInternal,
		Modality:        models.InterviewModalityOnline,
		Mode:            InterviewModeSchedule,
		StartAt:         start,
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(testContext(), interview.ID))
	require.ErrorIs(t, svc.Delete(testContext(), interview.ID), apperrors.ErrNotFound)

	_, err = svc.Get(testContext(), interview.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInterviewListForPair(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	f := seedFixture(t, db)

	svc, err := NewInterviewService(db)
	require.NoError(t, err)

	start := time.Date(2026, 9, 25, 10, 0, 0, 0, time.UTC)
	first, _, err := svc.Create(testContext(), CreateInterviewInput{
		VacancyID:       f.Vacancy.ID,
		CandidateID:     f.Candidate.ID,
		Type:            models.InterviewTypeTechnical,
		Modality:        models.InterviewModalityOnline,
		Mode:            InterviewModeSchedule,
		StartAt:         start,
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	_, _, err = svc.Cancel(testContext(), first.ID, "rebooked", f.Recruiter.ID)
	require.NoError(t, err)

	_, _, err = svc.Create(testContext(), CreateInterviewInput{
		VacancyID:       f.Vacancy.ID,
		CandidateID:     f.Candidate.ID,
		Type:            models.InterviewTypeTechnical,
		Modality:        models.InterviewModalityOnline,
		Mode:            InterviewModeSchedule,
		StartAt:         start.Add(24 * time.Hour),
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	items, err := svc.ListForPair(testContext(), f.Vacancy.ID, f.Candidate.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = svc.ListForVacancy(testContext(), f.Vacancy.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
}
