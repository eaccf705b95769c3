package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/models"
	apperrors "github.com/sergiovidalh/recluta/pkg/errors"
	"github.com/sergiovidalh/recluta/pkg/metrics"
)

// Interview creation modes.
const (
	InterviewModeSchedule = "schedule"
	InterviewModePropose  = "propose"
)

const maxProposedSlots = 3

// CreateInterviewInput describes a new interview. Mode schedule requires a
// concrete start and duration; mode propose requires 1-3 distinct slots.
type CreateInterviewInput struct {
	VacancyID   string
	CandidateID string
	StageID     string
	Type        string
	Modality    string
	Mode        string

	StartAt         time.Time
	DurationMinutes int
	Slots           []models.InterviewSlot

	Location    string
	MeetingLink string
	Notes       string
	Actor       string
}

// InterviewService validates and applies interview lifecycle transitions and
// records the domain events each transition triggers.
type InterviewService struct {
	db *gorm.DB
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(db *gorm.DB) (*InterviewService, error) {
	if db == nil {
		return nil, errors.New("interview service: db is required")
	}
	return &InterviewService{db: db}, nil
}

// Create registers a new interview in scheduled or proposed state.
func (s *InterviewService) Create(ctx context.Context, input CreateInterviewInput) (*models.Interview, []Event, error) {
	ctx = ensureContext(ctx)

	if err := validateInterviewKind(input.Type, input.Modality); err != nil {
		return nil, nil, err
	}

	var vacancy models.Vacancy
	if err := s.db.WithContext(ctx).First(&vacancy, "id = ?", input.VacancyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("interview service: load vacancy: %w", err)
	}

	var candidate models.Candidate
	if err := s.db.WithContext(ctx).First(&candidate, "id = ?", input.CandidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("interview service: load candidate: %w", err)
	}

	var active int64
	if err := s.db.WithContext(ctx).Model(&models.Interview{}).
		Where("vacancy_id = ? AND candidate_id = ? AND state IN ?",
			vacancy.ID, candidate.ID, models.ActiveInterviewStates()).
		Count(&active).Error; err != nil {
		return nil, nil, fmt.Errorf("interview service: count active interviews: %w", err)
	}
	if active > 0 {
		return nil, nil, apperrors.ErrActiveInterviewExists
	}

	interview := models.Interview{
		VacancyID:   vacancy.ID,
		CandidateID: candidate.ID,
		Type:        input.Type,
		Modality:    input.Modality,
		Location:    strings.TrimSpace(input.Location),
		MeetingLink: strings.TrimSpace(input.MeetingLink),
		Notes:       strings.TrimSpace(input.Notes),
	}
	if stageID := strings.TrimSpace(input.StageID); stageID != "" {
		interview.StageID = &stageID
	}

	var events []Event
	switch strings.ToLower(strings.TrimSpace(input.Mode)) {
	case InterviewModeSchedule:
		if input.StartAt.IsZero() {
			return nil, nil, apperrors.NewValidation("start time is required to schedule an interview")
		}
		if input.DurationMinutes <= 0 {
			return nil, nil, apperrors.NewValidation("duration must be positive")
		}
		interview.State = models.InterviewStateScheduled
		interview.Confirmed = true
		interview.StartAt = input.StartAt.UTC()
		interview.EndAt = interview.StartAt.Add(time.Duration(input.DurationMinutes) * time.Minute)

		events = append(events, s.confirmedEvent(&interview, &vacancy, Recipients{
			ClientOrgIDs: []string{vacancy.ClientOrgID},
		}))

	case InterviewModePropose:
		slots, err := validateSlots(input.Slots)
		if err != nil {
			return nil, nil, err
		}
		encoded, err := models.EncodeSlots(slots)
		if err != nil {
			return nil, nil, fmt.Errorf("interview service: encode slots: %w", err)
		}
		interview.State = models.InterviewStateProposed
		interview.ProposedSlots = encoded
		// The record requires concrete timestamps; the first slot stands in
		// until the candidate confirms.
		interview.StartAt = slots[0].Start
		interview.EndAt = slots[0].End

		events = append(events, Event{
			Type:    models.NotificationTypeInterviewProposal,
			Title:   "Interview proposal",
			Message: fmt.Sprintf("You have %d time option(s) to choose from for %s", len(slots), vacancy.Title),
			Metadata: map[string]any{
				"vacancy_id":   vacancy.ID,
				"candidate_id": candidate.ID,
				"slot_count":   len(slots),
			},
			Recipients: Recipients{CandidateIDs: []string{candidate.ID}},
		})

	default:
		return nil, nil, apperrors.NewValidation("mode must be schedule or propose")
	}

	if err := s.db.WithContext(ctx).Create(&interview).Error; err != nil {
		metrics.InterviewTransitions.WithLabelValues("create", "error").Inc()
		return nil, nil, fmt.Errorf("interview service: create interview: %w", err)
	}

	for i := range events {
		events[i].Metadata["interview_id"] = interview.ID
	}
	metrics.InterviewTransitions.WithLabelValues("create", "success").Inc()
	return &interview, events, nil
}

// ConfirmSlot resolves a proposal into a scheduled interview. The slot must be
// element-equal to one of the proposed slots.
func (s *InterviewService) ConfirmSlot(ctx context.Context, interviewID string, slot models.InterviewSlot, actor string) (*models.Interview, []Event, error) {
	ctx = ensureContext(ctx)

	interview, vacancy, err := s.load(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}

	if interview.State != models.InterviewStateProposed {
		metrics.InterviewTransitions.WithLabelValues("confirm_slot", "rejected").Inc()
		if interview.IsTerminal() {
			return nil, nil, apperrors.ErrTerminalState
		}
		return nil, nil, apperrors.ErrInvalidTransition
	}

	slots, err := interview.Slots()
	if err != nil {
		return nil, nil, fmt.Errorf("interview service: decode slots: %w", err)
	}

	found := false
	for _, proposed := range slots {
		if proposed.Equal(slot) {
			found = true
			break
		}
	}
	if !found {
		metrics.InterviewTransitions.WithLabelValues("confirm_slot", "rejected").Inc()
		return nil, nil, apperrors.ErrInvalidSlot
	}

	if err := s.db.WithContext(ctx).Model(interview).
		Updates(map[string]any{
			"state":          models.InterviewStateScheduled,
			"start_at":       slot.Start.UTC(),
			"end_at":         slot.End.UTC(),
			"proposed_slots": nil,
			"confirmed":      true,
		}).Error; err != nil {
		return nil, nil, fmt.Errorf("interview service: confirm slot: %w", err)
	}

	interview.State = models.InterviewStateScheduled
	interview.StartAt = slot.Start.UTC()
	interview.EndAt = slot.End.UTC()
	interview.ProposedSlots = nil
	interview.Confirmed = true

	recipients := Recipients{
		UserIDs:      []string{vacancy.RecruiterID},
		ClientOrgIDs: []string{vacancy.ClientOrgID},
	}
	metrics.InterviewTransitions.WithLabelValues("confirm_slot", "success").Inc()
	return interview, []Event{s.confirmedEvent(interview, vacancy, recipients)}, nil
}

// Reschedule moves a scheduled interview to a new time window.
func (s *InterviewService) Reschedule(ctx context.Context, interviewID string, newStart, newEnd time.Time, actor string) (*models.Interview, []Event, error) {
	ctx = ensureContext(ctx)

	interview, vacancy, err := s.load(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}

	if err := requireLiveSchedule(interview, "reschedule"); err != nil {
		return nil, nil, err
	}
	if newStart.IsZero() || !newEnd.After(newStart) {
		return nil, nil, apperrors.NewValidation("reschedule requires a valid time window")
	}

	if err := s.db.WithContext(ctx).Model(interview).
		Updates(map[string]any{
			"state":    models.InterviewStateRescheduled,
			"start_at": newStart.UTC(),
			"end_at":   newEnd.UTC(),
		}).Error; err != nil {
		return nil, nil, fmt.Errorf("interview service: reschedule: %w", err)
	}

	interview.State = models.InterviewStateRescheduled
	interview.StartAt = newStart.UTC()
	interview.EndAt = newEnd.UTC()

	event := Event{
		Type:    models.NotificationTypeInterviewRescheduled,
		Title:   "Interview rescheduled",
		Message: fmt.Sprintf("The interview for %s was moved to %s", vacancy.Title, interview.StartAt.Format(time.RFC3339)),
		Metadata: map[string]any{
			"interview_id": interview.ID,
			"vacancy_id":   interview.VacancyID,
			"candidate_id": interview.CandidateID,
			"start_at":     interview.StartAt.Format(time.RFC3339),
		},
		Recipients: Recipients{
			CandidateIDs: []string{interview.CandidateID},
			ClientOrgIDs: []string{vacancy.ClientOrgID},
		},
	}
	metrics.InterviewTransitions.WithLabelValues("reschedule", "success").Inc()
	return interview, []Event{event}, nil
}

// Cancel terminates a live interview. Cancelling an already cancelled
// interview is rejected rather than treated as idempotent: each cancellation
// carries a reason and silent success would lose it.
func (s *InterviewService) Cancel(ctx context.Context, interviewID, reason, actor string) (*models.Interview, []Event, error) {
	ctx = ensureContext(ctx)

	interview, vacancy, err := s.load(ctx, interviewID)
	if err != nil {
		return nil, nil, err
	}

	if interview.IsTerminal() {
		metrics.InterviewTransitions.WithLabelValues("cancel", "rejected").Inc()
		return nil, nil, apperrors.ErrTerminalState
	}

	notes := interview.Notes
	if reason = strings.TrimSpace(reason); reason != "" {
		if notes != "" {
			notes += "\n"
		}
		notes += "Cancelled: " + reason
	}

	if err := s.db.WithContext(ctx).Model(interview).
		Updates(map[string]any{
			"state":          models.InterviewStateCancelled,
			"notes":          notes,
			"proposed_slots": nil,
		}).Error; err != nil {
		return nil, nil, fmt.Errorf("interview service: cancel: %w", err)
	}

	interview.State = models.InterviewStateCancelled
	interview.Notes = notes
	interview.ProposedSlots = nil

	event := Event{
		Type:     models.NotificationTypeInterviewCancelled,
		Title:    "Interview cancelled",
		Message:  fmt.Sprintf("The interview for %s was cancelled", vacancy.Title),
		Severity: "warning",
		Metadata: map[string]any{
			"interview_id": interview.ID,
			"vacancy_id":   interview.VacancyID,
			"candidate_id": interview.CandidateID,
			"reason":       reason,
		},
		Recipients: Recipients{
			UserIDs:      []string{vacancy.RecruiterID},
			CandidateIDs: []string{interview.CandidateID},
			ClientOrgIDs: []string{vacancy.ClientOrgID},
		},
	}
	metrics.InterviewTransitions.WithLabelValues("cancel", "success").Inc()
	return interview, []Event{event}, nil
}

// MarkCompleted closes out an interview that took place. Terminal; emits no
// notification.
func (s *InterviewService) MarkCompleted(ctx context.Context, interviewID, notes, actor string) (*models.Interview, error) {
	ctx = ensureContext(ctx)

	interview, _, err := s.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	if err := requireLiveSchedule(interview, "complete"); err != nil {
		return nil, err
	}

	combined := interview.Notes
	if notes = strings.TrimSpace(notes); notes != "" {
		if combined != "" {
			combined += "\n"
		}
		combined += notes
	}

	if err := s.db.WithContext(ctx).Model(interview).
		Updates(map[string]any{
			"state": models.InterviewStateCompleted,
			"notes": combined,
		}).Error; err != nil {
		return nil, fmt.Errorf("interview service: mark completed: %w", err)
	}

	interview.State = models.InterviewStateCompleted
	interview.Notes = combined
	metrics.InterviewTransitions.WithLabelValues("complete", "success").Inc()
	return interview, nil
}

// Delete removes an interview record outright, from any state. This is an
// administrative purge for records that should never have existed, distinct
// from cancellation, so no notification is emitted.
func (s *InterviewService) Delete(ctx context.Context, interviewID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Interview{}, "id = ?", interviewID)
	if result.Error != nil {
		return fmt.Errorf("interview service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	metrics.InterviewTransitions.WithLabelValues("delete", "success").Inc()
	return nil
}

// Get returns a single interview by ID.
func (s *InterviewService) Get(ctx context.Context, interviewID string) (*models.Interview, error) {
	ctx = ensureContext(ctx)

	interview, _, err := s.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	return interview, nil
}

// ListForPair returns all interviews for a (vacancy, candidate) pair, newest first.
func (s *InterviewService) ListForPair(ctx context.Context, vacancyID, candidateID string) ([]models.Interview, error) {
	ctx = ensureContext(ctx)

	var rows []models.Interview
	if err := s.db.WithContext(ctx).
		Where("vacancy_id = ? AND candidate_id = ?", vacancyID, candidateID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("interview service: list interviews: %w", err)
	}
	return rows, nil
}

// ListForVacancy returns all interviews attached to a vacancy, soonest first.
func (s *InterviewService) ListForVacancy(ctx context.Context, vacancyID string) ([]models.Interview, error) {
	ctx = ensureContext(ctx)

	var rows []models.Interview
	if err := s.db.WithContext(ctx).
		Where("vacancy_id = ?", vacancyID).
		Order("start_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("interview service: list interviews: %w", err)
	}
	return rows, nil
}

func (s *InterviewService) load(ctx context.Context, interviewID string) (*models.Interview, *models.Vacancy, error) {
	var interview models.Interview
	if err := s.db.WithContext(ctx).First(&interview, "id = ?", interviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("interview service: load interview: %w", err)
	}

	var vacancy models.Vacancy
	if err := s.db.WithContext(ctx).First(&vacancy, "id = ?", interview.VacancyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("interview service: load vacancy: %w", err)
	}

	return &interview, &vacancy, nil
}

func (s *InterviewService) confirmedEvent(interview *models.Interview, vacancy *models.Vacancy, recipients Recipients) Event {
	return Event{
		Type:    models.NotificationTypeInterviewConfirmed,
		Title:   "Interview scheduled",
		Message: fmt.Sprintf("Interview for %s confirmed at %s", vacancy.Title, interview.StartAt.Format(time.RFC3339)),
		Metadata: map[string]any{
			"interview_id": interview.ID,
			"vacancy_id":   interview.VacancyID,
			"candidate_id": interview.CandidateID,
			"start_at":     interview.StartAt.Format(time.RFC3339),
		},
		Recipients: recipients,
	}
}

// requireLiveSchedule guards events only valid from scheduled/rescheduled.
func requireLiveSchedule(interview *models.Interview, event string) error {
	switch interview.State {
	case models.InterviewStateScheduled, models.InterviewStateRescheduled:
		return nil
	}
	metrics.InterviewTransitions.WithLabelValues(event, "rejected").Inc()
	if interview.IsTerminal() {
		return apperrors.ErrTerminalState
	}
	return apperrors.ErrInvalidTransition
}

func validateInterviewKind(interviewType, modality string) error {
	switch interviewType {
	case models.InterviewTypeInternal, models.InterviewTypeClient, models.InterviewTypeTechnical, models.InterviewTypeFollowUp:
	default:
		return apperrors.NewValidation("unknown interview type")
	}
	switch modality {
	case models.InterviewModalityInPerson, models.InterviewModalityOnline:
	default:
		return apperrors.NewValidation("unknown interview modality")
	}
	return nil
}

func validateSlots(slots []models.InterviewSlot) ([]models.InterviewSlot, error) {
	if len(slots) == 0 {
		return nil, apperrors.NewValidation("at least one proposed slot is required")
	}
	if len(slots) > maxProposedSlots {
		return nil, apperrors.NewValidation(fmt.Sprintf("at most %d proposed slots are allowed", maxProposedSlots))
	}

	out := make([]models.InterviewSlot, 0, len(slots))
	for i, slot := range slots {
		if slot.Start.IsZero() || !slot.End.After(slot.Start) {
			return nil, apperrors.NewValidation("each slot needs a start before its end")
		}
		normalised := models.InterviewSlot{Start: slot.Start.UTC(), End: slot.End.UTC()}
		for _, prev := range out {
			if prev.Equal(normalised) {
				return nil, apperrors.NewValidation(fmt.Sprintf("slot %d duplicates an earlier slot", i+1))
			}
		}
		out = append(out, normalised)
	}
	return out, nil
}
