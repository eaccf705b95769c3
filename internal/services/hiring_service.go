package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/models"
	"github.com/sergiovidalh/recluta/internal/realtime"
)

// HiringService is the entry point used by API callers. Each operation runs
// one core mutation and, once it has committed, hands the recorded events to
// the dispatcher. Dispatch failures never surface: by the time fanout runs
// the primary mutation has already succeeded.
type HiringService struct {
	pipeline   *PipelineService
	interviews *InterviewService
	notifier   *NotificationService
	hub        *realtime.Hub
}

// NewHiringService constructs the orchestration façade.
func NewHiringService(db *gorm.DB, hub *realtime.Hub) (*HiringService, error) {
	if db == nil {
		return nil, errors.New("hiring service: db is required")
	}

	pipeline, err := NewPipelineService(db)
	if err != nil {
		return nil, err
	}
	interviews, err := NewInterviewService(db)
	if err != nil {
		return nil, err
	}
	notifier, err := NewNotificationService(db, hub)
	if err != nil {
		return nil, err
	}

	return &HiringService{
		pipeline:   pipeline,
		interviews: interviews,
		notifier:   notifier,
		hub:        hub,
	}, nil
}

// Notifications exposes the dispatcher for read-state endpoints.
func (s *HiringService) Notifications() *NotificationService {
	return s.notifier
}

// MoveApplication applies a stage move, then fans out its events.
func (s *HiringService) MoveApplication(ctx context.Context, input MoveApplicationInput) (*models.Application, error) {
	application, events, err := s.pipeline.MoveApplication(ctx, input)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, events...)
	s.broadcastBoard("application.moved", application)
	return application, nil
}

// DiscardApplication soft-rejects an application.
func (s *HiringService) DiscardApplication(ctx context.Context, applicationID, reason, actor string) (*models.Application, error) {
	application, err := s.pipeline.DiscardApplication(ctx, applicationID, reason, actor)
	if err != nil {
		return nil, err
	}

	s.broadcastBoard("application.discarded", application)
	return application, nil
}

// RestoreApplication reverses a discard.
func (s *HiringService) RestoreApplication(ctx context.Context, applicationID, actor string) (*models.Application, error) {
	application, err := s.pipeline.RestoreApplication(ctx, applicationID, actor)
	if err != nil {
		return nil, err
	}

	s.broadcastBoard("application.restored", application)
	return application, nil
}

// CreateInterview registers an interview and notifies the counterpart.
func (s *HiringService) CreateInterview(ctx context.Context, input CreateInterviewInput) (*models.Interview, error) {
	interview, events, err := s.interviews.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, events...)
	return interview, nil
}

// ConfirmSlot resolves an interview proposal into a schedule.
func (s *HiringService) ConfirmSlot(ctx context.Context, interviewID string, slot models.InterviewSlot, actor string) (*models.Interview, error) {
	interview, events, err := s.interviews.ConfirmSlot(ctx, interviewID, slot, actor)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, events...)
	return interview, nil
}

// RescheduleInterview moves a live interview to a new window.
func (s *HiringService) RescheduleInterview(ctx context.Context, interviewID string, newStart, newEnd time.Time, actor string) (*models.Interview, error) {
	interview, events, err := s.interviews.Reschedule(ctx, interviewID, newStart, newEnd, actor)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, events...)
	return interview, nil
}

// CancelInterview terminates a live interview and notifies all parties.
func (s *HiringService) CancelInterview(ctx context.Context, interviewID, reason, actor string) (*models.Interview, error) {
	interview, events, err := s.interviews.Cancel(ctx, interviewID, reason, actor)
	if err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, events...)
	return interview, nil
}

// CompleteInterview closes out an interview that took place.
func (s *HiringService) CompleteInterview(ctx context.Context, interviewID, notes, actor string) (*models.Interview, error) {
	return s.interviews.MarkCompleted(ctx, interviewID, notes, actor)
}

// DeleteInterview purges an interview record.
func (s *HiringService) DeleteInterview(ctx context.Context, interviewID string) error {
	return s.interviews.Delete(ctx, interviewID)
}

// MarkNotificationRead flips a notification to read.
func (s *HiringService) MarkNotificationRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	return s.notifier.MarkRead(ctx, userID, notificationID)
}

// MarkAllNotificationsRead flips every unread notification for the user.
func (s *HiringService) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return s.notifier.MarkAllRead(ctx, userID)
}

// broadcastBoard pushes a board refresh hint to pipeline stream subscribers.
func (s *HiringService) broadcastBoard(event string, application *models.Application) {
	if s.hub == nil || application == nil {
		return
	}
	s.hub.BroadcastStream(realtime.StreamPipeline, realtime.Message{
		Stream: realtime.StreamPipeline,
		Event:  event,
		Data: map[string]any{
			"application_id": application.ID,
			"vacancy_id":     application.VacancyID,
			"stage_id":       application.StageID,
			"discarded":      application.Discarded,
		},
	})
}
