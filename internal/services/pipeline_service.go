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

// MoveApplicationInput describes a stage move request.
type MoveApplicationInput struct {
	ApplicationID string
	TargetStageID string
	Actor         string
}

// PipelineService validates and applies stage moves and discard/restore
// operations on applications, maintaining the append-only stage history.
type PipelineService struct {
	db *gorm.DB
}

// NewPipelineService constructs a PipelineService.
func NewPipelineService(db *gorm.DB) (*PipelineService, error) {
	if db == nil {
		return nil, errors.New("pipeline service: db is required")
	}
	return &PipelineService{db: db}, nil
}

// MoveApplication moves an application to the target stage. The open history
// entry is closed, a new one opened and the application row updated in a
// single transaction. The application update is guarded by the stage read
// inside the transaction so a concurrent move surfaces as a conflict rather
// than a lost update.
//
// Returned events are advisory and dispatched by the caller after commit:
// a stage_change fanout, plus an interview_suggested hint when the target
// stage is an interview stage and no interview is pending for the pair.
func (s *PipelineService) MoveApplication(ctx context.Context, input MoveApplicationInput) (*models.Application, []Event, error) {
	ctx = ensureContext(ctx)

	targetStageID := strings.TrimSpace(input.TargetStageID)
	if targetStageID == "" {
		return nil, nil, apperrors.NewValidation("target stage id is required")
	}

	var target models.PipelineStage
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetStageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.StageMoves.WithLabelValues("rejected").Inc()
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("pipeline service: load target stage: %w", err)
	}

	var application models.Application
	if err := s.db.WithContext(ctx).
		Preload("Candidate").
		Preload("Vacancy").
		First(&application, "id = ?", input.ApplicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.StageMoves.WithLabelValues("rejected").Inc()
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("pipeline service: load application: %w", err)
	}

	if application.StageID == target.ID {
		metrics.StageMoves.WithLabelValues("rejected").Inc()
		return nil, nil, apperrors.ErrNoOpMove
	}

	priorStageID := application.StageID
	now := time.Now().UTC()
	actor := strings.TrimSpace(input.Actor)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StageHistoryEntry{}).
			Where("application_id = ? AND ended_at IS NULL", application.ID).
			Update("ended_at", now).Error; err != nil {
			return fmt.Errorf("close history entry: %w", err)
		}

		entry := models.StageHistoryEntry{
			ApplicationID: application.ID,
			StageID:       target.ID,
			StartedAt:     now,
		}
		if actor != "" {
			entry.MovedBy = &actor
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("open history entry: %w", err)
		}

		result := tx.Model(&models.Application{}).
			Where("id = ? AND stage_id = ?", application.ID, priorStageID).
			Updates(map[string]any{
				"stage_id":         target.ID,
				"stage_updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("update application stage: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrConcurrencyConflict
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrencyConflict) {
			metrics.StageMoves.WithLabelValues("conflict").Inc()
			return nil, nil, apperrors.ErrConcurrencyConflict
		}
		return nil, nil, fmt.Errorf("pipeline service: move application: %w", err)
	}

	application.StageID = target.ID
	application.Stage = &target
	application.StageUpdatedAt = now
	metrics.StageMoves.WithLabelValues("success").Inc()

	events := []Event{s.stageChangeEvent(&application, &target)}
	if advisory := s.interviewSuggestion(ctx, &application, &target, actor); advisory != nil {
		events = append(events, *advisory)
	}

	return &application, events, nil
}

// DiscardApplication soft-rejects an application. The stage and its history
// stay untouched so the row keeps its last funnel position.
func (s *PipelineService) DiscardApplication(ctx context.Context, applicationID, reason, actor string) (*models.Application, error) {
	ctx = ensureContext(ctx)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidation("discard reason is required")
	}

	var application models.Application
	if err := s.db.WithContext(ctx).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("pipeline service: load application: %w", err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&application).
		Updates(map[string]any{
			"discarded":        true,
			"discard_reason":   reason,
			"stage_updated_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("pipeline service: discard application: %w", err)
	}

	application.Discarded = true
	application.DiscardReason = &reason
	application.StageUpdatedAt = now
	return &application, nil
}

// RestoreApplication reverses a discard. Restoring an application that is not
// discarded is a no-op success.
func (s *PipelineService) RestoreApplication(ctx context.Context, applicationID, actor string) (*models.Application, error) {
	ctx = ensureContext(ctx)

	var application models.Application
	if err := s.db.WithContext(ctx).First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("pipeline service: load application: %w", err)
	}

	if !application.Discarded {
		return &application, nil
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&application).
		Updates(map[string]any{
			"discarded":        false,
			"discard_reason":   nil,
			"stage_updated_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("pipeline service: restore application: %w", err)
	}

	application.Discarded = false
	application.DiscardReason = nil
	application.StageUpdatedAt = now
	return &application, nil
}

func (s *PipelineService) stageChangeEvent(application *models.Application, stage *models.PipelineStage) Event {
	candidateName := ""
	if application.Candidate != nil {
		candidateName = application.Candidate.FullName
	}
	vacancyTitle := ""
	recipients := Recipients{CandidateIDs: []string{application.CandidateID}}
	if application.Vacancy != nil {
		vacancyTitle = application.Vacancy.Title
		recipients.ClientOrgIDs = []string{application.Vacancy.ClientOrgID}
	}

	return Event{
		Type:    models.NotificationTypeStageChange,
		Title:   "Application moved",
		Message: fmt.Sprintf("%s moved to %s for %s", candidateName, stage.Name, vacancyTitle),
		Metadata: map[string]any{
			"application_id": application.ID,
			"vacancy_id":     application.VacancyID,
			"candidate_id":   application.CandidateID,
			"stage_id":       stage.ID,
			"stage_name":     stage.Name,
		},
		Recipients: recipients,
	}
}

// interviewSuggestion builds the advisory event prompting interview
// scheduling. Lookup failures are swallowed: the suggestion must never block
// or fail the move it rides on.
func (s *PipelineService) interviewSuggestion(ctx context.Context, application *models.Application, stage *models.PipelineStage, actor string) *Event {
	if stage.Kind != models.StageKindInterview || actor == "" {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Interview{}).
		Where("vacancy_id = ? AND candidate_id = ? AND state IN ?",
			application.VacancyID, application.CandidateID, models.ActiveInterviewStates()).
		Count(&count).Error; err != nil || count > 0 {
		return nil
	}

	return &Event{
		Type:    models.NotificationTypeInterviewSuggested,
		Title:   "Schedule an interview",
		Message: "The application reached an interview stage and has no interview pending",
		Metadata: map[string]any{
			"application_id": application.ID,
			"vacancy_id":     application.VacancyID,
			"candidate_id":   application.CandidateID,
			"stage_id":       stage.ID,
		},
		Recipients: Recipients{UserIDs: []string{actor}},
	}
}
