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
)

// CreateApplicationInput enters a candidate into a vacancy's pipeline.
type CreateApplicationInput struct {
	CandidateID string
	VacancyID   string
	Actor       string
}

// StageColumn is one board column: a stage plus its non-discarded applications.
type StageColumn struct {
	Stage        models.PipelineStage `json:"stage"`
	Applications []models.Application `json:"applications"`
}

// ApplicationService handles application intake and read views. Stage
// transitions live in PipelineService.
type ApplicationService struct {
	db     *gorm.DB
	stages *StageService
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(db *gorm.DB, stages *StageService) (*ApplicationService, error) {
	if db == nil {
		return nil, errors.New("application service: db is required")
	}
	if stages == nil {
		var err error
		stages, err = NewStageService(db)
		if err != nil {
			return nil, err
		}
	}
	return &ApplicationService{db: db, stages: stages}, nil
}

// Create places a candidate in the vacancy's pipeline at the entry stage and
// opens the first history entry in the same transaction.
func (s *ApplicationService) Create(ctx context.Context, input CreateApplicationInput) (*models.Application, error) {
	ctx = ensureContext(ctx)

	var candidate models.Candidate
	if err := s.db.WithContext(ctx).First(&candidate, "id = ?", input.CandidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("application service: load candidate: %w", err)
	}

	var vacancy models.Vacancy
	if err := s.db.WithContext(ctx).First(&vacancy, "id = ?", input.VacancyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("application service: load vacancy: %w", err)
	}

	entryStage, err := s.stages.First(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	actor := strings.TrimSpace(input.Actor)
	application := models.Application{
		CandidateID:    candidate.ID,
		VacancyID:      vacancy.ID,
		StageID:        entryStage.ID,
		AppliedAt:      now,
		StageUpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&application).Error; err != nil {
			return err
		}

		entry := models.StageHistoryEntry{
			ApplicationID: application.ID,
			StageID:       entryStage.ID,
			StartedAt:     now,
		}
		if actor != "" {
			entry.MovedBy = &actor
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.New("application.exists", "Candidate is already in this vacancy's pipeline", 409)
		}
		return nil, fmt.Errorf("application service: create application: %w", err)
	}

	application.Stage = entryStage
	return &application, nil
}

// Get loads one application with its stage and owners.
func (s *ApplicationService) Get(ctx context.Context, applicationID string) (*models.Application, error) {
	ctx = ensureContext(ctx)

	var application models.Application
	if err := s.db.WithContext(ctx).
		Preload("Candidate").
		Preload("Vacancy").
		Preload("Stage").
		First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("application service: load application: %w", err)
	}
	return &application, nil
}

// Board returns the vacancy's pipeline grouped by stage in display order.
// Discarded applications are excluded; they keep their stage only as history.
func (s *ApplicationService) Board(ctx context.Context, vacancyID string) ([]StageColumn, error) {
	ctx = ensureContext(ctx)

	stages, err := s.stages.List(ctx)
	if err != nil {
		return nil, err
	}

	var applications []models.Application
	if err := s.db.WithContext(ctx).
		Preload("Candidate").
		Where("vacancy_id = ? AND discarded = ?", vacancyID, false).
		Order("stage_updated_at ASC").
		Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("application service: list applications: %w", err)
	}

	byStage := make(map[string][]models.Application, len(stages))
	for _, application := range applications {
		byStage[application.StageID] = append(byStage[application.StageID], application)
	}

	columns := make([]StageColumn, 0, len(stages))
	for _, stage := range stages {
		columns = append(columns, StageColumn{
			Stage:        stage,
			Applications: byStage[stage.ID],
		})
	}
	return columns, nil
}

// History returns the application's stage audit trail, oldest first.
func (s *ApplicationService) History(ctx context.Context, applicationID string) ([]models.StageHistoryEntry, error) {
	ctx = ensureContext(ctx)

	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", applicationID).
		Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("application service: check application: %w", err)
	}
	if exists == 0 {
		return nil, apperrors.ErrNotFound
	}

	var entries []models.StageHistoryEntry
	if err := s.db.WithContext(ctx).
		Preload("Stage").
		Where("application_id = ?", applicationID).
		Order("started_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("application service: load history: %w", err)
	}
	return entries, nil
}
