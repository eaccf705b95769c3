package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/models"
	apperrors "github.com/sergiovidalh/recluta/pkg/errors"
)

// StageInput describes stage create/update payloads.
type StageInput struct {
	Name    string
	Order   int
	Kind    string
	IsFinal bool
	Color   string
}

// StageService administers the global hiring funnel.
type StageService struct {
	db *gorm.DB
}

// NewStageService constructs a StageService.
func NewStageService(db *gorm.DB) (*StageService, error) {
	if db == nil {
		return nil, errors.New("stage service: db is required")
	}
	return &StageService{db: db}, nil
}

// List returns all stages in display order.
func (s *StageService) List(ctx context.Context) ([]models.PipelineStage, error) {
	ctx = ensureContext(ctx)

	var stages []models.PipelineStage
	if err := s.db.WithContext(ctx).
		Order("display_order ASC, name ASC").
		Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("stage service: list stages: %w", err)
	}
	return stages, nil
}

// First returns the entry stage of the funnel, the one new applications land in.
func (s *StageService) First(ctx context.Context) (*models.PipelineStage, error) {
	ctx = ensureContext(ctx)

	var stage models.PipelineStage
	if err := s.db.WithContext(ctx).
		Order("display_order ASC, name ASC").
		First(&stage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewValidation("no pipeline stages configured")
		}
		return nil, fmt.Errorf("stage service: load first stage: %w", err)
	}
	return &stage, nil
}

// Create registers a new stage.
func (s *StageService) Create(ctx context.Context, input StageInput) (*models.PipelineStage, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("stage name is required")
	}

	kind := strings.TrimSpace(input.Kind)
	if kind == "" {
		kind = models.StageKindGeneric
	}
	if !models.ValidStageKind(kind) {
		return nil, apperrors.NewValidation("unknown stage kind")
	}

	stage := models.PipelineStage{
		Name:    name,
		Order:   input.Order,
		Kind:    kind,
		IsFinal: input.IsFinal,
		Color:   strings.TrimSpace(input.Color),
	}

	if err := s.db.WithContext(ctx).Create(&stage).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.New("stage.name_taken", "A stage with this name already exists", 409)
		}
		return nil, fmt.Errorf("stage service: create stage: %w", err)
	}

	return &stage, nil
}

// Update modifies an existing stage.
func (s *StageService) Update(ctx context.Context, stageID string, input StageInput) (*models.PipelineStage, error) {
	ctx = ensureContext(ctx)

	var stage models.PipelineStage
	if err := s.db.WithContext(ctx).First(&stage, "id = ?", stageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("stage service: load stage: %w", err)
	}

	updates := map[string]any{
		"display_order": input.Order,
		"is_final":      input.IsFinal,
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if kind := strings.TrimSpace(input.Kind); kind != "" {
		if !models.ValidStageKind(kind) {
			return nil, apperrors.NewValidation("unknown stage kind")
		}
		updates["kind"] = kind
	}
	if color := strings.TrimSpace(input.Color); color != "" {
		updates["color"] = color
	}

	if err := s.db.WithContext(ctx).Model(&stage).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.New("stage.name_taken", "A stage with this name already exists", 409)
		}
		return nil, fmt.Errorf("stage service: update stage: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&stage, "id = ?", stageID).Error; err != nil {
		return nil, fmt.Errorf("stage service: reload stage: %w", err)
	}
	return &stage, nil
}

// Delete removes a stage that no application references. Applications always
// point at an existing stage, so a referenced stage cannot be removed.
func (s *StageService) Delete(ctx context.Context, stageID string) error {
	ctx = ensureContext(ctx)

	var inUse int64
	if err := s.db.WithContext(ctx).Model(&models.Application{}).
		Where("stage_id = ?", stageID).
		Count(&inUse).Error; err != nil {
		return fmt.Errorf("stage service: count applications: %w", err)
	}
	if inUse > 0 {
		return apperrors.New("stage.in_use", "Stage is referenced by applications and cannot be deleted", 409)
	}

	result := s.db.WithContext(ctx).Delete(&models.PipelineStage{}, "id = ?", stageID)
	if result.Error != nil {
		return fmt.Errorf("stage service: delete stage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
