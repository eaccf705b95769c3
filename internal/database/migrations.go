package database

import (
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ClientOrg{},
		&models.Candidate{},
		&models.Vacancy{},
		&models.PipelineStage{},
		&models.Application{},
		&models.StageHistoryEntry{},
		&models.Interview{},
		&models.Notification{},
	)
}

// SeedData populates the default hiring funnel. At least one stage must exist
// before any application can be created, so the seed runs at start-up.
func SeedData(db *gorm.DB) error {
	stages := []models.PipelineStage{
		{
			BaseModel: models.BaseModel{ID: "stage-applied"},
			Name:      "Applied",
			Order:     1,
			Kind:      models.StageKindGeneric,
			Color:     "#64748b",
		},
		{
			BaseModel: models.BaseModel{ID: "stage-screening"},
			Name:      "Screening",
			Order:     2,
			Kind:      models.StageKindGeneric,
			Color:     "#0ea5e9",
		},
		{
			BaseModel: models.BaseModel{ID: "stage-interview"},
			Name:      "Interview",
			Order:     3,
			Kind:      models.StageKindInterview,
			Color:     "#8b5cf6",
		},
		{
			BaseModel: models.BaseModel{ID: "stage-offer"},
			Name:      "Offer",
			Order:     4,
			Kind:      models.StageKindOffer,
			Color:     "#f59e0b",
		},
		{
			BaseModel: models.BaseModel{ID: "stage-hired"},
			Name:      "Hired",
			Order:     5,
			Kind:      models.StageKindHired,
			IsFinal:   true,
			Color:     "#22c55e",
		},
		{
			BaseModel: models.BaseModel{ID: "stage-rejected"},
			Name:      "Rejected",
			Order:     6,
			Kind:      models.StageKindRejected,
			IsFinal:   true,
			Color:     "#ef4444",
		},
	}

	for _, stage := range stages {
		if err := db.Where(models.PipelineStage{BaseModel: models.BaseModel{ID: stage.ID}}).
			Attrs(stage).
			FirstOrCreate(&models.PipelineStage{}).Error; err != nil {
			return err
		}
	}

	return nil
}
