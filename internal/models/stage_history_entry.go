package models

import "time"

// StageHistoryEntry is one row of an application's append-only stage audit
// trail. For a given application at most one entry is open (EndedAt nil) and
// it always matches the application's current stage.
type StageHistoryEntry struct {
	BaseModel

	ApplicationID string `gorm:"type:uuid;not null;index" json:"application_id"`

	StageID string         `gorm:"type:uuid;not null" json:"stage_id"`
	Stage   *PipelineStage `gorm:"foreignKey:StageID" json:"stage,omitempty"`

	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `gorm:"index" json:"ended_at"`

	MovedBy *string `gorm:"type:uuid" json:"moved_by"`
	Notes   string  `gorm:"type:text" json:"notes"`
}
