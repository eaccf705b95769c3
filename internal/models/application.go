package models

import "time"

// Application links a candidate into one vacancy's pipeline. It always points
// at a stage; discard is a soft state orthogonal to stage so that discarded
// rows keep their last position as historical record.
type Application struct {
	BaseModel

	CandidateID string     `gorm:"type:uuid;not null;uniqueIndex:idx_applications_pair" json:"candidate_id"`
	Candidate   *Candidate `json:"candidate,omitempty"`

	VacancyID string   `gorm:"type:uuid;not null;uniqueIndex:idx_applications_pair" json:"vacancy_id"`
	Vacancy   *Vacancy `json:"vacancy,omitempty"`

	StageID string         `gorm:"type:uuid;not null;index" json:"stage_id"`
	Stage   *PipelineStage `gorm:"foreignKey:StageID" json:"stage,omitempty"`

	Discarded     bool    `gorm:"default:false;index" json:"discarded"`
	DiscardReason *string `json:"discard_reason"`

	AppliedAt      time.Time `gorm:"not null" json:"applied_at"`
	StageUpdatedAt time.Time `gorm:"not null" json:"stage_updated_at"`

	History []StageHistoryEntry `gorm:"foreignKey:ApplicationID" json:"history,omitempty"`
}
