package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types emitted by the hiring core.
const (
	NotificationTypeStageChange          = "stage_change"
	NotificationTypeInterviewProposal    = "interview_proposal"
	NotificationTypeInterviewConfirmed   = "interview_confirmed"
	NotificationTypeInterviewCancelled   = "interview_cancelled"
	NotificationTypeInterviewRescheduled = "interview_rescheduled"
	NotificationTypeInterviewSuggested   = "interview_suggested"
)

// Notification represents an in-app notification for a user. Rows are created
// only by the fanout dispatcher and mutated only to flip the read flag.
type Notification struct {
	BaseModel

	UserID   string         `gorm:"type:uuid;index" json:"user_id"`
	Type     string         `gorm:"type:varchar(64);not null" json:"type"`
	Title    string         `gorm:"type:varchar(255);not null" json:"title"`
	Message  string         `gorm:"type:text" json:"message"`
	Severity string         `gorm:"type:varchar(32);default:'info'" json:"severity"`
	Metadata datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
