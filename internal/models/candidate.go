package models

// Candidate is a person tracked through one or more vacancy pipelines.
// UserID links the candidate to a login profile when one exists; candidate
// notifications are only delivered when the link is present.
type Candidate struct {
	BaseModel

	FullName string `gorm:"not null" json:"full_name"`
	Email    string `gorm:"index" json:"email"`
	Phone    string `json:"phone"`

	UserID *string `gorm:"type:uuid;index" json:"user_id"`
	User   *User   `json:"user,omitempty"`

	Applications []Application `gorm:"foreignKey:CandidateID" json:"applications,omitempty"`
}
