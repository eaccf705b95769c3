package models

import "time"

// User describes platform users: recruiters and client organisation profiles.
// A profile with a ClientOrgID belongs to the hiring company and receives
// client-directed notifications.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	ClientOrgID *string    `gorm:"type:uuid;index" json:"client_org_id"`
	ClientOrg   *ClientOrg `json:"client_org,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`
}
