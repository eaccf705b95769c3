package models

// Vacancy is an open position owned by a client organisation and managed by a
// recruiter. Applications link candidates into its pipeline.
type Vacancy struct {
	BaseModel

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `json:"location"`
	Status      string `gorm:"type:varchar(32);default:'open'" json:"status"`

	ClientOrgID string     `gorm:"type:uuid;not null;index" json:"client_org_id"`
	ClientOrg   *ClientOrg `json:"client_org,omitempty"`

	RecruiterID string `gorm:"type:uuid;not null;index" json:"recruiter_id"`
	Recruiter   *User  `gorm:"foreignKey:RecruiterID" json:"recruiter,omitempty"`

	Applications []Application `gorm:"foreignKey:VacancyID" json:"applications,omitempty"`
}
