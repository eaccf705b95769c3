package models

// ClientOrg is the hiring company a vacancy belongs to. Zero or more user
// profiles may be linked to it for client-directed notification fanout.
type ClientOrg struct {
	BaseModel

	Name         string `gorm:"not null;uniqueIndex" json:"name"`
	ContactEmail string `json:"contact_email"`
	Website      string `json:"website"`

	Users     []User    `gorm:"foreignKey:ClientOrgID" json:"users,omitempty"`
	Vacancies []Vacancy `gorm:"foreignKey:ClientOrgID" json:"vacancies,omitempty"`
}
