package models

// Stage kinds drive behaviour that used to rely on matching stage names.
// Moving an application into an "interview" stage triggers a scheduling
// suggestion when no interview is pending for the pair.
const (
	StageKindGeneric   = "generic"
	StageKindInterview = "interview"
	StageKindOffer     = "offer"
	StageKindHired     = "hired"
	StageKindRejected  = "rejected"
)

// PipelineStage is a named step in the hiring funnel. Stages are global and
// shared across all vacancies; Order only controls board column display and
// is not enforced unique.
type PipelineStage struct {
	BaseModel

	Name    string `gorm:"not null;uniqueIndex" json:"name"`
	Order   int    `gorm:"column:display_order;not null" json:"order"`
	Kind    string `gorm:"type:varchar(32);default:'generic'" json:"kind"`
	IsFinal bool   `gorm:"default:false" json:"is_final"`
	Color   string `gorm:"type:varchar(16)" json:"color"`
}

// ValidStageKind reports whether the supplied kind is one of the known values.
func ValidStageKind(kind string) bool {
	switch kind {
	case StageKindGeneric, StageKindInterview, StageKindOffer, StageKindHired, StageKindRejected:
		return true
	}
	return false
}
