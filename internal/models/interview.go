package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Interview states use the Spanish wire values for compatibility with the
// existing store.
const (
	InterviewStateProposed    = "propuesta"
	InterviewStateScheduled   = "programada"
	InterviewStateRescheduled = "reprogramada"
	InterviewStateCompleted   = "realizada"
	InterviewStateCancelled   = "cancelada"
)

// Interview types.
const (
	InterviewTypeInternal  = "internal"
	InterviewTypeClient    = "client"
	InterviewTypeTechnical = "technical"
	InterviewTypeFollowUp  = "follow-up"
)

// Interview modalities.
const (
	InterviewModalityInPerson = "in-person"
	InterviewModalityOnline   = "online"
)

// InterviewSlot is a single candidate-facing time option within a proposal.
type InterviewSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Equal reports element equality, the rule used when confirming a slot.
func (s InterviewSlot) Equal(other InterviewSlot) bool {
	return s.Start.Equal(other.Start) && s.End.Equal(other.End)
}

// Interview tracks a single interview for a (vacancy, candidate) pair.
// State transitions happen exclusively through the negotiation engine.
type Interview struct {
	BaseModel

	VacancyID string   `gorm:"type:uuid;not null;index:idx_interviews_pair" json:"vacancy_id"`
	Vacancy   *Vacancy `json:"vacancy,omitempty"`

	CandidateID string     `gorm:"type:uuid;not null;index:idx_interviews_pair" json:"candidate_id"`
	Candidate   *Candidate `json:"candidate,omitempty"`

	StageID *string        `gorm:"type:uuid" json:"stage_id"`
	Stage   *PipelineStage `gorm:"foreignKey:StageID" json:"stage,omitempty"`

	Type     string `gorm:"type:varchar(32);not null" json:"type"`
	Modality string `gorm:"type:varchar(32);not null" json:"modality"`
	State    string `gorm:"type:varchar(32);not null;index" json:"state"`

	StartAt time.Time `gorm:"not null" json:"start_at"`
	EndAt   time.Time `gorm:"not null" json:"end_at"`

	// ProposedSlots holds 1-3 {start, end} pairs while State is propuesta and
	// is empty in every other state.
	ProposedSlots datatypes.JSON `json:"proposed_slots"`

	Confirmed   bool   `gorm:"default:false" json:"confirmed"`
	Location    string `json:"location"`
	MeetingLink string `json:"meeting_link"`
	Notes       string `gorm:"type:text" json:"notes"`
}

// IsTerminal reports whether the interview reached a final state.
func (i *Interview) IsTerminal() bool {
	return i.State == InterviewStateCompleted || i.State == InterviewStateCancelled
}

// IsActive reports whether the interview still occupies the pair's single
// live-interview slot.
func (i *Interview) IsActive() bool {
	switch i.State {
	case InterviewStateProposed, InterviewStateScheduled, InterviewStateRescheduled:
		return true
	}
	return false
}

// Slots decodes the proposed slots column.
func (i *Interview) Slots() ([]InterviewSlot, error) {
	if len(i.ProposedSlots) == 0 {
		return nil, nil
	}
	var slots []InterviewSlot
	if err := json.Unmarshal(i.ProposedSlots, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// EncodeSlots serialises slots for the proposed slots column.
func EncodeSlots(slots []InterviewSlot) (datatypes.JSON, error) {
	if len(slots) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// ActiveInterviewStates lists the states counted as live for a pair.
func ActiveInterviewStates() []string {
	return []string{InterviewStateProposed, InterviewStateScheduled, InterviewStateRescheduled}
}
