package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/middleware"
	"github.com/sergiovidalh/recluta/internal/models"
	"github.com/sergiovidalh/recluta/internal/services"
	appErrors "github.com/sergiovidalh/recluta/pkg/errors"
	"github.com/sergiovidalh/recluta/pkg/response"
)

// InterviewHandler exposes the interview scheduling lifecycle.
type InterviewHandler struct {
	interviews *services.InterviewService
	hiring     *services.HiringService
}

// NewInterviewHandler constructs an interview handler.
func NewInterviewHandler(db *gorm.DB, hiring *services.HiringService) (*InterviewHandler, error) {
	interviews, err := services.NewInterviewService(db)
	if err != nil {
		return nil, err
	}
	return &InterviewHandler{interviews: interviews, hiring: hiring}, nil
}

type createInterviewRequest struct {
	VacancyID   string `json:"vacancy_id" validate:"required"`
	CandidateID string `json:"candidate_id" validate:"required"`
	StageID     string `json:"stage_id"`
	Type        string `json:"type" validate:"required"`
	Modality    string `json:"modality" validate:"required"`
	Mode        string `json:"mode" validate:"required,oneof=schedule propose"`

	StartAt         *time.Time             `json:"start_at"`
	DurationMinutes int                    `json:"duration_minutes"`
	Slots           []models.InterviewSlot `json:"slots"`

	Location    string `json:"location" validate:"max=256"`
	MeetingLink string `json:"meeting_link" validate:"max=512"`
	Notes       string `json:"notes"`
}

// Create schedules an interview directly or opens a slot proposal.
func (h *InterviewHandler) Create(c *gin.Context) {
	var payload createInterviewRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	input := services.CreateInterviewInput{
		VacancyID:       payload.VacancyID,
		CandidateID:     payload.CandidateID,
		StageID:         payload.StageID,
		Type:            payload.Type,
		Modality:        payload.Modality,
		Mode:            payload.Mode,
		DurationMinutes: payload.DurationMinutes,
		Slots:           payload.Slots,
		Location:        payload.Location,
		MeetingLink:     payload.MeetingLink,
		Notes:           payload.Notes,
		Actor:           c.GetString(middleware.CtxUserIDKey),
	}
	if payload.StartAt != nil {
		input.StartAt = *payload.StartAt
	}

	interview, err := h.hiring.CreateInterview(requestContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, interview)
}

// Get returns a single interview.
func (h *InterviewHandler) Get(c *gin.Context) {
	interview, err := h.interviews.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, interview)
}

// List returns interviews for a vacancy, optionally narrowed to one candidate.
func (h *InterviewHandler) List(c *gin.Context) {
	vacancyID := strings.TrimSpace(c.Query("vacancy_id"))
	if vacancyID == "" {
		response.Error(c, appErrors.NewValidation("vacancy_id is required"))
		return
	}

	candidateID := strings.TrimSpace(c.Query("candidate_id"))

	var (
		items []models.Interview
		err   error
	)
	if candidateID != "" {
		items, err = h.interviews.ListForPair(requestContext(c), vacancyID, candidateID)
	} else {
		items, err = h.interviews.ListForVacancy(requestContext(c), vacancyID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

type confirmSlotRequest struct {
	Slot models.InterviewSlot `json:"slot" validate:"required"`
}

// ConfirmSlot accepts one proposed slot and fixes the interview schedule.
func (h *InterviewHandler) ConfirmSlot(c *gin.Context) {
	var payload confirmSlotRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	interview, err := h.hiring.ConfirmSlot(requestContext(c),
		strings.TrimSpace(c.Param("id")), payload.Slot, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, interview)
}

type rescheduleRequest struct {
	StartAt time.Time `json:"start_at" validate:"required"`
	EndAt   time.Time `json:"end_at" validate:"required"`
}

// Reschedule moves a confirmed interview to a new time window.
func (h *InterviewHandler) Reschedule(c *gin.Context) {
	var payload rescheduleRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	interview, err := h.hiring.RescheduleInterview(requestContext(c),
		strings.TrimSpace(c.Param("id")), payload.StartAt, payload.EndAt, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, interview)
}

type cancelInterviewRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Cancel terminates an interview in any live state.
func (h *InterviewHandler) Cancel(c *gin.Context) {
	var payload cancelInterviewRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	interview, err := h.hiring.CancelInterview(requestContext(c),
		strings.TrimSpace(c.Param("id")), payload.Reason, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, interview)
}

type completeInterviewRequest struct {
	Notes string `json:"notes"`
}

// Complete marks a scheduled interview as held.
func (h *InterviewHandler) Complete(c *gin.Context) {
	var payload completeInterviewRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	interview, err := h.hiring.CompleteInterview(requestContext(c),
		strings.TrimSpace(c.Param("id")), payload.Notes, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, interview)
}

// Delete removes an interview record outright.
func (h *InterviewHandler) Delete(c *gin.Context) {
	if err := h.hiring.DeleteInterview(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
