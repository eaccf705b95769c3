package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/middleware"
	"github.com/sergiovidalh/recluta/internal/services"
	appErrors "github.com/sergiovidalh/recluta/pkg/errors"
	"github.com/sergiovidalh/recluta/pkg/response"
)

// ApplicationHandler exposes application intake, board reads and the
// stage-transition operations.
type ApplicationHandler struct {
	applications *services.ApplicationService
	hiring       *services.HiringService
}

// NewApplicationHandler constructs an application handler.
func NewApplicationHandler(db *gorm.DB, hiring *services.HiringService) (*ApplicationHandler, error) {
	stages, err := services.NewStageService(db)
	if err != nil {
		return nil, err
	}
	applications, err := services.NewApplicationService(db, stages)
	if err != nil {
		return nil, err
	}
	return &ApplicationHandler{applications: applications, hiring: hiring}, nil
}

type createApplicationRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
	VacancyID   string `json:"vacancy_id" validate:"required"`
}

// Create registers a candidate on a vacancy at the entry stage.
func (h *ApplicationHandler) Create(c *gin.Context) {
	var payload createApplicationRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	application, err := h.applications.Create(requestContext(c), services.CreateApplicationInput{
		CandidateID: payload.CandidateID,
		VacancyID:   payload.VacancyID,
		Actor:       c.GetString(middleware.CtxUserIDKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, application)
}

// Get returns a single application with its candidate, vacancy and stage.
func (h *ApplicationHandler) Get(c *gin.Context) {
	application, err := h.applications.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, application)
}

// Board returns the per-stage columns for a vacancy.
func (h *ApplicationHandler) Board(c *gin.Context) {
	vacancyID := strings.TrimSpace(c.Query("vacancy_id"))
	if vacancyID == "" {
		response.Error(c, appErrors.NewValidation("vacancy_id is required"))
		return
	}

	columns, err := h.applications.Board(requestContext(c), vacancyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, columns)
}

// History returns the stage history of an application, oldest first.
func (h *ApplicationHandler) History(c *gin.Context) {
	entries, err := h.applications.History(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

type moveApplicationRequest struct {
	TargetStageID string `json:"target_stage_id" validate:"required"`
}

// Move transitions an application to another funnel stage.
func (h *ApplicationHandler) Move(c *gin.Context) {
	var payload moveApplicationRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	application, err := h.hiring.MoveApplication(requestContext(c), services.MoveApplicationInput{
		ApplicationID: strings.TrimSpace(c.Param("id")),
		TargetStageID: payload.TargetStageID,
		Actor:         c.GetString(middleware.CtxUserIDKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, application)
}

type discardApplicationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Discard flags an application as discarded without moving its stage.
func (h *ApplicationHandler) Discard(c *gin.Context) {
	var payload discardApplicationRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	application, err := h.hiring.DiscardApplication(requestContext(c),
		strings.TrimSpace(c.Param("id")), payload.Reason, c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, application)
}

// Restore clears the discarded flag of an application.
func (h *ApplicationHandler) Restore(c *gin.Context) {
	application, err := h.hiring.RestoreApplication(requestContext(c),
		strings.TrimSpace(c.Param("id")), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, application)
}
