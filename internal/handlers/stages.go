package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/services"
	"github.com/sergiovidalh/recluta/pkg/response"
)

// StageHandler administers the global hiring funnel.
type StageHandler struct {
	service *services.StageService
}

// NewStageHandler constructs a stage handler.
func NewStageHandler(db *gorm.DB) (*StageHandler, error) {
	service, err := services.NewStageService(db)
	if err != nil {
		return nil, err
	}
	return &StageHandler{service: service}, nil
}

// List returns all funnel stages ordered by position.
func (h *StageHandler) List(c *gin.Context) {
	stages, err := h.service.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stages)
}

type stageRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Order   int    `json:"order"`
	Kind    string `json:"kind" validate:"required"`
	IsFinal bool   `json:"is_final"`
	Color   string `json:"color" validate:"max=32"`
}

// Create adds a new funnel stage.
func (h *StageHandler) Create(c *gin.Context) {
	var payload stageRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	stage, err := h.service.Create(requestContext(c), services.StageInput{
		Name:    payload.Name,
		Order:   payload.Order,
		Kind:    payload.Kind,
		IsFinal: payload.IsFinal,
		Color:   payload.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, stage)
}

// Update modifies an existing stage.
func (h *StageHandler) Update(c *gin.Context) {
	var payload stageRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	stage, err := h.service.Update(requestContext(c), strings.TrimSpace(c.Param("id")), services.StageInput{
		Name:    payload.Name,
		Order:   payload.Order,
		Kind:    payload.Kind,
		IsFinal: payload.IsFinal,
		Color:   payload.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stage)
}

// Delete removes a stage that no application references.
func (h *StageHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(requestContext(c), strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
