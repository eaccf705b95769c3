package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/middleware"
	"github.com/sergiovidalh/recluta/internal/services"
	"github.com/sergiovidalh/recluta/pkg/response"
)

// DirectoryHandler exposes candidate, vacancy and client org management.
type DirectoryHandler struct {
	service *services.DirectoryService
}

// NewDirectoryHandler constructs a directory handler.
func NewDirectoryHandler(db *gorm.DB) (*DirectoryHandler, error) {
	service, err := services.NewDirectoryService(db)
	if err != nil {
		return nil, err
	}
	return &DirectoryHandler{service: service}, nil
}

type createCandidateRequest struct {
	FullName string  `json:"full_name" validate:"required,max=256"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Phone    string  `json:"phone" validate:"max=64"`
	UserID   *string `json:"user_id"`
}

// CreateCandidate registers a candidate profile.
func (h *DirectoryHandler) CreateCandidate(c *gin.Context) {
	var payload createCandidateRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	candidate, err := h.service.CreateCandidate(requestContext(c), services.CreateCandidateInput{
		FullName: payload.FullName,
		Email:    payload.Email,
		Phone:    payload.Phone,
		UserID:   payload.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, candidate)
}

// GetCandidate returns a single candidate.
func (h *DirectoryHandler) GetCandidate(c *gin.Context) {
	candidate, err := h.service.GetCandidate(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, candidate)
}

// ListCandidates returns all candidates.
func (h *DirectoryHandler) ListCandidates(c *gin.Context) {
	candidates, err := h.service.ListCandidates(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, candidates)
}

type linkCandidateRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// LinkCandidateUser attaches a login profile to a candidate.
func (h *DirectoryHandler) LinkCandidateUser(c *gin.Context) {
	var payload linkCandidateRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	candidate, err := h.service.LinkCandidateUser(requestContext(c),
		strings.TrimSpace(c.Param("id")), payload.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, candidate)
}

type createVacancyRequest struct {
	Title       string `json:"title" validate:"required,max=256"`
	Description string `json:"description"`
	Location    string `json:"location" validate:"max=256"`
	ClientOrgID string `json:"client_org_id" validate:"required"`
	RecruiterID string `json:"recruiter_id"`
}

// CreateVacancy opens a position. The recruiter defaults to the caller.
func (h *DirectoryHandler) CreateVacancy(c *gin.Context) {
	var payload createVacancyRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	recruiterID := strings.TrimSpace(payload.RecruiterID)
	if recruiterID == "" {
		recruiterID = c.GetString(middleware.CtxUserIDKey)
	}

	vacancy, err := h.service.CreateVacancy(requestContext(c), services.CreateVacancyInput{
		Title:       payload.Title,
		Description: payload.Description,
		Location:    payload.Location,
		ClientOrgID: payload.ClientOrgID,
		RecruiterID: recruiterID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, vacancy)
}

// GetVacancy returns a single vacancy with its org and recruiter.
func (h *DirectoryHandler) GetVacancy(c *gin.Context) {
	vacancy, err := h.service.GetVacancy(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vacancy)
}

// ListVacancies returns vacancies, optionally filtered by client org.
func (h *DirectoryHandler) ListVacancies(c *gin.Context) {
	vacancies, err := h.service.ListVacancies(requestContext(c), strings.TrimSpace(c.Query("client_org_id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vacancies)
}

type createClientOrgRequest struct {
	Name         string `json:"name" validate:"required,max=256"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	Website      string `json:"website" validate:"max=512"`
}

// CreateClientOrg registers a hiring company.
func (h *DirectoryHandler) CreateClientOrg(c *gin.Context) {
	var payload createClientOrgRequest
	if !bindAndValidate(c, &payload) {
		return
	}

	org, err := h.service.CreateClientOrg(requestContext(c), services.CreateClientOrgInput{
		Name:         payload.Name,
		ContactEmail: payload.ContactEmail,
		Website:      payload.Website,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, org)
}

// ListClientOrgs returns all client organisations.
func (h *DirectoryHandler) ListClientOrgs(c *gin.Context) {
	orgs, err := h.service.ListClientOrgs(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, orgs)
}
