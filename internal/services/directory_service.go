package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/models"
	apperrors "github.com/sergiovidalh/recluta/pkg/errors"
)

// CreateCandidateInput defines attributes for a new candidate.
type CreateCandidateInput struct {
	FullName string
	Email    string
	Phone    string
	UserID   *string
}

// CreateVacancyInput defines attributes for a new vacancy.
type CreateVacancyInput struct {
	Title       string
	Description string
	Location    string
	ClientOrgID string
	RecruiterID string
}

// CreateClientOrgInput defines attributes for a new client organisation.
type CreateClientOrgInput struct {
	Name         string
	ContactEmail string
	Website      string
}

// DirectoryService manages the supporting entities applications and
// interviews hang off: candidates, vacancies and client organisations.
type DirectoryService struct {
	db *gorm.DB
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(db *gorm.DB) (*DirectoryService, error) {
	if db == nil {
		return nil, errors.New("directory service: db is required")
	}
	return &DirectoryService{db: db}, nil
}

// CreateCandidate registers a candidate profile.
func (s *DirectoryService) CreateCandidate(ctx context.Context, input CreateCandidateInput) (*models.Candidate, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return nil, apperrors.NewValidation("full_name is required")
	}

	if input.UserID != nil {
		if err := s.requireUser(ctx, *input.UserID); err != nil {
			return nil, err
		}
	}

	candidate := models.Candidate{
		FullName: name,
		Email:    strings.TrimSpace(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
		UserID:   input.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("directory service: create candidate: %w", err)
	}
	return &candidate, nil
}

// LinkCandidateUser attaches a login profile to a candidate so candidate
// notifications can reach an inbox.
func (s *DirectoryService) LinkCandidateUser(ctx context.Context, candidateID, userID string) (*models.Candidate, error) {
	ctx = ensureContext(ctx)

	candidate, err := s.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(candidate).Update("user_id", userID).Error; err != nil {
		return nil, fmt.Errorf("directory service: link candidate user: %w", err)
	}
	candidate.UserID = &userID
	return candidate, nil
}

// GetCandidate loads a candidate by id.
func (s *DirectoryService) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	ctx = ensureContext(ctx)

	var candidate models.Candidate
	if err := s.db.WithContext(ctx).First(&candidate, "id = ?", candidateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("directory service: load candidate: %w", err)
	}
	return &candidate, nil
}

// ListCandidates returns every candidate ordered alphabetically.
func (s *DirectoryService) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	ctx = ensureContext(ctx)

	var rows []models.Candidate
	if err := s.db.WithContext(ctx).Order("full_name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("directory service: list candidates: %w", err)
	}
	return rows, nil
}

// CreateVacancy opens a position under a client organisation.
func (s *DirectoryService) CreateVacancy(ctx context.Context, input CreateVacancyInput) (*models.Vacancy, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidation("title is required")
	}

	if err := s.requireClientOrg(ctx, input.ClientOrgID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, input.RecruiterID); err != nil {
		return nil, err
	}

	vacancy := models.Vacancy{
		Title:       title,
		Description: input.Description,
		Location:    strings.TrimSpace(input.Location),
		Status:      "open",
		ClientOrgID: input.ClientOrgID,
		RecruiterID: input.RecruiterID,
	}
	if err := s.db.WithContext(ctx).Create(&vacancy).Error; err != nil {
		return nil, fmt.Errorf("directory service: create vacancy: %w", err)
	}
	return &vacancy, nil
}

// GetVacancy loads a vacancy with its client organisation and recruiter.
func (s *DirectoryService) GetVacancy(ctx context.Context, vacancyID string) (*models.Vacancy, error) {
	ctx = ensureContext(ctx)

	var vacancy models.Vacancy
	if err := s.db.WithContext(ctx).
		Preload("ClientOrg").
		Preload("Recruiter").
		First(&vacancy, "id = ?", vacancyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("directory service: load vacancy: %w", err)
	}
	return &vacancy, nil
}

// ListVacancies returns vacancies, optionally filtered by client organisation.
func (s *DirectoryService) ListVacancies(ctx context.Context, clientOrgID string) ([]models.Vacancy, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Order("created_at DESC")
	if clientOrgID != "" {
		query = query.Where("client_org_id = ?", clientOrgID)
	}

	var rows []models.Vacancy
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("directory service: list vacancies: %w", err)
	}
	return rows, nil
}

// CreateClientOrg registers a hiring company.
func (s *DirectoryService) CreateClientOrg(ctx context.Context, input CreateClientOrgInput) (*models.ClientOrg, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("name is required")
	}

	org := models.ClientOrg{
		Name:         name,
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Website:      strings.TrimSpace(input.Website),
	}
	if err := s.db.WithContext(ctx).Create(&org).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.New("client_org.exists", "A client organisation with that name already exists", 409)
		}
		return nil, fmt.Errorf("directory service: create client org: %w", err)
	}
	return &org, nil
}

// ListClientOrgs returns every client organisation ordered alphabetically.
func (s *DirectoryService) ListClientOrgs(ctx context.Context) ([]models.ClientOrg, error) {
	ctx = ensureContext(ctx)

	var rows []models.ClientOrg
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("directory service: list client orgs: %w", err)
	}
	return rows, nil
}

func (s *DirectoryService) requireUser(ctx context.Context, userID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("directory service: check user: %w", err)
	}
	if count == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *DirectoryService) requireClientOrg(ctx context.Context, orgID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ClientOrg{}).Where("id = ?", orgID).Count(&count).Error; err != nil {
		return fmt.Errorf("directory service: check client org: %w", err)
	}
	if count == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
