package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sergiovidalh/recluta/internal/models"
)

// fixture is the minimal graph most service tests need: a client org with one
// member, a recruiter, a candidate linked to a login and an application
// sitting at the seeded entry stage.
type fixture struct {
	Org           models.ClientOrg
	ClientUser    models.User
	Recruiter     models.User
	CandidateUser models.User
	Candidate     models.Candidate
	Vacancy       models.Vacancy
	Application   models.Application
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{}

	f.Org = models.ClientOrg{Name: "Acme Corp"}
	require.NoError(t, db.Create(&f.Org).Error)

	f.ClientUser = models.User{
		Username:    "acme-hr",
		Email:       "hr@acme.test",
		Password:    "irrelevant",
		IsActive:    true,
		ClientOrgID: &f.Org.ID,
	}
	require.NoError(t, db.Create(&f.ClientUser).Error)

	f.Recruiter = models.User{
		Username: "recruiter",
		Email:    "recruiter@recluta.test",
		Password: "irrelevant",
		IsActive: true,
	}
	require.NoError(t, db.Create(&f.Recruiter).Error)

	f.CandidateUser = models.User{
		Username: "jane",
		Email:    "jane@example.test",
		Password: "irrelevant",
		IsActive: true,
	}
	require.NoError(t, db.Create(&f.CandidateUser).Error)

	f.Candidate = models.Candidate{
		FullName: "Jane Doe",
		Email:    "jane@example.test",
		UserID:   &f.CandidateUser.ID,
	}
	require.NoError(t, db.Create(&f.Candidate).Error)

	f.Vacancy = models.Vacancy{
		Title:       "Backend Engineer",
		Status:      "open",
		ClientOrgID: f.Org.ID,
		RecruiterID: f.Recruiter.ID,
	}
	require.NoError(t, db.Create(&f.Vacancy).Error)

	now := time.Now().UTC()
	f.Application = models.Application{
		CandidateID:    f.Candidate.ID,
		VacancyID:      f.Vacancy.ID,
		StageID:        "stage-applied",
		AppliedAt:      now,
		StageUpdatedAt: now,
	}
	require.NoError(t, db.Create(&f.Application).Error)

	entry := models.StageHistoryEntry{
		ApplicationID: f.Application.ID,
		StageID:       f.Application.StageID,
		StartedAt:     now,
	}
	require.NoError(t, db.Create(&entry).Error)

	return f
}

func testContext() context.Context {
	return context.Background()
}
