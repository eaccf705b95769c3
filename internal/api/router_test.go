package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/sergiovidalh/recluta/internal/app"
	iauth "github.com/sergiovidalh/recluta/internal/auth"
	"github.com/sergiovidalh/recluta/internal/database/testutil"
	"github.com/sergiovidalh/recluta/internal/realtime"
	"github.com/sergiovidalh/recluta/internal/services"
	"github.com/sergiovidalh/recluta/pkg/response"
)

func newTestRouter(t *testing.T) (*gin.Engine, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "test"})
	require.NoError(t, err)

	hub := realtime.NewHub()
	hiring, err := services.NewHiringService(db, hub)
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Monitoring.Health.Enabled = true
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Prometheus.Endpoint = "/metrics"

	router, err := NewRouter(db, jwtSvc, cfg, hub, hiring)
	require.NoError(t, err)
	return router, jwtSvc
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var payload response.Response
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	}
	return recorder, payload
}

func dataField(t *testing.T, payload response.Response, key string) string {
	t.Helper()
	data, ok := payload.Data.(map[string]any)
	require.True(t, ok, "data is not an object")
	value, _ := data[key].(string)
	return value
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/stages", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterHiringFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	// Register and login.
	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "recruiter",
		"email":    "recruiter@recluta.test",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "recruiter",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := dataField(t, payload, "access_token")
	require.NotEmpty(t, token)

	// Set up the directory.
	rec, payload = doJSON(t, router, http.MethodPost, "/api/client-orgs", token, gin.H{
		"name": "Acme Corp",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	orgID := dataField(t, payload, "id")

	rec, payload = doJSON(t, router, http.MethodPost, "/api/candidates", token, gin.H{
		"full_name": "Jane Doe",
		"email":     "jane@example.test",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	candidateID := dataField(t, payload, "id")

	rec, payload = doJSON(t, router, http.MethodPost, "/api/vacancies", token, gin.H{
		"title":         "Backend Engineer",
		"client_org_id": orgID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	vacancyID := dataField(t, payload, "id")

	// Intake and move through the funnel.
	rec, payload = doJSON(t, router, http.MethodPost, "/api/applications", token, gin.H{
		"candidate_id": candidateID,
		"vacancy_id":   vacancyID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	applicationID := dataField(t, payload, "id")
	require.Equal(t, "stage-applied", dataField(t, payload, "stage_id"))

	rec, payload = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/applications/%s/move", applicationID), token, gin.H{
			"target_stage_id": "stage-screening",
		})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "stage-screening", dataField(t, payload, "stage_id"))

	// Repeating the same move is rejected as a no-op.
	rec, payload = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/applications/%s/move", applicationID), token, gin.H{
			"target_stage_id": "stage-screening",
		})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, payload.Success)

	// History shows both steps.
	rec, payload = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/applications/%s/history", applicationID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries, ok := payload.Data.([]any)
	require.True(t, ok)
	require.Len(t, entries, 2)

	// Board excludes discarded applications.
	rec, _ = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/applications/%s/discard", applicationID), token, gin.H{
			"reason": "budget cut",
		})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload = doJSON(t, router, http.MethodGet,
		"/api/applications?vacancy_id="+vacancyID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	columns, ok := payload.Data.([]any)
	require.True(t, ok)
	for _, raw := range columns {
		column, ok := raw.(map[string]any)
		require.True(t, ok)
		apps, _ := column["applications"].([]any)
		require.Empty(t, apps)
	}
}

func TestRouterInterviewFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "recruiter",
		"email":    "recruiter@recluta.test",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "recruiter",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := dataField(t, payload, "access_token")

	rec, payload = doJSON(t, router, http.MethodPost, "/api/client-orgs", token, gin.H{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	orgID := dataField(t, payload, "id")

	rec, payload = doJSON(t, router, http.MethodPost, "/api/candidates", token, gin.H{"full_name": "Jane Doe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	candidateID := dataField(t, payload, "id")

	rec, payload = doJSON(t, router, http.MethodPost, "/api/vacancies", token, gin.H{
		"title":         "Backend Engineer",
		"client_org_id": orgID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	vacancyID := dataField(t, payload, "id")

	// Propose two slots.
	rec, payload = doJSON(t, router, http.MethodPost, "/api/interviews", token, gin.H{
		"vacancy_id":   vacancyID,
		"candidate_id": candidateID,
		"type":         "technical",
		"modality":     "online",
		"mode":         "propose",
		"slots": []gin.H{
			{"start": "2026-10-05T09:00:00Z", "end": "2026-10-05T10:00:00Z"},
			{"start": "2026-10-06T09:00:00Z", "end": "2026-10-06T10:00:00Z"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	interviewID := dataField(t, payload, "id")
	require.Equal(t, "propuesta", dataField(t, payload, "state"))

	// Confirm the second slot.
	rec, payload = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/interviews/%s/confirm-slot", interviewID), token, gin.H{
			"slot": gin.H{"start": "2026-10-06T09:00:00Z", "end": "2026-10-06T10:00:00Z"},
		})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "programada", dataField(t, payload, "state"))

	// Cancel and verify terminal rejection on repeat.
	rec, payload = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/interviews/%s/cancel", interviewID), token, gin.H{
			"reason": "role closed",
		})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "cancelada", dataField(t, payload, "state"))

	rec, _ = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/interviews/%s/cancel", interviewID), token, gin.H{
			"reason": "again",
		})
	require.Equal(t, http.StatusConflict, rec.Code)
}
