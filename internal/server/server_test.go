package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gigmatch/config"
	"gigmatch/internal/api/middleware"
	"gigmatch/internal/app"
	"gigmatch/internal/events"
	"gigmatch/internal/geo"
	"gigmatch/internal/server"
	"gigmatch/internal/storage/memory"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "e2e-secret"

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) call(method, path string, userID uuid.UUID, body interface{}, out interface{}) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		token, err := middleware.IssueToken(secret, userID, time.Hour)
		require.NoError(c.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func newTestServer(t *testing.T) (client, *events.Recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Cleanup(zap.ReplaceGlobals(zap.NewNop()))

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		JWT:    config.JWTConfig{Secret: secret},
		Geo:    config.GeoConfig{DefaultRadiusKm: 10},
		Ledger: config.LedgerConfig{FeeRate: "0.15", MinWithdrawal: 100},
	}
	rec := events.NewRecorder()
	application, err := app.NewWithBackends(cfg, memory.New(), geo.NewMemoryIndex(), rec)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	return client{t: t, handler: server.NewServer(application).Handler()}, rec
}

func TestServer_JobLifecycle(t *testing.T) {
	c, rec := newTestServer(t)
	hirerID, providerID := uuid.New(), uuid.New()
	home := gin.H{"latitude": 12.9716, "longitude": 77.5946}

	var health map[string]string
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/health", uuid.Nil, nil, &health))
	assert.Equal(t, "ok", health["status"])

	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/v1/users", hirerID,
		gin.H{"phone": "+919800000001", "name": "Meera", "role": "hirer"}, nil))
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/v1/users", providerID,
		gin.H{"phone": "+919800000002", "name": "Ravi", "role": "provider", "skills": []string{"plumbing"}, "coordinates": home}, nil))

	var job struct {
		ID            uuid.UUID `json:"id"`
		Status        string    `json:"status"`
		CompletionPin string    `json:"completionPin"`
	}
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/v1/jobs", hirerID, gin.H{
		"title": "Fix kitchen sink", "description": "Leaking under the counter", "category": "plumbing",
		"budget": 2500, "budgetType": "fixed", "location": "Indiranagar",
		"coordinates": gin.H{"latitude": 12.9816, "longitude": 77.5946},
	}, &job))
	require.Len(t, job.CompletionPin, 4)
	jobPath := "/api/v1/jobs/" + job.ID.String()

	var nearby []map[string]interface{}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/jobs/nearby", providerID, nil, &nearby))
	require.Len(t, nearby, 1)
	assert.NotContains(t, nearby[0], "completionPin")

	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, jobPath+"/applications", providerID, gin.H{"message": "Can come today"}, nil))
	var errBody map[string]string
	assert.Equal(t, http.StatusConflict, c.call(http.MethodPost, jobPath+"/applications", providerID, nil, &errBody))
	assert.Equal(t, "DUPLICATE_APPLICATION", errBody["code"])

	require.Equal(t, http.StatusOK, c.call(http.MethodPost, jobPath+"/applications/"+providerID.String()+"/accept", hirerID, nil, &job))
	assert.Equal(t, "assigned", job.Status)

	require.Equal(t, http.StatusOK, c.call(http.MethodPost, jobPath+"/start", providerID, nil, nil))

	wrong := "1000"
	if job.CompletionPin == wrong {
		wrong = "1001"
	}
	assert.Equal(t, http.StatusBadRequest, c.call(http.MethodPost, jobPath+"/complete", providerID, gin.H{"pin": wrong}, &errBody))
	assert.Equal(t, "INVALID_PIN", errBody["code"])
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, jobPath+"/complete", providerID, gin.H{"pin": job.CompletionPin}, nil))

	var summary map[string]int64
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/ledger/summary", providerID, nil, &summary))
	assert.Equal(t, int64(2125), summary["total"])
	assert.Equal(t, int64(2125), summary["availableForWithdrawal"])

	var withdrawal map[string]interface{}
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/v1/ledger/withdrawals", providerID, nil, &withdrawal))
	assert.Equal(t, 2125.0, withdrawal["amount"])
	assert.Equal(t, 0.0, withdrawal["remainingBalance"])

	assert.Equal(t, http.StatusBadRequest, c.call(http.MethodPost, "/api/v1/ledger/withdrawals", providerID, nil, &errBody))
	assert.Equal(t, "BELOW_MINIMUM", errBody["code"])

	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, jobPath+"/reviews", hirerID, gin.H{"rating": 5, "tags": []string{"punctual"}}, nil))
	var stats map[string]interface{}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/users/"+providerID.String()+"/review-stats", hirerID, nil, &stats))
	assert.Equal(t, 1.0, stats["totalReviews"])

	assert.Subset(t, rec.Types(), []string{
		events.JobCreated, events.ApplicationCreated, events.JobAssigned, events.JobStarted,
		events.JobCompleted, events.LedgerRecorded, events.WithdrawalRequested,
	})
}

func TestServer_RequiresToken(t *testing.T) {
	c, _ := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusUnauthorized, c.call(http.MethodGet, "/api/v1/jobs", uuid.Nil, nil, &body))
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}
