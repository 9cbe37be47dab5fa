package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"opsdeck/internal/config"
	"opsdeck/internal/models"
	"opsdeck/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := models.New(gormDB)
	require.NoError(t, db.AutoMigrate())

	cfg := &config.Config{
		Port:        0,
		JWTSecret:   "test-secret",
		JWTExpiry:   time.Hour,
		FrontendURL: "http://localhost:3000",
	}
	s := New(cfg, db, logger.NewDiscardLogger())
	srv := httptest.NewServer(s.RegisterRoutes())
	t.Cleanup(func() {
		srv.Close()
		_ = db.Close()
	})
	return srv
}

// call issues a JSON request and decodes the JSON response body.
func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func registerTestOwner(t *testing.T, srv *httptest.Server, email string) (token, workspaceID string) {
	t.Helper()
	status, body := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":          email,
		"password":       "hunter2hunter2",
		"workspace_name": "Shear Genius",
	})
	require.Equal(t, http.StatusCreated, status)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	workspace := body["workspace"].(map[string]interface{})
	return token, workspace["id"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerTestOwner(t, srv, "owner@example.com")

	status, body := call(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "owner@example.com", body["email"])

	status, body = call(t, srv, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Missing or invalid authorization", body["error"])

	status, body = call(t, srv, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body["error"])

	status, _ = call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "owner@example.com",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusOK, status)

	status, body = call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "owner@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", body["error"])
}

func TestWorkspaceMembershipEnforced(t *testing.T) {
	srv := newTestServer(t)
	tokenA, _ := registerTestOwner(t, srv, "a@example.com")
	_, workspaceB := registerTestOwner(t, srv, "b@example.com")

	status, body := call(t, srv, http.MethodGet, "/api/workspaces/"+workspaceB, tokenA, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied to this workspace", body["error"])
}

func TestStaffCannotManageIntegrations(t *testing.T) {
	srv := newTestServer(t)
	ownerToken, workspaceID := registerTestOwner(t, srv, "owner@example.com")

	status, _ := call(t, srv, http.MethodPost, "/api/workspaces/"+workspaceID+"/staff", ownerToken, map[string]interface{}{
		"email":    "staff@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "staff@example.com",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, status)
	staffToken := body["token"].(string)

	status, body = call(t, srv, http.MethodPost, "/api/workspaces/"+workspaceID+"/integrations/sms", staffToken, map[string]interface{}{
		"provider": "twilio",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Insufficient permissions", body["error"])
}

func TestPublicBookingFlow(t *testing.T) {
	srv := newTestServer(t)
	token, workspaceID := registerTestOwner(t, srv, "owner@example.com")

	// Bookings stay closed while the workspace is draft.
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	status, body := call(t, srv, http.MethodPost, "/api/public/booking/"+workspaceID, "", map[string]interface{}{
		"booking_type_id": "2e9b1cdd-1111-4222-8333-444455556666",
		"scheduled_at":    at.Format(time.RFC3339),
		"name":            "Ada",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Bookings are not open", body["error"])

	// Owner setup: channel, booking type, availability, activate.
	status, _ = call(t, srv, http.MethodPost, "/api/workspaces/"+workspaceID+"/integrations/sms", token, map[string]interface{}{
		"provider":    "twilio",
		"account_sid": "AC_test",
		"auth_token":  "tok_test",
		"from_number": "+15550000",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = call(t, srv, http.MethodPost, "/api/bookings/"+workspaceID+"/booking-types", token, map[string]interface{}{
		"name":             "Haircut",
		"duration_minutes": 30,
	})
	require.Equal(t, http.StatusCreated, status)
	bookingTypeID := body["id"].(string)

	status, _ = call(t, srv, http.MethodPut, "/api/bookings/"+workspaceID+"/availability", token, map[string]interface{}{
		"slots": []map[string]interface{}{
			{"day_of_week": 1, "start_time": "09:00", "end_time": "10:00"},
		},
	})
	require.Equal(t, http.StatusOK, status)

	status, body = call(t, srv, http.MethodGet, "/api/workspaces/"+workspaceID+"/onboarding", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["canActivate"])

	status, body = call(t, srv, http.MethodPost, "/api/workspaces/"+workspaceID+"/activate", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "active", body["status"])

	// Customer surface: slots, then the booking itself.
	status, body = call(t, srv, http.MethodGet,
		"/api/public/booking/"+workspaceID+"/slots?bookingTypeId="+bookingTypeID+"&date=2026-01-05", "", nil)
	require.Equal(t, http.StatusOK, status)
	slots := body["slots"].([]interface{})
	assert.Len(t, slots, 2)

	status, _ = call(t, srv, http.MethodGet, "/api/public/booking/"+workspaceID+"/slots?date=2026-01-05", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Book with an email address only: no email integration is connected,
	// so confirmation delivery is skipped without failing the booking.
	status, body = call(t, srv, http.MethodPost, "/api/public/booking/"+workspaceID, "", map[string]interface{}{
		"booking_type_id": bookingTypeID,
		"scheduled_at":    at.Format(time.RFC3339),
		"name":            "Ada",
		"email":           "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	bookingID := body["bookingId"].(string)

	// The slot is gone.
	status, body = call(t, srv, http.MethodPost, "/api/public/booking/"+workspaceID, "", map[string]interface{}{
		"booking_type_id": bookingTypeID,
		"scheduled_at":    at.Format(time.RFC3339),
		"name":            "Grace",
		"email":           "grace@example.com",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "That time is no longer available", body["error"])

	status, body = call(t, srv, http.MethodGet,
		"/api/public/booking/"+workspaceID+"/slots?bookingTypeId="+bookingTypeID+"&date=2026-01-05", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["slots"].([]interface{}), 1)

	// Staff can move the booking through any status.
	status, body = call(t, srv, http.MethodPatch,
		fmt.Sprintf("/api/bookings/%s/bookings/%s/status", workspaceID, bookingID), token,
		map[string]interface{}{"status": "completed"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "completed", body["status"])
}

func TestPublicContactFormFlow(t *testing.T) {
	srv := newTestServer(t)
	token, workspaceID := registerTestOwner(t, srv, "owner@example.com")

	status, body := call(t, srv, http.MethodGet, "/api/public/contact-form/"+workspaceID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Form not found", body["error"])

	status, _ = call(t, srv, http.MethodPut, "/api/workspaces/"+workspaceID+"/contact-form", token, map[string]interface{}{
		"name": "Get in touch",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = call(t, srv, http.MethodGet, "/api/public/contact-form/"+workspaceID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Get in touch", body["formName"])

	status, body = call(t, srv, http.MethodPost, "/api/public/contact-form/"+workspaceID+"/submit", "", map[string]interface{}{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "Do you take walk-ins?",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["contactId"])

	// The submission landed in the inbox.
	status, body = call(t, srv, http.MethodGet, "/api/dashboard/"+workspaceID+"/nav-counts", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["inbox"])
}
