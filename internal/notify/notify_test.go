package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"opsdeck/internal/models"
	"opsdeck/pkg/logger"
)

func newTestDB(t *testing.T) *models.DB {
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
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func connectEmail(t *testing.T, db *models.DB, workspaceID uuid.UUID) {
	t.Helper()
	_, err := db.Integrations.Upsert(workspaceID, "email", models.JSONB{
		"provider":   "resend",
		"api_key":    "re_test",
		"from_email": "hello@sheargenius.com",
	})
	require.NoError(t, err)
}

func connectSMS(t *testing.T, db *models.DB, workspaceID uuid.UUID) {
	t.Helper()
	_, err := db.Integrations.Upsert(workspaceID, "sms", models.JSONB{
		"provider":    "twilio",
		"account_sid": "AC_test",
		"auth_token":  "tok_test",
		"from_number": "+15550000",
	})
	require.NoError(t, err)
}

func TestSendEmail(t *testing.T) {
	db := newTestDB(t)
	ws := &models.Workspace{Name: "Shear Genius", Timezone: "UTC", Status: models.StatusActive}
	require.NoError(t, db.Workspaces.Create(ws))
	connectEmail(t, db, ws.ID)

	var captured struct {
		From    string   `json:"from"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		HTML    string   `json:"html"`
	}
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_abc123"}`))
	}))
	defer srv.Close()

	n := NewNotifier(db, logger.NewDiscardLogger())
	n.ResendBaseURL = srv.URL

	id, err := n.SendEmail(context.Background(), ws.ID, "ada@example.com", "Booking confirmed", "<p>See you Monday.</p>")
	require.NoError(t, err)
	assert.Equal(t, "email_abc123", id)
	assert.Equal(t, "Bearer re_test", gotAuth)
	assert.Equal(t, "hello@sheargenius.com", captured.From)
	assert.Equal(t, []string{"ada@example.com"}, captured.To)
	assert.Equal(t, "<p>See you Monday.</p>", captured.HTML)

	logs, err := db.IntegrationLogs.ListRecent(ws.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	assert.Equal(t, "ada@example.com", logs[0].Recipient)

	integration, err := db.Integrations.GetActive(ws.ID, "email")
	require.NoError(t, err)
	assert.NotNil(t, integration.LastUsedAt)
	assert.Nil(t, integration.LastError)
}

func TestSendEmailWithoutIntegration(t *testing.T) {
	db := newTestDB(t)
	ws := &models.Workspace{Name: "Shear Genius", Timezone: "UTC", Status: models.StatusActive}
	require.NoError(t, db.Workspaces.Create(ws))

	n := NewNotifier(db, logger.NewDiscardLogger())
	_, err := n.SendEmail(context.Background(), ws.ID, "ada@example.com", "Hi", "body")
	assert.Error(t, err)
}

func TestSendEmailProviderFailure(t *testing.T) {
	db := newTestDB(t)
	ws := &models.Workspace{Name: "Shear Genius", Timezone: "UTC", Status: models.StatusActive}
	require.NoError(t, db.Workspaces.Create(ws))
	connectEmail(t, db, ws.ID)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	n := NewNotifier(db, logger.NewDiscardLogger())
	n.ResendBaseURL = srv.URL

	_, err := n.SendEmail(context.Background(), ws.ID, "ada@example.com", "Hi", "body")
	require.Error(t, err)

	logs, err := db.IntegrationLogs.ListRecent(ws.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	require.NotNil(t, logs[0].Detail)
	assert.Equal(t, "provider returned 422", *logs[0].Detail)

	integration, err := db.Integrations.GetActive(ws.ID, "email")
	require.NoError(t, err)
	require.NotNil(t, integration.LastError)
	assert.Equal(t, "provider returned 422", *integration.LastError)
}

func TestSendSMS(t *testing.T) {
	db := newTestDB(t)
	ws := &models.Workspace{Name: "Shear Genius", Timezone: "UTC", Status: models.StatusActive}
	require.NoError(t, db.Workspaces.Create(ws))
	connectSMS(t, db, ws.ID)

	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sid":"SM_abc123"}`))
	}))
	defer srv.Close()

	n := NewNotifier(db, logger.NewDiscardLogger())
	n.TwilioBaseURL = srv.URL

	id, err := n.SendSMS(context.Background(), ws.ID, "+15550001", "Running late.")
	require.NoError(t, err)
	assert.Equal(t, "SM_abc123", id)
	assert.Equal(t, "/2010-04-01/Accounts/AC_test/Messages.json", gotPath)
	assert.Equal(t, "AC_test", gotUser)
	assert.Equal(t, "tok_test", gotPass)
	assert.Equal(t, "+15550001", gotTo)
	assert.Equal(t, "+15550000", gotFrom)
	assert.Equal(t, "Running late.", gotBody)
}

func TestReconnectClearsLastError(t *testing.T) {
	db := newTestDB(t)
	ws := &models.Workspace{Name: "Shear Genius", Timezone: "UTC", Status: models.StatusActive}
	require.NoError(t, db.Workspaces.Create(ws))
	connectEmail(t, db, ws.ID)
	require.NoError(t, db.Integrations.SetLastError(ws.ID, "email", "provider returned 500"))

	connectEmail(t, db, ws.ID)
	integration, err := db.Integrations.GetActive(ws.ID, "email")
	require.NoError(t, err)
	assert.Nil(t, integration.LastError)
}
