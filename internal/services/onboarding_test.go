package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
)

func TestStatusFreshWorkspace(t *testing.T) {
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusDraft)

	status, err := NewOnboardingService(db).Status(ws.ID)
	require.NoError(t, err)
	assert.True(t, status.Steps.Workspace)
	assert.False(t, status.Steps.EmailOrSMS)
	assert.False(t, status.Steps.BookingTypes)
	assert.False(t, status.Steps.HasAvailability)
	assert.False(t, status.Steps.Active)
	assert.False(t, status.CanActivate)
}

func TestStatusInformationalStepsDoNotGate(t *testing.T) {
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusDraft)
	require.NoError(t, db.ContactForms.Upsert(&models.ContactForm{WorkspaceID: ws.ID, Name: "Contact"}))
	require.NoError(t, db.FormTemplates.Create(&models.FormTemplate{WorkspaceID: ws.ID, Name: "Aftercare"}))
	require.NoError(t, db.Inventory.Create(&models.InventoryItem{
		WorkspaceID: ws.ID, Name: "Towels", QuantityAvailable: 10,
		QuantityUsedPerBooking: 1, LowStockThreshold: 5, Unit: "unit",
	}))

	status, err := NewOnboardingService(db).Status(ws.ID)
	require.NoError(t, err)
	assert.True(t, status.Steps.ContactForm)
	assert.True(t, status.Steps.PostBookingForms)
	assert.True(t, status.Steps.Inventory)
	assert.False(t, status.CanActivate)
}

func TestActivateEnforcesGate(t *testing.T) {
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusDraft)
	svc := NewOnboardingService(db)

	_, err := svc.Activate(ws.ID)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Cannot activate: connect at least one communication channel, add a booking type, and set availability.", appErr.Message)

	// Satisfy the gate one requirement at a time.
	require.NoError(t, db.Workspaces.MarkChannelConnected(ws.ID, models.ChannelSMS))
	_, err = svc.Activate(ws.ID)
	require.Error(t, err)

	createBookingType(t, db, ws.ID, "Haircut", 30)
	_, err = svc.Activate(ws.ID)
	require.Error(t, err)

	setWeeklyWindows(t, db, ws.ID, nil, []AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
	})
	activated, err := svc.Activate(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, activated.Status)

	status, err := svc.Status(ws.ID)
	require.NoError(t, err)
	assert.True(t, status.Steps.Active)
	assert.True(t, status.CanActivate)
}

func TestActivateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusDraft)
	require.NoError(t, db.Workspaces.MarkChannelConnected(ws.ID, models.ChannelEmail))
	createBookingType(t, db, ws.ID, "Haircut", 30)
	setWeeklyWindows(t, db, ws.ID, nil, []AvailabilitySlot{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
	})
	svc := NewOnboardingService(db)

	_, err := svc.Activate(ws.ID)
	require.NoError(t, err)
	again, err := svc.Activate(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, again.Status)
}

func TestStatusUnknownWorkspace(t *testing.T) {
	db := newTestDB(t)

	_, err := NewOnboardingService(db).Status(uuid.New())
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Workspace not found", appErr.Message)
}
