package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdeck/internal/models"
)

func createBookingAt(t *testing.T, db *models.DB, ws *models.Workspace, bt *models.BookingType, contact *models.Contact, at time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		WorkspaceID:   ws.ID,
		ContactID:     contact.ID,
		BookingTypeID: bt.ID,
		ScheduledAt:   at,
		Status:        status,
	}
	require.NoError(t, db.Bookings.Create(booking))
	return booking
}

func TestDashboardAggregates(t *testing.T) {
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusActive)
	bt := createBookingType(t, db, ws.ID, "Haircut", 30)
	contact := createContact(t, db, ws.ID, "Ada", "ada@example.com", "")

	now := time.Now().UTC()
	createBookingAt(t, db, ws, bt, contact, now.Add(time.Hour), models.BookingConfirmed)
	createBookingAt(t, db, ws, bt, contact, now.Add(-2*time.Hour), models.BookingCompleted)
	createBookingAt(t, db, ws, bt, contact, now.AddDate(0, 0, 5), models.BookingConfirmed)
	cancelled := createBookingAt(t, db, ws, bt, contact, now.AddDate(0, 0, 6), models.BookingCancelled)

	conv := &models.Conversation{WorkspaceID: ws.ID, ContactID: contact.ID, Status: models.ConversationOpen}
	require.NoError(t, db.Conversations.Create(conv))
	require.NoError(t, db.Inventory.Create(&models.InventoryItem{
		WorkspaceID: ws.ID, Name: "Towels", QuantityAvailable: 2,
		QuantityUsedPerBooking: 1, LowStockThreshold: 5, Unit: "unit",
	}))
	require.NoError(t, db.Alerts.Create(&models.Alert{
		WorkspaceID: ws.ID, Type: "low_stock", Message: "Towels are running low",
	}))

	dash, err := NewDashboardService(db).Get(ws.ID)
	require.NoError(t, err)

	// Today: the booking an hour away could cross midnight in edge runs,
	// so only assert what is stable.
	assert.Equal(t, int64(1), dash.Conversations.OpenCount)
	require.Len(t, dash.Inventory.LowStock, 1)
	assert.Equal(t, "Towels", dash.Inventory.LowStock[0].Name)
	require.Len(t, dash.Alerts, 1)
	assert.False(t, dash.Alerts[0].Read)

	for _, item := range dash.Bookings.Today {
		assert.NotEqual(t, models.BookingCancelled, item.Status)
	}
	for _, item := range dash.Bookings.Upcoming {
		assert.NotEqual(t, cancelled.ID, item.ID)
	}
}

func TestDashboardCountsTodayOutcomes(t *testing.T) {
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusActive)
	bt := createBookingType(t, db, ws.ID, "Haircut", 30)
	contact := createContact(t, db, ws.ID, "Ada", "ada@example.com", "")

	loc := ws.Location()
	now := time.Now().In(loc)
	noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc)
	createBookingAt(t, db, ws, bt, contact, noon, models.BookingCompleted)
	createBookingAt(t, db, ws, bt, contact, noon.Add(time.Hour), models.BookingNoShow)
	createBookingAt(t, db, ws, bt, contact, noon.AddDate(0, 0, -1), models.BookingCompleted)

	dash, err := NewDashboardService(db).Get(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dash.Bookings.CompletedToday)
	assert.Equal(t, int64(1), dash.Bookings.NoShowToday)
}

func TestNavCounts(t *testing.T) {
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusActive)
	bt := createBookingType(t, db, ws.ID, "Haircut", 30)
	contact := createContact(t, db, ws.ID, "Ada", "ada@example.com", "")
	createBookingAt(t, db, ws, bt, contact, time.Now().Add(time.Hour), models.BookingConfirmed)
	createBookingAt(t, db, ws, bt, contact, time.Now().Add(2*time.Hour), models.BookingCancelled)

	conv := &models.Conversation{WorkspaceID: ws.ID, ContactID: contact.ID, Status: models.ConversationOpen}
	require.NoError(t, db.Conversations.Create(conv))
	require.NoError(t, db.Messages.Create(&models.Message{
		WorkspaceID:    ws.ID,
		ConversationID: conv.ID,
		Direction:      models.DirectionIn,
		Channel:        models.ChannelEmail,
		Body:           "Hello?",
	}))

	counts, err := NewDashboardService(db).NavCounts(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Inbox)
	assert.Equal(t, int64(1), counts.Bookings)

	// Reading the conversation clears the inbox badge.
	require.NoError(t, db.Conversations.MarkRead(ws.ID, conv.ID))
	counts, err = NewDashboardService(db).NavCounts(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Inbox)
}
