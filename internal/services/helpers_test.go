package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"opsdeck/internal/models"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// Tests share one connection so the in-memory database survives the
// pool.
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

func createWorkspace(t *testing.T, db *models.DB, status models.WorkspaceStatus) *models.Workspace {
	t.Helper()
	ws := &models.Workspace{
		Name:     "Shear Genius",
		Timezone: "UTC",
		Status:   status,
	}
	require.NoError(t, db.Workspaces.Create(ws))
	return ws
}

func createBookingType(t *testing.T, db *models.DB, workspaceID uuid.UUID, name string, minutes int) *models.BookingType {
	t.Helper()
	bt := &models.BookingType{
		WorkspaceID:     workspaceID,
		Name:            name,
		DurationMinutes: minutes,
	}
	require.NoError(t, db.BookingTypes.Create(bt))
	return bt
}

func createContact(t *testing.T, db *models.DB, workspaceID uuid.UUID, name, email, phone string) *models.Contact {
	t.Helper()
	contact := &models.Contact{WorkspaceID: workspaceID}
	if name != "" {
		contact.Name = &name
	}
	if email != "" {
		contact.Email = &email
	}
	if phone != "" {
		contact.Phone = &phone
	}
	require.NoError(t, db.Contacts.Create(contact))
	return contact
}

func setWeeklyWindows(t *testing.T, db *models.DB, workspaceID uuid.UUID, bookingTypeID *uuid.UUID, slots []AvailabilitySlot) {
	t.Helper()
	_, err := NewAvailabilityService(db).Set(workspaceID, bookingTypeID, slots)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
