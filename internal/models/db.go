// Package models provides the GORM-based persistence layer: one entity
// type plus a Manager per table, wired together on an explicit DB handle
// that is constructed once and passed to every component.
package models

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection and all entity managers
type DB struct {
	*gorm.DB
	Workspaces      *WorkspaceManager
	Users           *UserManager
	Contacts        *ContactManager
	Conversations   *ConversationManager
	Messages        *MessageManager
	BookingTypes    *BookingTypeManager
	Availability    *AvailabilityManager
	Bookings        *BookingManager
	ContactForms    *ContactFormManager
	FormTemplates   *FormTemplateManager
	FormSubmissions *FormSubmissionManager
	Inventory       *InventoryManager
	Integrations    *IntegrationManager
	IntegrationLogs *IntegrationLogManager
	Alerts          *AlertManager
}

// New wraps an existing gorm connection with all managers.
func New(gormDB *gorm.DB) *DB {
	return &DB{
		DB:              gormDB,
		Workspaces:      NewWorkspaceManager(gormDB),
		Users:           NewUserManager(gormDB),
		Contacts:        NewContactManager(gormDB),
		Conversations:   NewConversationManager(gormDB),
		Messages:        NewMessageManager(gormDB),
		BookingTypes:    NewBookingTypeManager(gormDB),
		Availability:    NewAvailabilityManager(gormDB),
		Bookings:        NewBookingManager(gormDB),
		ContactForms:    NewContactFormManager(gormDB),
		FormTemplates:   NewFormTemplateManager(gormDB),
		FormSubmissions: NewFormSubmissionManager(gormDB),
		Inventory:       NewInventoryManager(gormDB),
		Integrations:    NewIntegrationManager(gormDB),
		IntegrationLogs: NewIntegrationLogManager(gormDB),
		Alerts:          NewAlertManager(gormDB),
	}
}

// Connect opens a postgres connection for the given DSN and initializes
// all managers.
func Connect(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	gormDB, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return New(gormDB), nil
}

// AutoMigrate runs GORM auto-migration for all models
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&Workspace{},
		&WorkspaceUser{},
		&Contact{},
		&Conversation{},
		&Message{},
		&BookingType{},
		&AvailabilityWindow{},
		&Booking{},
		&ContactForm{},
		&FormTemplate{},
		&FormSubmission{},
		&InventoryItem{},
		&Integration{},
		&IntegrationLog{},
		&Alert{},
	)
}

// Transaction runs a function within a database transaction
func (db *DB) Transaction(fn func(*DB) error) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Health pings the underlying connection.
func (db *DB) Health() map[string]string {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	if err := sqlDB.Ping(); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}
	return map[string]string{"status": "up"}
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
