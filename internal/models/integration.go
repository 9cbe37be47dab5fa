package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Integration holds a workspace's connection to an outbound provider.
// One row per (workspace, type); credentials live in Config.
type Integration struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;column:workspace_id;not null;uniqueIndex:idx_integrations_workspace_type" json:"workspace_id"`
	Type        string     `gorm:"column:type;not null;uniqueIndex:idx_integrations_workspace_type" json:"type"`
	Active      bool       `gorm:"column:active;not null;default:true" json:"active"`
	Config      JSONB      `gorm:"column:config;type:jsonb" json:"-"`
	LastError   *string    `gorm:"column:last_error" json:"last_error,omitempty"`
	LastUsedAt  *time.Time `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the Integration model
func (Integration) TableName() string {
	return "integrations"
}

func (i *Integration) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IntegrationLog records a single delivery attempt through a provider.
type IntegrationLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	Type        string    `gorm:"column:type;not null" json:"type"`
	Recipient   string    `gorm:"column:recipient;not null" json:"recipient"`
	Success     bool      `gorm:"column:success;not null" json:"success"`
	Detail      *string   `gorm:"column:detail" json:"detail,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for the IntegrationLog model
func (IntegrationLog) TableName() string {
	return "integration_logs"
}

func (l *IntegrationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// IntegrationManager provides persistence operations for Integration
type IntegrationManager struct {
	db *gorm.DB
}

// NewIntegrationManager creates a new IntegrationManager instance
func NewIntegrationManager(db *gorm.DB) *IntegrationManager {
	return &IntegrationManager{db: db}
}

// Upsert creates or replaces the integration for (workspace, type).
// Reconnecting clears any previous error state.
func (m *IntegrationManager) Upsert(workspaceID uuid.UUID, integrationType string, config JSONB) (*Integration, error) {
	var existing Integration
	err := m.db.
		Where("workspace_id = ? AND type = ?", workspaceID, integrationType).
		First(&existing).Error
	if err == nil {
		existing.Config = config
		existing.Active = true
		existing.LastError = nil
		existing.UpdatedAt = time.Now()
		if err := m.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	integration := &Integration{
		WorkspaceID: workspaceID,
		Type:        integrationType,
		Active:      true,
		Config:      config,
	}
	if err := m.db.Create(integration).Error; err != nil {
		return nil, err
	}
	return integration, nil
}

// GetActive retrieves the active integration of a given type, or
// gorm.ErrRecordNotFound when none is connected.
func (m *IntegrationManager) GetActive(workspaceID uuid.UUID, integrationType string) (*Integration, error) {
	var integration Integration
	err := m.db.
		Where("workspace_id = ? AND type = ? AND active = ?", workspaceID, integrationType, true).
		First(&integration).Error
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

// SetLastError records the most recent delivery failure on the integration
func (m *IntegrationManager) SetLastError(workspaceID uuid.UUID, integrationType string, message string) error {
	return m.db.Model(&Integration{}).
		Where("workspace_id = ? AND type = ?", workspaceID, integrationType).
		Updates(map[string]interface{}{
			"last_error": message,
			"updated_at": time.Now(),
		}).Error
}

// TouchUsed stamps a successful delivery through the integration
func (m *IntegrationManager) TouchUsed(workspaceID uuid.UUID, integrationType string) error {
	now := time.Now()
	return m.db.Model(&Integration{}).
		Where("workspace_id = ? AND type = ?", workspaceID, integrationType).
		Updates(map[string]interface{}{
			"last_used_at": now,
			"last_error":   nil,
			"updated_at":   now,
		}).Error
}

// IntegrationLogManager provides persistence operations for IntegrationLog
type IntegrationLogManager struct {
	db *gorm.DB
}

// NewIntegrationLogManager creates a new IntegrationLogManager instance
func NewIntegrationLogManager(db *gorm.DB) *IntegrationLogManager {
	return &IntegrationLogManager{db: db}
}

// Create records a delivery attempt
func (m *IntegrationLogManager) Create(log *IntegrationLog) error {
	return m.db.Create(log).Error
}

// ListRecent retrieves the most recent delivery attempts for a workspace
func (m *IntegrationLogManager) ListRecent(workspaceID uuid.UUID, limit int) ([]IntegrationLog, error) {
	var logs []IntegrationLog
	err := m.db.
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
