package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alert is a workspace-scoped notification surfaced on the dashboard
// (low stock, overdue forms, delivery failures).
type Alert struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	Type        string    `gorm:"column:type;not null" json:"type"`
	Message     string    `gorm:"column:message;not null" json:"message"`
	Read        bool      `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for the Alert model
func (Alert) TableName() string {
	return "alerts"
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AlertManager provides persistence operations for Alert
type AlertManager struct {
	db *gorm.DB
}

// NewAlertManager creates a new AlertManager instance
func NewAlertManager(db *gorm.DB) *AlertManager {
	return &AlertManager{db: db}
}

// Create records a new alert
func (m *AlertManager) Create(alert *Alert) error {
	return m.db.Create(alert).Error
}

// ListUnread retrieves unread alerts for a workspace, newest first
func (m *AlertManager) ListUnread(workspaceID uuid.UUID) ([]Alert, error) {
	var alerts []Alert
	err := m.db.
		Where("workspace_id = ? AND read = ?", workspaceID, false).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

// MarkRead marks a single alert as read
func (m *AlertManager) MarkRead(workspaceID, id uuid.UUID) error {
	result := m.db.Model(&Alert{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUnread returns the number of unread alerts for a workspace
func (m *AlertManager) CountUnread(workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := m.db.Model(&Alert{}).
		Where("workspace_id = ? AND read = ?", workspaceID, false).
		Count(&count).Error
	return count, err
}
