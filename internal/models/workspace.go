package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workspace represents one tenant business account.
type Workspace struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string          `gorm:"column:name;not null" json:"name"`
	Address        *string         `gorm:"column:address" json:"address"`
	Timezone       string          `gorm:"column:timezone;not null;default:'UTC'" json:"timezone"`
	ContactEmail   *string         `gorm:"column:contact_email" json:"contact_email"`
	Status         WorkspaceStatus `gorm:"column:status;not null;default:'draft'" json:"status"`
	EmailConnected bool            `gorm:"column:email_connected;not null;default:false" json:"email_connected"`
	SMSConnected   bool            `gorm:"column:sms_connected;not null;default:false" json:"sms_connected"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the Workspace model
func (Workspace) TableName() string {
	return "workspaces"
}

// BeforeCreate assigns an id when the caller did not.
func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Location resolves the workspace IANA timezone, falling back to UTC when
// the stored name is unknown.
func (w *Workspace) Location() *time.Location {
	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WorkspaceManager provides persistence operations for Workspace
type WorkspaceManager struct {
	db *gorm.DB
}

// NewWorkspaceManager creates a new WorkspaceManager instance
func NewWorkspaceManager(db *gorm.DB) *WorkspaceManager {
	return &WorkspaceManager{db: db}
}

// Create creates a new workspace
func (m *WorkspaceManager) Create(workspace *Workspace) error {
	return m.db.Create(workspace).Error
}

// Get retrieves a workspace by ID
func (m *WorkspaceManager) Get(id uuid.UUID) (*Workspace, error) {
	var workspace Workspace
	err := m.db.First(&workspace, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// GetForUser retrieves a workspace only if the given user belongs to it.
// Absence and lack of access are indistinguishable to the caller.
func (m *WorkspaceManager) GetForUser(id, userID uuid.UUID) (*Workspace, error) {
	var workspace Workspace
	err := m.db.
		Joins("JOIN workspace_users wu ON wu.workspace_id = workspaces.id").
		Where("workspaces.id = ? AND wu.id = ?", id, userID).
		First(&workspace).Error
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// Update persists the given workspace
func (m *WorkspaceManager) Update(workspace *Workspace) error {
	return m.db.Save(workspace).Error
}

// UpdateFields applies a partial column update to a workspace.
func (m *WorkspaceManager) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return m.db.Model(&Workspace{}).Where("id = ?", id).Updates(fields).Error
}

// MarkChannelConnected flips the email/sms connected flag after an
// integration is configured.
func (m *WorkspaceManager) MarkChannelConnected(id uuid.UUID, channel Channel) error {
	column := "email_connected"
	if channel == ChannelSMS {
		column = "sms_connected"
	}
	return m.db.Model(&Workspace{}).Where("id = ?", id).
		Update(column, true).Error
}

// Activate sets the workspace status to active. Calling it on an already
// active workspace is a harmless re-write.
func (m *WorkspaceManager) Activate(id uuid.UUID) error {
	return m.db.Model(&Workspace{}).Where("id = ?", id).
		Update("status", StatusActive).Error
}

// IsNotFound reports whether err is gorm's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
