package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is a customer identity within one workspace, keyed by email or
// phone (whichever the caller supplied first).
type Contact struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	Email       *string   `gorm:"column:email" json:"email"`
	Phone       *string   `gorm:"column:phone" json:"phone"`
	Name        *string   `gorm:"column:name" json:"name"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the Contact model
func (Contact) TableName() string {
	return "contacts"
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ContactListItem is a contact row with its inbound message count.
type ContactListItem struct {
	Contact     `gorm:"embedded"`
	UnreadCount int64 `gorm:"column:unread_count" json:"unread_count"`
}

// ContactManager provides persistence operations for Contact
type ContactManager struct {
	db *gorm.DB
}

// NewContactManager creates a new ContactManager instance
func NewContactManager(db *gorm.DB) *ContactManager {
	return &ContactManager{db: db}
}

// Create creates a new contact
func (m *ContactManager) Create(contact *Contact) error {
	return m.db.Create(contact).Error
}

// Get retrieves a contact within a workspace
func (m *ContactManager) Get(workspaceID, id uuid.UUID) (*Contact, error) {
	var contact Contact
	err := m.db.Where("workspace_id = ? AND id = ?", workspaceID, id).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByKey looks up a contact whose stored email OR phone equals key.
func (m *ContactManager) FindByKey(workspaceID uuid.UUID, key string) (*Contact, error) {
	var contact Contact
	err := m.db.Where("workspace_id = ? AND (email = ? OR phone = ?)", workspaceID, key, key).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FillGaps updates name/email/phone only where an incoming value is
// present; existing values are never erased by absent ones.
func (m *ContactManager) FillGaps(id uuid.UUID, name, email, phone *string) error {
	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if email != nil {
		updates["email"] = *email
	}
	if phone != nil {
		updates["phone"] = *phone
	}
	if len(updates) == 0 {
		return nil
	}
	return m.db.Model(&Contact{}).Where("id = ?", id).Updates(updates).Error
}

// List retrieves all contacts of a workspace with their inbound message
// counts, most recently updated first.
func (m *ContactManager) List(workspaceID uuid.UUID) ([]ContactListItem, error) {
	var items []ContactListItem
	err := m.db.Raw(`
		SELECT c.*,
			(SELECT COUNT(*) FROM messages m
			 JOIN conversations cv ON cv.id = m.conversation_id
			 WHERE cv.contact_id = c.id AND m.direction = 'in') AS unread_count
		FROM contacts c
		WHERE c.workspace_id = ?
		ORDER BY c.updated_at DESC`, workspaceID).
		Scan(&items).Error
	return items, err
}
