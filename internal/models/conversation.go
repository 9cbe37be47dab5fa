package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is the single message thread between a workspace and one
// contact, created lazily on first interaction.
type Conversation struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID          uuid.UUID  `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	ContactID            uuid.UUID  `gorm:"type:uuid;column:contact_id;not null" json:"contact_id"`
	Status               string     `gorm:"column:status;not null;default:'open'" json:"status"`
	LastReadAt           *time.Time `gorm:"column:last_read_at" json:"last_read_at"`
	AutomationPausedUntil *time.Time `gorm:"column:automation_paused_until" json:"automation_paused_until"`
	CreatedAt            time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the Conversation model
func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ConversationSummary is a conversation row joined with contact details
// and its most recent message, as listed in the inbox.
type ConversationSummary struct {
	ID                   uuid.UUID  `gorm:"column:id" json:"id"`
	ContactID            uuid.UUID  `gorm:"column:contact_id" json:"contact_id"`
	Status               string     `gorm:"column:status" json:"status"`
	UpdatedAt            time.Time  `gorm:"column:updated_at" json:"updated_at"`
	LastReadAt           *time.Time `gorm:"column:last_read_at" json:"last_read_at"`
	ContactName          *string    `gorm:"column:contact_name" json:"contact_name"`
	ContactEmail         *string    `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone         *string    `gorm:"column:contact_phone" json:"contact_phone"`
	LastMessage          *string    `gorm:"column:last_message" json:"last_message"`
	LastMessageAt        *time.Time `gorm:"column:last_message_at" json:"last_message_at"`
	LastMessageDirection *string    `gorm:"column:last_message_direction" json:"last_message_direction"`
	HasUnread            bool       `gorm:"-" json:"has_unread"`
}

// ConversationDetail is a single conversation joined with its contact.
type ConversationDetail struct {
	Conversation `gorm:"embedded"`
	ContactName  *string `gorm:"column:contact_name" json:"contact_name"`
	ContactEmail *string `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone *string `gorm:"column:contact_phone" json:"contact_phone"`
}

// ConversationManager provides persistence operations for Conversation
type ConversationManager struct {
	db *gorm.DB
}

// NewConversationManager creates a new ConversationManager instance
func NewConversationManager(db *gorm.DB) *ConversationManager {
	return &ConversationManager{db: db}
}

// Create creates a new conversation
func (m *ConversationManager) Create(conv *Conversation) error {
	return m.db.Create(conv).Error
}

// GetByContact retrieves the conversation for a (workspace, contact) pair.
func (m *ConversationManager) GetByContact(workspaceID, contactID uuid.UUID) (*Conversation, error) {
	var conv Conversation
	err := m.db.Where("workspace_id = ? AND contact_id = ?", workspaceID, contactID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Get retrieves a conversation with contact details within a workspace.
func (m *ConversationManager) Get(workspaceID, id uuid.UUID) (*ConversationDetail, error) {
	var detail ConversationDetail
	err := m.db.Raw(`
		SELECT cv.*, c.name AS contact_name, c.email AS contact_email, c.phone AS contact_phone
		FROM conversations cv
		JOIN contacts c ON c.id = cv.contact_id
		WHERE cv.workspace_id = ? AND cv.id = ?`, workspaceID, id).
		Scan(&detail).Error
	if err != nil {
		return nil, err
	}
	if detail.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &detail, nil
}

// List retrieves all conversations of a workspace with contact details
// and last-message columns, most recently updated first.
func (m *ConversationManager) List(workspaceID uuid.UUID) ([]ConversationSummary, error) {
	var rows []ConversationSummary
	err := m.db.Raw(`
		SELECT cv.id, cv.contact_id, cv.status, cv.updated_at, cv.last_read_at,
			c.name AS contact_name, c.email AS contact_email, c.phone AS contact_phone,
			(SELECT body FROM messages WHERE conversation_id = cv.id ORDER BY created_at DESC LIMIT 1) AS last_message,
			(SELECT created_at FROM messages WHERE conversation_id = cv.id ORDER BY created_at DESC LIMIT 1) AS last_message_at,
			(SELECT direction FROM messages WHERE conversation_id = cv.id ORDER BY created_at DESC LIMIT 1) AS last_message_direction
		FROM conversations cv
		JOIN contacts c ON c.id = cv.contact_id
		WHERE cv.workspace_id = ?
		ORDER BY cv.updated_at DESC`, workspaceID).
		Scan(&rows).Error
	return rows, err
}

// MarkRead stamps the conversation's read receipt.
func (m *ConversationManager) MarkRead(workspaceID, id uuid.UUID) error {
	return m.db.Model(&Conversation{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Update("last_read_at", time.Now()).Error
}

// Touch bumps a conversation's updated_at so it sorts to the top.
func (m *ConversationManager) Touch(id uuid.UUID) error {
	return m.db.Model(&Conversation{}).Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// PauseAutomation suppresses automated sends on the conversation until t.
func (m *ConversationManager) PauseAutomation(id uuid.UUID, t time.Time) error {
	return m.db.Model(&Conversation{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"updated_at":              time.Now(),
			"automation_paused_until": t,
		}).Error
}

// CountOpen counts open conversations in a workspace.
func (m *ConversationManager) CountOpen(workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := m.db.Model(&Conversation{}).
		Where("workspace_id = ? AND status = ?", workspaceID, ConversationOpen).
		Count(&count).Error
	return count, err
}

// CountUnread counts conversations whose most recent message is inbound
// and postdates the read receipt (or has none).
func (m *ConversationManager) CountUnread(workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := m.db.Raw(`
		SELECT COUNT(*)
		FROM conversations cv
		WHERE cv.workspace_id = ?
		AND (SELECT direction FROM messages m WHERE m.conversation_id = cv.id
			ORDER BY m.created_at DESC LIMIT 1) = 'in'
		AND (cv.last_read_at IS NULL
			OR (SELECT created_at FROM messages m WHERE m.conversation_id = cv.id
				ORDER BY m.created_at DESC LIMIT 1) > cv.last_read_at)`, workspaceID).
		Scan(&count).Error
	return count, err
}
