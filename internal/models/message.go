package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one inbound or outbound message in a conversation. Rows are
// immutable once created except for external_id patched after send.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID    uuid.UUID `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	ConversationID uuid.UUID `gorm:"type:uuid;column:conversation_id;not null;index" json:"conversation_id"`
	Direction      Direction `gorm:"column:direction;not null" json:"direction"`
	Channel        Channel   `gorm:"column:channel;not null" json:"channel"`
	Body           string    `gorm:"column:body;not null" json:"body"`
	Subject        *string   `gorm:"column:subject" json:"subject"`
	IsAutomated    bool      `gorm:"column:is_automated;not null;default:false" json:"is_automated"`
	ExternalID     *string   `gorm:"column:external_id" json:"external_id"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MessageManager provides persistence operations for Message
type MessageManager struct {
	db *gorm.DB
}

// NewMessageManager creates a new MessageManager instance
func NewMessageManager(db *gorm.DB) *MessageManager {
	return &MessageManager{db: db}
}

// Create creates a new message
func (m *MessageManager) Create(msg *Message) error {
	return m.db.Create(msg).Error
}

// Get retrieves a message by id.
func (m *MessageManager) Get(id uuid.UUID) (*Message, error) {
	var msg Message
	err := m.db.First(&msg, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByConversation retrieves a conversation's messages oldest first.
func (m *MessageManager) ListByConversation(conversationID uuid.UUID) ([]Message, error) {
	var messages []Message
	err := m.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// SetExternalID patches the provider message id after a successful send.
func (m *MessageManager) SetExternalID(id uuid.UUID, externalID string) error {
	return m.db.Model(&Message{}).Where("id = ?", id).
		Update("external_id", externalID).Error
}
