package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
	"opsdeck/internal/notify"
	"opsdeck/pkg/logger"
)

// A staff reply pauses automated sends on the conversation so the
// thread stays human.
const automationPause = 24 * time.Hour

// ReplyRequest is a staff member's outbound message.
type ReplyRequest struct {
	Channel models.Channel `json:"channel" binding:"required"`
	Body    string         `json:"body" binding:"required"`
	Subject *string        `json:"subject"`
}

// InboxService manages conversations and staff replies.
type InboxService struct {
	db       *models.DB
	notifier notify.Service
	log      logger.Logger
}

// NewInboxService creates a new InboxService
func NewInboxService(db *models.DB, notifier notify.Service, log logger.Logger) *InboxService {
	return &InboxService{db: db, notifier: notifier, log: log}
}

// ListConversations retrieves a workspace's conversations with their
// derived unread flag: unread iff the most recent message is inbound and
// postdates the read receipt (or there is no receipt yet).
func (s *InboxService) ListConversations(workspaceID uuid.UUID) ([]models.ConversationSummary, error) {
	rows, err := s.db.Conversations.List(workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		row := &rows[i]
		if row.LastMessageDirection == nil || *row.LastMessageDirection != string(models.DirectionIn) {
			continue
		}
		if row.LastReadAt == nil || (row.LastMessageAt != nil && row.LastMessageAt.After(*row.LastReadAt)) {
			row.HasUnread = true
		}
	}
	return rows, nil
}

// GetConversation retrieves one conversation with contact details.
func (s *InboxService) GetConversation(workspaceID, conversationID uuid.UUID) (*models.ConversationDetail, error) {
	detail, err := s.db.Conversations.Get(workspaceID, conversationID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Conversation not found")
		}
		return nil, err
	}
	return detail, nil
}

// MarkRead stamps the conversation's read receipt.
func (s *InboxService) MarkRead(workspaceID, conversationID uuid.UUID) error {
	if _, err := s.GetConversation(workspaceID, conversationID); err != nil {
		return err
	}
	return s.db.Conversations.MarkRead(workspaceID, conversationID)
}

// Messages retrieves a conversation's messages oldest first.
func (s *InboxService) Messages(workspaceID, conversationID uuid.UUID) ([]models.Message, error) {
	if _, err := s.GetConversation(workspaceID, conversationID); err != nil {
		return nil, err
	}
	return s.db.Messages.ListByConversation(conversationID)
}

// SendReply records an outbound message and best-effort delivers it.
// The message row is kept even when delivery fails; a successful send
// pauses conversation automation for a day.
func (s *InboxService) SendReply(ctx context.Context, workspaceID, conversationID uuid.UUID, req ReplyRequest) (*models.Message, error) {
	conv, err := s.GetConversation(workspaceID, conversationID)
	if err != nil {
		return nil, err
	}
	if req.Channel != models.ChannelEmail && req.Channel != models.ChannelSMS {
		return nil, apperror.InvalidInput("Invalid channel")
	}
	if req.Channel == models.ChannelEmail && (conv.ContactEmail == nil || *conv.ContactEmail == "") {
		return nil, apperror.InvalidInput("Contact has no email")
	}
	if req.Channel == models.ChannelSMS && (conv.ContactPhone == nil || *conv.ContactPhone == "") {
		return nil, apperror.InvalidInput("Contact has no phone")
	}

	message := &models.Message{
		WorkspaceID:    workspaceID,
		ConversationID: conversationID,
		Direction:      models.DirectionOut,
		Channel:        req.Channel,
		Body:           req.Body,
		Subject:        req.Subject,
	}
	if err := s.db.Messages.Create(message); err != nil {
		return nil, err
	}

	var externalID string
	var sendErr error
	if req.Channel == models.ChannelEmail {
		subject := "Message"
		if req.Subject != nil && *req.Subject != "" {
			subject = *req.Subject
		}
		externalID, sendErr = s.notifier.SendEmail(ctx, workspaceID, *conv.ContactEmail, subject, req.Body)
	} else {
		externalID, sendErr = s.notifier.SendSMS(ctx, workspaceID, *conv.ContactPhone, truncateSMS(req.Body))
	}
	if sendErr != nil {
		s.log.WithFields(map[string]interface{}{
			"conversation_id": conversationID.String(),
			"channel":         string(req.Channel),
			"error":           sendErr.Error(),
		}).Warn("reply delivery failed")
	} else if externalID != "" {
		if err := s.db.Messages.SetExternalID(message.ID, externalID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Conversations.PauseAutomation(conversationID, time.Now().Add(automationPause)); err != nil {
		return nil, err
	}
	return s.db.Messages.Get(message.ID)
}
