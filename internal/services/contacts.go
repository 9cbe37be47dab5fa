// Package services implements the core workflows on top of the models
// layer: slot computation, the public booking flow, contact resolution,
// onboarding, the inbox, and the dashboard aggregates. Services return
// apperror values that the HTTP layer translates 1:1.
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
	"opsdeck/internal/notify"
	"opsdeck/pkg/logger"
)

const defaultWelcomeMessage = "Thanks for reaching out! We'll get back to you soon."

// ContactResolution is the outcome of identity resolution.
type ContactResolution struct {
	ID      uuid.UUID `json:"id"`
	Created bool      `json:"created"`
}

// PublicContactForm is the public view of a workspace's intake form.
type PublicContactForm struct {
	WorkspaceID   uuid.UUID        `json:"workspaceId"`
	WorkspaceName string           `json:"workspaceName"`
	FormName      string           `json:"formName"`
	Fields        models.FieldList `json:"fields"`
}

// ContactFormSubmission is a customer's public intake-form payload.
type ContactFormSubmission struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Message *string `json:"message"`
}

// ContactService resolves customer identities and their conversations.
type ContactService struct {
	db       *models.DB
	notifier notify.Service
	log      logger.Logger
}

// NewContactService creates a new ContactService
func NewContactService(db *models.DB, notifier notify.Service, log logger.Logger) *ContactService {
	return &ContactService{db: db, notifier: notifier, log: log}
}

// FindOrCreate resolves a contact by email-else-phone within a
// workspace. On a hit, fields are filled in but never erased; on a miss
// a new contact is inserted.
func (s *ContactService) FindOrCreate(workspaceID uuid.UUID, name, email, phone *string) (*ContactResolution, error) {
	var key string
	switch {
	case email != nil && *email != "":
		key = *email
	case phone != nil && *phone != "":
		key = *phone
	default:
		return nil, apperror.InvalidInput("Email or phone required")
	}

	existing, err := s.db.Contacts.FindByKey(workspaceID, key)
	if err == nil {
		if err := s.db.Contacts.FillGaps(existing.ID, name, email, phone); err != nil {
			return nil, err
		}
		return &ContactResolution{ID: existing.ID, Created: false}, nil
	}
	if !models.IsNotFound(err) {
		return nil, err
	}

	contact := &models.Contact{
		WorkspaceID: workspaceID,
		Email:       email,
		Phone:       phone,
		Name:        name,
	}
	if err := s.db.Contacts.Create(contact); err != nil {
		return nil, err
	}
	return &ContactResolution{ID: contact.ID, Created: true}, nil
}

// GetOrCreateConversation returns the single conversation for a
// (workspace, contact) pair, creating it open on first need.
func (s *ContactService) GetOrCreateConversation(workspaceID, contactID uuid.UUID) (uuid.UUID, error) {
	conv, err := s.db.Conversations.GetByContact(workspaceID, contactID)
	if err == nil {
		return conv.ID, nil
	}
	if !models.IsNotFound(err) {
		return uuid.Nil, err
	}
	created := &models.Conversation{
		WorkspaceID: workspaceID,
		ContactID:   contactID,
		Status:      models.ConversationOpen,
	}
	if err := s.db.Conversations.Create(created); err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

// List retrieves a workspace's contacts with message counts.
func (s *ContactService) List(workspaceID uuid.UUID) ([]models.ContactListItem, error) {
	return s.db.Contacts.List(workspaceID)
}

// Get retrieves one contact.
func (s *ContactService) Get(workspaceID, contactID uuid.UUID) (*models.Contact, error) {
	contact, err := s.db.Contacts.Get(workspaceID, contactID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Contact not found")
		}
		return nil, err
	}
	return contact, nil
}

// GetPublicForm retrieves the intake form shown on the public page.
func (s *ContactService) GetPublicForm(workspaceID uuid.UUID) (*PublicContactForm, error) {
	workspace, err := s.db.Workspaces.Get(workspaceID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Form not found")
		}
		return nil, err
	}
	form, err := s.db.ContactForms.Get(workspaceID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Form not found")
		}
		return nil, err
	}
	return &PublicContactForm{
		WorkspaceID:   workspace.ID,
		WorkspaceName: workspace.Name,
		FormName:      form.Name,
		Fields:        form.Fields,
	}, nil
}

// SubmitPublicForm handles a customer intake submission: resolve the
// contact, thread the message into their conversation, and best-effort
// send the welcome reply on whichever connected channel the customer
// supplied.
func (s *ContactService) SubmitPublicForm(ctx context.Context, workspaceID uuid.UUID, sub ContactFormSubmission) (*ContactResolution, error) {
	workspace, err := s.db.Workspaces.Get(workspaceID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Workspace not found")
		}
		return nil, err
	}

	resolution, err := s.FindOrCreate(workspaceID, sub.Name, sub.Email, sub.Phone)
	if err != nil {
		return nil, err
	}
	conversationID, err := s.GetOrCreateConversation(workspaceID, resolution.ID)
	if err != nil {
		return nil, err
	}

	body := ""
	if sub.Message != nil {
		body = *sub.Message
	}
	message := &models.Message{
		WorkspaceID:    workspaceID,
		ConversationID: conversationID,
		Direction:      models.DirectionIn,
		Channel:        models.ChannelEmail,
		Body:           body,
	}
	if err := s.db.Messages.Create(message); err != nil {
		return nil, err
	}
	if err := s.db.Conversations.Touch(conversationID); err != nil {
		return nil, err
	}

	welcome := defaultWelcomeMessage
	if form, err := s.db.ContactForms.Get(workspaceID); err == nil && form.WelcomeMessageTemplate != "" {
		welcome = form.WelcomeMessageTemplate
	}
	name := "there"
	if sub.Name != nil && *sub.Name != "" {
		name = *sub.Name
	}
	welcome = strings.ReplaceAll(welcome, "{name}", name)

	if sub.Email != nil && *sub.Email != "" && workspace.EmailConnected {
		if _, err := s.notifier.SendEmail(ctx, workspaceID, *sub.Email, "We received your message", welcome); err != nil {
			s.log.WithFields(map[string]interface{}{
				"workspace_id": workspaceID.String(),
				"error":        err.Error(),
			}).Warn("welcome email delivery failed")
		}
	}
	if sub.Phone != nil && *sub.Phone != "" && workspace.SMSConnected {
		if _, err := s.notifier.SendSMS(ctx, workspaceID, *sub.Phone, truncateSMS(welcome)); err != nil {
			s.log.WithFields(map[string]interface{}{
				"workspace_id": workspaceID.String(),
				"error":        err.Error(),
			}).Warn("welcome sms delivery failed")
		}
	}

	return resolution, nil
}

// truncateSMS caps a message body at the single-segment SMS length.
func truncateSMS(body string) string {
	if len(body) > 160 {
		return body[:160]
	}
	return body
}
