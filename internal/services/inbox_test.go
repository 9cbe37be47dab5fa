package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
	"opsdeck/internal/notify"
	"opsdeck/pkg/logger"
)

type inboxFixture struct {
	db      *models.DB
	svc     *InboxService
	mock    *notify.Mock
	ws      *models.Workspace
	contact *models.Contact
	conv    *models.Conversation
}

func newInboxFixture(t *testing.T) *inboxFixture {
	t.Helper()
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusActive)
	contact := createContact(t, db, ws.ID, "Ada", "ada@example.com", "+15550001")
	conv := &models.Conversation{
		WorkspaceID: ws.ID,
		ContactID:   contact.ID,
		Status:      models.ConversationOpen,
	}
	require.NoError(t, db.Conversations.Create(conv))
	mock := notify.NewMock()
	return &inboxFixture{
		db:      db,
		svc:     NewInboxService(db, mock, logger.NewDiscardLogger()),
		mock:    mock,
		ws:      ws,
		contact: contact,
		conv:    conv,
	}
}

func (f *inboxFixture) addInbound(t *testing.T, body string) {
	t.Helper()
	require.NoError(t, f.db.Messages.Create(&models.Message{
		WorkspaceID:    f.ws.ID,
		ConversationID: f.conv.ID,
		Direction:      models.DirectionIn,
		Channel:        models.ChannelEmail,
		Body:           body,
	}))
}

func TestListConversationsDerivesUnread(t *testing.T) {
	f := newInboxFixture(t)
	f.addInbound(t, "Hello?")

	rows, err := f.svc.ListConversations(f.ws.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasUnread)
	require.NotNil(t, rows[0].LastMessage)
	assert.Equal(t, "Hello?", *rows[0].LastMessage)

	require.NoError(t, f.svc.MarkRead(f.ws.ID, f.conv.ID))
	rows, err = f.svc.ListConversations(f.ws.ID)
	require.NoError(t, err)
	assert.False(t, rows[0].HasUnread)

	// A new inbound message after the read receipt flips it back.
	time.Sleep(10 * time.Millisecond)
	f.addInbound(t, "Still there?")
	rows, err = f.svc.ListConversations(f.ws.ID)
	require.NoError(t, err)
	assert.True(t, rows[0].HasUnread)
}

func TestListConversationsOutboundLastIsRead(t *testing.T) {
	f := newInboxFixture(t)
	f.addInbound(t, "Hello?")
	_, err := f.svc.SendReply(context.Background(), f.ws.ID, f.conv.ID, ReplyRequest{
		Channel: models.ChannelEmail,
		Body:    "Hi Ada!",
	})
	require.NoError(t, err)

	rows, err := f.svc.ListConversations(f.ws.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].HasUnread)
}

func TestSendReplyEmail(t *testing.T) {
	f := newInboxFixture(t)

	msg, err := f.svc.SendReply(context.Background(), f.ws.ID, f.conv.ID, ReplyRequest{
		Channel: models.ChannelEmail,
		Body:    "See you Monday.",
		Subject: strPtr("Your appointment"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DirectionOut, msg.Direction)
	require.NotNil(t, msg.ExternalID)
	assert.Equal(t, "mock-email-1", *msg.ExternalID)

	emails := f.mock.ByChannel("email")
	require.Len(t, emails, 1)
	assert.Equal(t, "ada@example.com", emails[0].To)
	assert.Equal(t, "Your appointment", emails[0].Subject)

	conv, err := f.db.Conversations.GetByContact(f.ws.ID, f.contact.ID)
	require.NoError(t, err)
	require.NotNil(t, conv.AutomationPausedUntil)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *conv.AutomationPausedUntil, time.Minute)
}

func TestSendReplySMS(t *testing.T) {
	f := newInboxFixture(t)

	msg, err := f.svc.SendReply(context.Background(), f.ws.ID, f.conv.ID, ReplyRequest{
		Channel: models.ChannelSMS,
		Body:    "Running late, be there in 10.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChannelSMS, msg.Channel)

	texts := f.mock.ByChannel("sms")
	require.Len(t, texts, 1)
	assert.Equal(t, "+15550001", texts[0].To)
}

func TestSendReplyChannelValidation(t *testing.T) {
	f := newInboxFixture(t)

	_, err := f.svc.SendReply(context.Background(), f.ws.ID, f.conv.ID, ReplyRequest{
		Channel: "carrier-pigeon",
		Body:    "hi",
	})
	_, ok := apperror.As(err)
	assert.True(t, ok)
}

func TestSendReplyRequiresContactAddress(t *testing.T) {
	db := newTestDB(t)
	ws := createWorkspace(t, db, models.StatusActive)
	contact := createContact(t, db, ws.ID, "Ada", "ada@example.com", "")
	conv := &models.Conversation{WorkspaceID: ws.ID, ContactID: contact.ID, Status: models.ConversationOpen}
	require.NoError(t, db.Conversations.Create(conv))
	svc := NewInboxService(db, notify.NewMock(), logger.NewDiscardLogger())

	_, err := svc.SendReply(context.Background(), ws.ID, conv.ID, ReplyRequest{
		Channel: models.ChannelSMS,
		Body:    "hi",
	})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Contact has no phone", appErr.Message)
}

func TestSendReplyKeepsMessageOnDeliveryFailure(t *testing.T) {
	f := newInboxFixture(t)
	f.mock.EmailErr = errors.New("provider down")

	msg, err := f.svc.SendReply(context.Background(), f.ws.ID, f.conv.ID, ReplyRequest{
		Channel: models.ChannelEmail,
		Body:    "See you Monday.",
	})
	require.NoError(t, err)
	assert.Nil(t, msg.ExternalID)

	messages, err := f.svc.Messages(f.ws.ID, f.conv.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestGetConversationScopedToWorkspace(t *testing.T) {
	f := newInboxFixture(t)
	other := createWorkspace(t, f.db, models.StatusActive)

	_, err := f.svc.GetConversation(other.ID, f.conv.ID)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Conversation not found", appErr.Message)

	_, err = f.svc.GetConversation(f.ws.ID, uuid.New())
	_, ok = apperror.As(err)
	assert.True(t, ok)
}
