package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SentMessage captures one delivery made through the mock.
type SentMessage struct {
	WorkspaceID uuid.UUID
	Channel     string
	To          string
	Subject     string
	Body        string
}

// Mock is an in-memory Service for tests. It records every send and
// can be told to fail.
type Mock struct {
	mu       sync.Mutex
	Sent     []SentMessage
	EmailErr error
	SMSErr   error
}

// NewMock creates a new Mock
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendEmail(ctx context.Context, workspaceID uuid.UUID, to, subject, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EmailErr != nil {
		return "", m.EmailErr
	}
	m.Sent = append(m.Sent, SentMessage{WorkspaceID: workspaceID, Channel: "email", To: to, Subject: subject, Body: body})
	return fmt.Sprintf("mock-email-%d", len(m.Sent)), nil
}

func (m *Mock) SendSMS(ctx context.Context, workspaceID uuid.UUID, to, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SMSErr != nil {
		return "", m.SMSErr
	}
	m.Sent = append(m.Sent, SentMessage{WorkspaceID: workspaceID, Channel: "sms", To: to, Body: body})
	return fmt.Sprintf("mock-sms-%d", len(m.Sent)), nil
}

// ByChannel returns the sends made on one channel.
func (m *Mock) ByChannel(channel string) []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentMessage
	for _, s := range m.Sent {
		if s.Channel == channel {
			out = append(out, s)
		}
	}
	return out
}
