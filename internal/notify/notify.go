// Package notify delivers outbound email and SMS through the providers
// a workspace has connected. Every attempt is recorded as an
// integration log row; failures are surfaced on the integration record
// rather than returned to callers' customers.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"opsdeck/internal/models"
	"opsdeck/pkg/logger"
)

// Service sends messages to contacts on behalf of a workspace. A
// successful send returns the provider's message id.
type Service interface {
	SendEmail(ctx context.Context, workspaceID uuid.UUID, to, subject, body string) (string, error)
	SendSMS(ctx context.Context, workspaceID uuid.UUID, to, body string) (string, error)
}

// Notifier implements Service against the Resend and Twilio HTTP APIs.
type Notifier struct {
	db     *models.DB
	client *http.Client
	log    logger.Logger

	// Base URLs are overridable for tests.
	ResendBaseURL string
	TwilioBaseURL string
}

// NewNotifier creates a new Notifier
func NewNotifier(db *models.DB, log logger.Logger) *Notifier {
	return &Notifier{
		db:            db,
		client:        &http.Client{Timeout: 10 * time.Second},
		log:           log,
		ResendBaseURL: "https://api.resend.com",
		TwilioBaseURL: "https://api.twilio.com",
	}
}

// SendEmail delivers an email through the workspace's Resend integration.
func (n *Notifier) SendEmail(ctx context.Context, workspaceID uuid.UUID, to, subject, body string) (string, error) {
	integration, err := n.db.Integrations.GetActive(workspaceID, "email")
	if err != nil {
		return "", fmt.Errorf("no active email integration: %w", err)
	}

	payload := map[string]interface{}{
		"from":    integration.Config["from_email"],
		"to":      []string{to},
		"subject": subject,
		"html":    body,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.ResendBaseURL+"/emails", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	apiKey, _ := integration.Config["api_key"].(string)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	return n.deliver(workspaceID, "email", to, req, "id")
}

// SendSMS delivers a text message through the workspace's Twilio
// integration.
func (n *Notifier) SendSMS(ctx context.Context, workspaceID uuid.UUID, to, body string) (string, error) {
	integration, err := n.db.Integrations.GetActive(workspaceID, "sms")
	if err != nil {
		return "", fmt.Errorf("no active sms integration: %w", err)
	}

	accountSID, _ := integration.Config["account_sid"].(string)
	authToken, _ := integration.Config["auth_token"].(string)
	fromNumber, _ := integration.Config["from_number"].(string)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", n.TwilioBaseURL, accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(accountSID, authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return n.deliver(workspaceID, "sms", to, req, "sid")
}

// deliver executes the request, records the attempt, and extracts the
// provider message id from the named response field.
func (n *Notifier) deliver(workspaceID uuid.UUID, integrationType, recipient string, req *http.Request, idField string) (string, error) {
	resp, err := n.client.Do(req)

	success := err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300
	var detail *string
	var externalID string
	if err != nil {
		s := err.Error()
		detail = &s
	} else {
		defer resp.Body.Close()
		if success {
			var parsed map[string]interface{}
			if decodeErr := json.NewDecoder(resp.Body).Decode(&parsed); decodeErr == nil {
				externalID, _ = parsed[idField].(string)
			}
		} else {
			s := fmt.Sprintf("provider returned %d", resp.StatusCode)
			detail = &s
		}
	}

	logEntry := &models.IntegrationLog{
		WorkspaceID: workspaceID,
		Type:        integrationType,
		Recipient:   recipient,
		Success:     success,
		Detail:      detail,
	}
	if logErr := n.db.IntegrationLogs.Create(logEntry); logErr != nil {
		n.log.WithField("error", logErr.Error()).Warn("failed to record integration log")
	}

	if !success {
		msg := "delivery failed"
		if detail != nil {
			msg = *detail
		}
		if setErr := n.db.Integrations.SetLastError(workspaceID, integrationType, msg); setErr != nil {
			n.log.WithField("error", setErr.Error()).Warn("failed to record integration error")
		}
		return "", fmt.Errorf("%s delivery to %s failed: %s", integrationType, recipient, msg)
	}

	if touchErr := n.db.Integrations.TouchUsed(workspaceID, integrationType); touchErr != nil {
		n.log.WithField("error", touchErr.Error()).Warn("failed to stamp integration use")
	}
	return externalID, nil
}
