package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Custom types to match PostgreSQL enums
type WorkspaceStatus string
type UserRole string
type BookingStatus string
type SubmissionStatus string
type Direction string
type Channel string

const (
	// Workspace statuses. Transitions only ever go draft -> active.
	StatusDraft  WorkspaceStatus = "draft"
	StatusActive WorkspaceStatus = "active"

	// Workspace user roles
	RoleOwner UserRole = "owner"
	RoleStaff UserRole = "staff"

	// Booking statuses
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
	BookingCancelled BookingStatus = "cancelled"

	// Form submission statuses
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionOverdue   SubmissionStatus = "overdue"
	SubmissionCompleted SubmissionStatus = "completed"

	// Message directions
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"

	// Delivery channels
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"

	// Conversation statuses
	ConversationOpen   = "open"
	ConversationClosed = "closed"
)

// ValidBookingStatus reports whether s is one of the known booking statuses.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingConfirmed, BookingCompleted, BookingNoShow, BookingCancelled:
		return true
	}
	return false
}

// JSONB handles JSON data storage
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return errors.New("unsupported type for JSONB")
	}
}

// FormField is one entry of a form definition.
type FormField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
}

// FieldList stores an ordered list of form fields as a JSON column.
type FieldList []FormField

// Value implements the driver.Valuer interface
func (f FieldList) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	return json.Marshal(f)
}

// Scan implements the sql.Scanner interface
func (f *FieldList) Scan(value interface{}) error {
	if value == nil {
		*f = FieldList{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return errors.New("unsupported type for FieldList")
	}
}
