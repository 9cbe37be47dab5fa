package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
	"opsdeck/internal/notify"
	"opsdeck/pkg/logger"
)

const formDueAfter = 7 * 24 * time.Hour

// PublicBookingRequest is a customer's slot request from the public
// booking page.
type PublicBookingRequest struct {
	BookingTypeID uuid.UUID `json:"booking_type_id" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	Name          string    `json:"name" binding:"required"`
	Email         *string   `json:"email"`
	Phone         *string   `json:"phone"`
	Notes         *string   `json:"notes"`
}

// PublicBookingResult identifies the created booking and its contact.
type PublicBookingResult struct {
	Success   bool      `json:"success"`
	BookingID uuid.UUID `json:"bookingId"`
	ContactID uuid.UUID `json:"contactId"`
}

// PublicBookingPage is the public view of a workspace's bookable
// services.
type PublicBookingPage struct {
	WorkspaceID   uuid.UUID            `json:"workspaceId"`
	WorkspaceName string               `json:"workspaceName"`
	BookingTypes  []models.BookingType `json:"bookingTypes"`
}

// CreateBookingTypeRequest defines a new bookable service.
type CreateBookingTypeRequest struct {
	Name            string  `json:"name" binding:"required"`
	DurationMinutes int     `json:"duration_minutes" binding:"required"`
	Location        *string `json:"location"`
	IsOnline        bool    `json:"is_online"`
}

// BookingService turns slot requests into confirmed bookings with their
// side effects.
type BookingService struct {
	db       *models.DB
	contacts *ContactService
	notifier notify.Service
	log      logger.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(db *models.DB, contacts *ContactService, notifier notify.Service, log logger.Logger) *BookingService {
	return &BookingService{db: db, contacts: contacts, notifier: notifier, log: log}
}

// CreatePublic handles a customer booking: resolve the contact, claim
// the instant, confirm, and fan out side effects. Notification failures
// are logged and never roll back the booking. A non-cancelled booking
// already holding the exact instant yields Conflict; the check is backed
// by a partial unique index so concurrent requests cannot both win.
func (s *BookingService) CreatePublic(ctx context.Context, workspaceID uuid.UUID, req PublicBookingRequest) (*PublicBookingResult, error) {
	workspace, err := s.db.Workspaces.Get(workspaceID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Workspace not found")
		}
		return nil, err
	}
	if workspace.Status != models.StatusActive {
		return nil, apperror.InvalidState("Bookings are not open")
	}

	bookingType, err := s.db.BookingTypes.Get(workspaceID, req.BookingTypeID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.InvalidInput("Invalid booking type")
		}
		return nil, err
	}

	var name *string
	if req.Name != "" {
		name = &req.Name
	}
	resolution, err := s.contacts.FindOrCreate(workspaceID, name, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}

	occupied, err := s.db.Bookings.ExistsAt(workspaceID, req.BookingTypeID, req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, apperror.Conflict("That time is no longer available")
	}

	booking := &models.Booking{
		WorkspaceID:   workspaceID,
		ContactID:     resolution.ID,
		BookingTypeID: req.BookingTypeID,
		ScheduledAt:   req.ScheduledAt,
		Status:        models.BookingConfirmed,
		Notes:         req.Notes,
	}
	if err := s.db.Bookings.Create(booking); err != nil {
		// The unique index may have rejected a concurrent claim of the
		// same instant between our check and the insert.
		if taken, checkErr := s.db.Bookings.ExistsAt(workspaceID, req.BookingTypeID, req.ScheduledAt); checkErr == nil && taken {
			return nil, apperror.Conflict("That time is no longer available")
		}
		return nil, err
	}

	when := req.ScheduledAt.In(workspace.Location()).Format("Jan 2, 2006 at 3:04 PM")
	confirmation := fmt.Sprintf("Your booking for %s on %s is confirmed.", bookingType.Name, when)
	if req.Email != nil && *req.Email != "" {
		if _, err := s.notifier.SendEmail(ctx, workspaceID, *req.Email, "Booking confirmed", confirmation); err != nil {
			s.log.WithFields(map[string]interface{}{
				"booking_id": booking.ID.String(),
				"error":      err.Error(),
			}).Warn("confirmation email delivery failed")
		}
	}
	if req.Phone != nil && *req.Phone != "" {
		if _, err := s.notifier.SendSMS(ctx, workspaceID, *req.Phone, truncateSMS(confirmation)); err != nil {
			s.log.WithFields(map[string]interface{}{
				"booking_id": booking.ID.String(),
				"error":      err.Error(),
			}).Warn("confirmation sms delivery failed")
		}
	}

	templates, err := s.db.FormTemplates.ForBookingType(workspaceID, req.BookingTypeID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	dueAt := now.Add(formDueAfter)
	for _, template := range templates {
		sub := &models.FormSubmission{
			WorkspaceID:    workspaceID,
			BookingID:      booking.ID,
			FormTemplateID: template.ID,
			ContactID:      resolution.ID,
			Status:         models.SubmissionPending,
			DueAt:          &dueAt,
			SentAt:         &now,
		}
		if err := s.db.FormSubmissions.Create(sub); err != nil {
			return nil, err
		}
	}

	return &PublicBookingResult{Success: true, BookingID: booking.ID, ContactID: resolution.ID}, nil
}

// UpdateStatus overwrites a booking's status; any status can follow any
// other.
func (s *BookingService) UpdateStatus(workspaceID, bookingID uuid.UUID, status models.BookingStatus) (*models.Booking, error) {
	if !models.ValidBookingStatus(status) {
		return nil, apperror.InvalidInput(fmt.Sprintf("Invalid status: %s", status))
	}
	booking, err := s.db.Bookings.UpdateStatus(workspaceID, bookingID, status)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Booking not found")
		}
		return nil, err
	}
	return booking, nil
}

// List retrieves a workspace's bookings with optional date and status
// filters.
func (s *BookingService) List(workspaceID uuid.UUID, filters models.BookingFilters) ([]models.BookingListItem, error) {
	if filters.Status != nil && !models.ValidBookingStatus(*filters.Status) {
		return nil, apperror.InvalidInput(fmt.Sprintf("Invalid status: %s", *filters.Status))
	}
	return s.db.Bookings.List(workspaceID, filters)
}

// ListTypes retrieves a workspace's booking types.
func (s *BookingService) ListTypes(workspaceID uuid.UUID) ([]models.BookingType, error) {
	return s.db.BookingTypes.List(workspaceID)
}

// CreateType defines a new bookable service.
func (s *BookingService) CreateType(workspaceID uuid.UUID, req CreateBookingTypeRequest) (*models.BookingType, error) {
	if req.DurationMinutes <= 0 {
		return nil, apperror.InvalidInput("duration_minutes must be positive")
	}
	bookingType := &models.BookingType{
		WorkspaceID:     workspaceID,
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Location:        req.Location,
		IsOnline:        req.IsOnline,
	}
	if err := s.db.BookingTypes.Create(bookingType); err != nil {
		return nil, err
	}
	return bookingType, nil
}

// PublicPage retrieves the public booking page for a workspace.
func (s *BookingService) PublicPage(workspaceID uuid.UUID) (*PublicBookingPage, error) {
	workspace, err := s.db.Workspaces.Get(workspaceID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Workspace not found")
		}
		return nil, err
	}
	types, err := s.db.BookingTypes.List(workspaceID)
	if err != nil {
		return nil, err
	}
	return &PublicBookingPage{
		WorkspaceID:   workspace.ID,
		WorkspaceName: workspace.Name,
		BookingTypes:  types,
	}, nil
}
