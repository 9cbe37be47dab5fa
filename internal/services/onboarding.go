package services

import (
	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
)

const activationGateMessage = "Cannot activate: connect at least one communication channel, add a booking type, and set availability."

// OnboardingSteps is the setup checklist, recomputed from source rows on
// every read so it can never drift.
type OnboardingSteps struct {
	Workspace        bool `json:"workspace"`
	EmailOrSMS       bool `json:"emailOrSms"`
	ContactForm      bool `json:"contactForm"`
	BookingTypes     bool `json:"bookingTypes"`
	PostBookingForms bool `json:"postBookingForms"`
	Inventory        bool `json:"inventory"`
	Staff            bool `json:"staff"`
	Active           bool `json:"active"`
	HasAvailability  bool `json:"hasAvailability"`
}

// OnboardingStatus is a workspace's readiness to leave draft.
type OnboardingStatus struct {
	Workspace   *models.Workspace `json:"workspace"`
	Steps       OnboardingSteps   `json:"steps"`
	CanActivate bool              `json:"canActivate"`
}

// OnboardingService computes workspace setup progress and gates the
// draft-to-active transition.
type OnboardingService struct {
	db *models.DB
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(db *models.DB) *OnboardingService {
	return &OnboardingService{db: db}
}

// Status evaluates the checklist for a workspace. Only emailOrSms,
// bookingTypes and hasAvailability gate activation; the rest are
// informational.
func (s *OnboardingService) Status(workspaceID uuid.UUID) (*OnboardingStatus, error) {
	workspace, err := s.db.Workspaces.Get(workspaceID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Workspace not found")
		}
		return nil, err
	}

	steps := OnboardingSteps{
		Workspace:  true,
		EmailOrSMS: workspace.EmailConnected || workspace.SMSConnected,
		Active:     workspace.Status == models.StatusActive,
	}
	if steps.ContactForm, err = s.db.ContactForms.Exists(workspaceID); err != nil {
		return nil, err
	}
	if steps.BookingTypes, err = s.db.BookingTypes.Exists(workspaceID); err != nil {
		return nil, err
	}
	if steps.HasAvailability, err = s.db.Availability.Exists(workspaceID); err != nil {
		return nil, err
	}
	if steps.PostBookingForms, err = s.db.FormTemplates.Exists(workspaceID); err != nil {
		return nil, err
	}
	if steps.Inventory, err = s.db.Inventory.Exists(workspaceID); err != nil {
		return nil, err
	}
	staffCount, err := s.db.Users.CountStaff(workspaceID)
	if err != nil {
		return nil, err
	}
	steps.Staff = staffCount > 0

	return &OnboardingStatus{
		Workspace:   workspace,
		Steps:       steps,
		CanActivate: steps.EmailOrSMS && steps.BookingTypes && steps.HasAvailability,
	}, nil
}

// Activate moves the workspace to active when the gate is satisfied.
// Activating an already active workspace is a harmless re-write.
func (s *OnboardingService) Activate(workspaceID uuid.UUID) (*models.Workspace, error) {
	status, err := s.Status(workspaceID)
	if err != nil {
		return nil, err
	}
	if !status.CanActivate {
		return nil, apperror.InvalidState(activationGateMessage)
	}
	if err := s.db.Workspaces.Activate(workspaceID); err != nil {
		return nil, err
	}
	return s.db.Workspaces.Get(workspaceID)
}
