package services

import (
	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
)

// CreateFormTemplateRequest defines a new post-booking form.
type CreateFormTemplateRequest struct {
	Name                string           `json:"name" binding:"required"`
	Description         *string          `json:"description"`
	Fields              models.FieldList `json:"fields"`
	LinkedBookingTypeID *uuid.UUID       `json:"linked_booking_type_id"`
}

// PublicFormView is the customer-facing view of one form submission.
type PublicFormView struct {
	ID     uuid.UUID               `json:"id"`
	Name   string                  `json:"name"`
	Fields models.FieldList        `json:"fields"`
	Status models.SubmissionStatus `json:"status"`
}

// FormService manages post-booking form templates and submissions.
type FormService struct {
	db *models.DB
}

// NewFormService creates a new FormService
func NewFormService(db *models.DB) *FormService {
	return &FormService{db: db}
}

// ListTemplates retrieves a workspace's form templates.
func (s *FormService) ListTemplates(workspaceID uuid.UUID) ([]models.FormTemplateListItem, error) {
	return s.db.FormTemplates.List(workspaceID)
}

// CreateTemplate defines a new post-booking form. A linked booking type
// must belong to the workspace; a nil link applies the form to every
// type.
func (s *FormService) CreateTemplate(workspaceID uuid.UUID, req CreateFormTemplateRequest) (*models.FormTemplate, error) {
	if req.LinkedBookingTypeID != nil {
		if _, err := s.db.BookingTypes.Get(workspaceID, *req.LinkedBookingTypeID); err != nil {
			if models.IsNotFound(err) {
				return nil, apperror.InvalidInput("Invalid booking type")
			}
			return nil, err
		}
	}
	fields := req.Fields
	if fields == nil {
		fields = models.FieldList{}
	}
	template := &models.FormTemplate{
		WorkspaceID:         workspaceID,
		Name:                req.Name,
		Description:         req.Description,
		Fields:              fields,
		LinkedBookingTypeID: req.LinkedBookingTypeID,
	}
	if err := s.db.FormTemplates.Create(template); err != nil {
		return nil, err
	}
	return template, nil
}

// ListSubmissions retrieves a workspace's submissions, optionally
// filtered by status.
func (s *FormService) ListSubmissions(workspaceID uuid.UUID, status *models.SubmissionStatus) ([]models.FormSubmissionListItem, error) {
	return s.db.FormSubmissions.List(workspaceID, status)
}

// GetSubmission retrieves one submission with its joined details.
func (s *FormService) GetSubmission(workspaceID, submissionID uuid.UUID) (*models.FormSubmissionListItem, error) {
	item, err := s.db.FormSubmissions.Get(workspaceID, submissionID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Form submission not found")
		}
		return nil, err
	}
	return item, nil
}

// PublicForm retrieves the form a customer opens from their submission
// link.
func (s *FormService) PublicForm(submissionID uuid.UUID) (*PublicFormView, error) {
	sub, err := s.db.FormSubmissions.GetPublic(submissionID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Form not found")
		}
		return nil, err
	}
	template, err := s.db.FormSubmissions.TemplateFor(sub)
	if err != nil {
		return nil, err
	}
	return &PublicFormView{
		ID:     sub.ID,
		Name:   template.Name,
		Fields: template.Fields,
		Status: sub.Status,
	}, nil
}

// SubmitPublic stores a customer's answers. Completed is terminal:
// resubmitting fails.
func (s *FormService) SubmitPublic(submissionID uuid.UUID, data models.JSONB) error {
	sub, err := s.db.FormSubmissions.GetPublic(submissionID)
	if err != nil {
		if models.IsNotFound(err) {
			return apperror.NotFound("Form not found")
		}
		return err
	}
	if sub.Status == models.SubmissionCompleted {
		return apperror.InvalidState("Form already completed")
	}
	return s.db.FormSubmissions.Complete(submissionID, data)
}
