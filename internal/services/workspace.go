package services

import (
	"time"

	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/auth"
	"opsdeck/internal/models"
)

// UpdateWorkspaceRequest is a partial settings update; absent fields are
// left untouched.
type UpdateWorkspaceRequest struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	Timezone     *string `json:"timezone"`
	ContactEmail *string `json:"contact_email"`
}

// EmailIntegrationRequest connects the workspace's email provider.
type EmailIntegrationRequest struct {
	Provider  string `json:"provider" binding:"required"`
	APIKey    string `json:"api_key"`
	FromEmail string `json:"from_email"`
}

// SMSIntegrationRequest connects the workspace's SMS provider.
type SMSIntegrationRequest struct {
	Provider   string `json:"provider" binding:"required"`
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	FromNumber string `json:"from_number"`
}

// ContactFormRequest defines or replaces the workspace intake form.
type ContactFormRequest struct {
	Name                   *string          `json:"name"`
	Fields                 models.FieldList `json:"fields"`
	WelcomeMessageTemplate *string          `json:"welcome_message_template"`
}

// AddStaffRequest creates a staff login inside the workspace.
type AddStaffRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName *string `json:"full_name"`
}

// StaffMember is the staff shape returned to owners.
type StaffMember struct {
	ID       uuid.UUID       `json:"id"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	FullName *string         `json:"full_name"`
	JoinedAt *time.Time      `json:"joined_at"`
}

// WorkspaceService manages tenant settings, integrations and staff.
type WorkspaceService struct {
	db *models.DB
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(db *models.DB) *WorkspaceService {
	return &WorkspaceService{db: db}
}

// Get retrieves a workspace for one of its members. Absence and lack of
// access look the same to the caller.
func (s *WorkspaceService) Get(workspaceID, userID uuid.UUID) (*models.Workspace, error) {
	workspace, err := s.db.Workspaces.GetForUser(workspaceID, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Workspace not found")
		}
		return nil, err
	}
	return workspace, nil
}

// Update applies a partial settings change and returns the result.
func (s *WorkspaceService) Update(workspaceID, userID uuid.UUID, req UpdateWorkspaceRequest) (*models.Workspace, error) {
	if _, err := s.Get(workspaceID, userID); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, apperror.InvalidInput("Invalid timezone")
		}
		fields["timezone"] = *req.Timezone
	}
	if req.ContactEmail != nil {
		fields["contact_email"] = *req.ContactEmail
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		if err := s.db.Workspaces.UpdateFields(workspaceID, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(workspaceID, userID)
}

// SetEmailIntegration stores the email provider config and flips the
// connected flag.
func (s *WorkspaceService) SetEmailIntegration(workspaceID, userID uuid.UUID, req EmailIntegrationRequest) (*models.Workspace, error) {
	if _, err := s.Get(workspaceID, userID); err != nil {
		return nil, err
	}
	config := models.JSONB{
		"provider":   req.Provider,
		"api_key":    req.APIKey,
		"from_email": req.FromEmail,
	}
	if _, err := s.db.Integrations.Upsert(workspaceID, "email", config); err != nil {
		return nil, err
	}
	if err := s.db.Workspaces.MarkChannelConnected(workspaceID, models.ChannelEmail); err != nil {
		return nil, err
	}
	return s.Get(workspaceID, userID)
}

// SetSMSIntegration stores the SMS provider config and flips the
// connected flag.
func (s *WorkspaceService) SetSMSIntegration(workspaceID, userID uuid.UUID, req SMSIntegrationRequest) (*models.Workspace, error) {
	if _, err := s.Get(workspaceID, userID); err != nil {
		return nil, err
	}
	config := models.JSONB{
		"provider":    req.Provider,
		"account_sid": req.AccountSID,
		"auth_token":  req.AuthToken,
		"from_number": req.FromNumber,
	}
	if _, err := s.db.Integrations.Upsert(workspaceID, "sms", config); err != nil {
		return nil, err
	}
	if err := s.db.Workspaces.MarkChannelConnected(workspaceID, models.ChannelSMS); err != nil {
		return nil, err
	}
	return s.Get(workspaceID, userID)
}

// UpsertContactForm creates or replaces the single intake form. Missing
// fields fall back to a minimal default form.
func (s *WorkspaceService) UpsertContactForm(workspaceID, userID uuid.UUID, req ContactFormRequest) (*models.ContactForm, error) {
	if _, err := s.Get(workspaceID, userID); err != nil {
		return nil, err
	}
	name := "Contact"
	if req.Name != nil && *req.Name != "" {
		name = *req.Name
	}
	fields := req.Fields
	if fields == nil {
		fields = models.FieldList{
			{Name: "name", Type: "text"},
			{Name: "email", Type: "email"},
			{Name: "message", Type: "textarea"},
		}
	}
	welcome := ""
	if req.WelcomeMessageTemplate != nil {
		welcome = *req.WelcomeMessageTemplate
	}
	form := &models.ContactForm{
		WorkspaceID:            workspaceID,
		Name:                   name,
		Fields:                 fields,
		WelcomeMessageTemplate: welcome,
	}
	if err := s.db.ContactForms.Upsert(form); err != nil {
		return nil, err
	}
	return s.db.ContactForms.Get(workspaceID)
}

// ListStaff retrieves the workspace's staff members.
func (s *WorkspaceService) ListStaff(workspaceID, userID uuid.UUID) ([]StaffMember, error) {
	if _, err := s.Get(workspaceID, userID); err != nil {
		return nil, err
	}
	users, err := s.db.Users.ListStaff(workspaceID)
	if err != nil {
		return nil, err
	}
	staff := make([]StaffMember, len(users))
	for i, u := range users {
		staff[i] = StaffMember{
			ID:       u.ID,
			Email:    u.Email,
			Role:     u.Role,
			FullName: u.FullName,
			JoinedAt: u.JoinedAt,
		}
	}
	return staff, nil
}

// AddStaff creates a staff login inside the workspace.
func (s *WorkspaceService) AddStaff(workspaceID, userID uuid.UUID, req AddStaffRequest) (*StaffMember, error) {
	if _, err := s.Get(workspaceID, userID); err != nil {
		return nil, err
	}
	exists, err := s.db.Users.ExistsInWorkspace(workspaceID, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.InvalidInput("A user with this email already exists in this workspace")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &models.WorkspaceUser{
		WorkspaceID:  workspaceID,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleStaff,
		FullName:     req.FullName,
		Permissions:  models.JSONB{},
		JoinedAt:     &now,
	}
	if err := s.db.Users.Create(user); err != nil {
		return nil, err
	}
	return &StaffMember{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		FullName: user.FullName,
		JoinedAt: user.JoinedAt,
	}, nil
}
