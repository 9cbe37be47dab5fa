package services

import (
	"time"

	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/auth"
	"opsdeck/internal/models"
)

// RegisterRequest creates an owner account and their draft workspace.
type RegisterRequest struct {
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=8"`
	FullName      *string `json:"full_name"`
	WorkspaceName string  `json:"workspace_name" binding:"required"`
	Address       *string `json:"address"`
	Timezone      *string `json:"timezone"`
}

// LoginRequest authenticates an existing user.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SessionUser is the user shape returned by auth endpoints.
type SessionUser struct {
	ID       uuid.UUID       `json:"id"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	FullName *string         `json:"full_name"`
}

// SessionWorkspace is the workspace shape returned by auth endpoints.
type SessionWorkspace struct {
	ID     uuid.UUID              `json:"id"`
	Name   string                 `json:"name"`
	Status models.WorkspaceStatus `json:"status"`
}

// Session is a signed token plus its subject.
type Session struct {
	Token     string           `json:"token"`
	User      SessionUser      `json:"user"`
	Workspace SessionWorkspace `json:"workspace"`
}

// Profile is the authenticated user's own view.
type Profile struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	Role        models.UserRole  `json:"role"`
	FullName    *string          `json:"full_name"`
	Permissions models.JSONB     `json:"permissions"`
	Workspace   SessionWorkspace `json:"workspace"`
}

// AuthService registers and authenticates workspace users.
type AuthService struct {
	db     *models.DB
	tokens *auth.TokenManager
}

// NewAuthService creates a new AuthService
func NewAuthService(db *models.DB, tokens *auth.TokenManager) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// Register creates an owner plus their draft workspace in one
// transaction and returns a signed session.
func (s *AuthService) Register(req RegisterRequest) (*Session, error) {
	exists, err := s.db.Users.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.InvalidInput("Email already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	timezone := "UTC"
	if req.Timezone != nil && *req.Timezone != "" {
		timezone = *req.Timezone
	}
	workspace := &models.Workspace{
		Name:     req.WorkspaceName,
		Address:  req.Address,
		Timezone: timezone,
		Status:   models.StatusDraft,
	}
	now := time.Now()
	user := &models.WorkspaceUser{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleOwner,
		FullName:     req.FullName,
		Permissions:  models.JSONB{},
		JoinedAt:     &now,
	}

	err = s.db.Transaction(func(tx *models.DB) error {
		if err := tx.Workspaces.Create(workspace); err != nil {
			return err
		}
		user.WorkspaceID = workspace.ID
		return tx.Users.Create(user)
	})
	if err != nil {
		return nil, err
	}

	return s.newSession(user, workspace)
}

// Login authenticates by email and password. Email is globally unique,
// so no workspace selector is needed.
func (s *AuthService) Login(req LoginRequest) (*Session, error) {
	user, err := s.db.Users.GetByEmail(req.Email)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperror.Unauthorized("Invalid email or password")
	}
	workspace, err := s.db.Workspaces.Get(user.WorkspaceID)
	if err != nil {
		return nil, err
	}
	return s.newSession(user, workspace)
}

// Me retrieves the authenticated user's profile.
func (s *AuthService) Me(userID uuid.UUID) (*Profile, error) {
	user, err := s.db.Users.Get(userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}
	workspace, err := s.db.Workspaces.Get(user.WorkspaceID)
	if err != nil {
		return nil, err
	}
	permissions := user.Permissions
	if permissions == nil {
		permissions = models.JSONB{}
	}
	return &Profile{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		FullName:    user.FullName,
		Permissions: permissions,
		Workspace: SessionWorkspace{
			ID:     workspace.ID,
			Name:   workspace.Name,
			Status: workspace.Status,
		},
	}, nil
}

func (s *AuthService) newSession(user *models.WorkspaceUser, workspace *models.Workspace) (*Session, error) {
	token, err := s.tokens.Generate(user.ID, workspace.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &Session{
		Token: token,
		User: SessionUser{
			ID:       user.ID,
			Email:    user.Email,
			Role:     user.Role,
			FullName: user.FullName,
		},
		Workspace: SessionWorkspace{
			ID:     workspace.ID,
			Name:   workspace.Name,
			Status: workspace.Status,
		},
	}, nil
}
