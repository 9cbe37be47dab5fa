package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdeck/internal/apperror"
	"opsdeck/internal/auth"
	"opsdeck/internal/models"
)

func newAuthService(db *models.DB) (*AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(db, tokens), tokens
}

func TestRegisterCreatesOwnerAndDraftWorkspace(t *testing.T) {
	db := newTestDB(t)
	svc, tokens := newAuthService(db)

	session, err := svc.Register(RegisterRequest{
		Email:         "owner@example.com",
		Password:      "hunter2hunter2",
		FullName:      strPtr("Sam Owner"),
		WorkspaceName: "Shear Genius",
		Timezone:      strPtr("America/New_York"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, session.User.Role)
	assert.Equal(t, models.StatusDraft, session.Workspace.Status)

	claims, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, session.Workspace.ID, claims.WorkspaceID)
	assert.Equal(t, "owner", claims.Role)

	ws, err := db.Workspaces.Get(session.Workspace.ID)
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", ws.Timezone)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)

	req := RegisterRequest{
		Email:         "owner@example.com",
		Password:      "hunter2hunter2",
		WorkspaceName: "Shear Genius",
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	req.WorkspaceName = "Another Shop"
	_, err = svc.Register(req)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Email already registered", appErr.Message)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)

	registered, err := svc.Register(RegisterRequest{
		Email:         "owner@example.com",
		Password:      "hunter2hunter2",
		WorkspaceName: "Shear Genius",
	})
	require.NoError(t, err)

	session, err := svc.Login(LoginRequest{Email: "owner@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Login(LoginRequest{Email: "owner@example.com", Password: "wrong"})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid email or password", appErr.Message)

	// Unknown email reads the same as a bad password.
	_, err = svc.Login(LoginRequest{Email: "nobody@example.com", Password: "hunter2hunter2"})
	appErr, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid email or password", appErr.Message)
}

func TestMe(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)

	session, err := svc.Register(RegisterRequest{
		Email:         "owner@example.com",
		Password:      "hunter2hunter2",
		FullName:      strPtr("Sam Owner"),
		WorkspaceName: "Shear Genius",
	})
	require.NoError(t, err)

	profile, err := svc.Me(session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", profile.Email)
	assert.Equal(t, session.Workspace.ID, profile.Workspace.ID)
	assert.NotNil(t, profile.Permissions)

	_, err = svc.Me(uuid.New())
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "User not found", appErr.Message)
}
