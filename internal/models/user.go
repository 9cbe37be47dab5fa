package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceUser is a staff member or owner of one workspace. Email is
// globally unique because login carries no workspace selector.
type WorkspaceUser struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID  uuid.UUID  `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	Email        string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         UserRole   `gorm:"column:role;not null" json:"role"`
	FullName     *string    `gorm:"column:full_name" json:"full_name"`
	Permissions  JSONB      `gorm:"column:permissions;type:jsonb;default:'{}'" json:"permissions"`
	JoinedAt     *time.Time `gorm:"column:joined_at" json:"joined_at"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the WorkspaceUser model
func (WorkspaceUser) TableName() string {
	return "workspace_users"
}

func (u *WorkspaceUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserManager provides persistence operations for WorkspaceUser
type UserManager struct {
	db *gorm.DB
}

// NewUserManager creates a new UserManager instance
func NewUserManager(db *gorm.DB) *UserManager {
	return &UserManager{db: db}
}

// Create creates a new workspace user
func (m *UserManager) Create(user *WorkspaceUser) error {
	return m.db.Create(user).Error
}

// Get retrieves a user by ID
func (m *UserManager) Get(id uuid.UUID) (*WorkspaceUser, error) {
	var user WorkspaceUser
	err := m.db.First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email. Emails are unique across all
// workspaces.
func (m *UserManager) GetByEmail(email string) (*WorkspaceUser, error) {
	var user WorkspaceUser
	err := m.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists reports whether any user with the given email exists.
func (m *UserManager) EmailExists(email string) (bool, error) {
	var count int64
	err := m.db.Model(&WorkspaceUser{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// GetMember retrieves a user only within the given workspace.
func (m *UserManager) GetMember(workspaceID, userID uuid.UUID) (*WorkspaceUser, error) {
	var user WorkspaceUser
	err := m.db.Where("id = ? AND workspace_id = ?", userID, workspaceID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsInWorkspace reports whether an email is already used inside a
// workspace.
func (m *UserManager) ExistsInWorkspace(workspaceID uuid.UUID, email string) (bool, error) {
	var count int64
	err := m.db.Model(&WorkspaceUser{}).
		Where("workspace_id = ? AND email = ?", workspaceID, email).
		Count(&count).Error
	return count > 0, err
}

// ListStaff retrieves the staff members of a workspace, newest first.
func (m *UserManager) ListStaff(workspaceID uuid.UUID) ([]WorkspaceUser, error) {
	var users []WorkspaceUser
	err := m.db.Where("workspace_id = ? AND role = ?", workspaceID, RoleStaff).
		Order("joined_at DESC").
		Find(&users).Error
	return users, err
}

// CountStaff counts staff members of a workspace.
func (m *UserManager) CountStaff(workspaceID uuid.UUID) (int64, error) {
	var count int64
	err := m.db.Model(&WorkspaceUser{}).
		Where("workspace_id = ? AND role = ?", workspaceID, RoleStaff).
		Count(&count).Error
	return count, err
}
