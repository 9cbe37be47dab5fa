package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactForm is the single public intake form of a workspace.
type ContactForm struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID            uuid.UUID `gorm:"type:uuid;column:workspace_id;not null;uniqueIndex" json:"workspace_id"`
	Name                   string    `gorm:"column:name;not null" json:"name"`
	Fields                 FieldList `gorm:"column:fields;type:jsonb" json:"fields"`
	WelcomeMessageTemplate string    `gorm:"column:welcome_message_template" json:"welcome_message_template"`
	CreatedAt              time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the ContactForm model
func (ContactForm) TableName() string {
	return "contact_forms"
}

func (f *ContactForm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FormTemplate is a post-booking form definition. A null
// linked_booking_type_id applies the template to every booking type.
type FormTemplate struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID         uuid.UUID  `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	Name                string     `gorm:"column:name;not null" json:"name"`
	Description         *string    `gorm:"column:description" json:"description"`
	Fields              FieldList  `gorm:"column:fields;type:jsonb" json:"fields"`
	LinkedBookingTypeID *uuid.UUID `gorm:"type:uuid;column:linked_booking_type_id" json:"linked_booking_type_id"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the FormTemplate model
func (FormTemplate) TableName() string {
	return "form_templates"
}

func (f *FormTemplate) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FormTemplateListItem is a template joined with its linked service name.
type FormTemplateListItem struct {
	FormTemplate          `gorm:"embedded"`
	LinkedBookingTypeName *string `gorm:"column:linked_booking_type_name" json:"linked_booking_type_name"`
}

// FormSubmission is one template instance sent to a contact for a
// booking. Terminal once completed.
type FormSubmission struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID    uuid.UUID        `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	BookingID      uuid.UUID        `gorm:"type:uuid;column:booking_id;not null" json:"booking_id"`
	FormTemplateID uuid.UUID        `gorm:"type:uuid;column:form_template_id;not null" json:"form_template_id"`
	ContactID      uuid.UUID        `gorm:"type:uuid;column:contact_id;not null" json:"contact_id"`
	Status         SubmissionStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	Data           JSONB            `gorm:"column:data;type:jsonb" json:"data"`
	DueAt          *time.Time       `gorm:"column:due_at" json:"due_at"`
	SentAt         *time.Time       `gorm:"column:sent_at" json:"sent_at"`
	CompletedAt    *time.Time       `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt      time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the FormSubmission model
func (FormSubmission) TableName() string {
	return "form_submissions"
}

func (f *FormSubmission) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FormSubmissionListItem is a submission joined with contact, booking and
// template columns.
type FormSubmissionListItem struct {
	FormSubmission     `gorm:"embedded"`
	ContactName        *string    `gorm:"column:contact_name" json:"contact_name"`
	ContactEmail       *string    `gorm:"column:contact_email" json:"contact_email"`
	BookingScheduledAt *time.Time `gorm:"column:booking_scheduled_at" json:"booking_scheduled_at"`
	FormName           string     `gorm:"column:form_name" json:"form_name"`
}

// SubmissionCounts aggregates form submissions by status.
type SubmissionCounts struct {
	Pending   int64 `json:"pending"`
	Overdue   int64 `json:"overdue"`
	Completed int64 `json:"completed"`
}

// ContactFormManager provides persistence operations for ContactForm
type ContactFormManager struct {
	db *gorm.DB
}

// NewContactFormManager creates a new ContactFormManager instance
func NewContactFormManager(db *gorm.DB) *ContactFormManager {
	return &ContactFormManager{db: db}
}

// Upsert creates or replaces the single contact form of a workspace.
func (m *ContactFormManager) Upsert(form *ContactForm) error {
	var existing ContactForm
	err := m.db.Where("workspace_id = ?", form.WorkspaceID).First(&existing).Error
	if err == nil {
		form.ID = existing.ID
		form.CreatedAt = existing.CreatedAt
		return m.db.Save(form).Error
	}
	if !IsNotFound(err) {
		return err
	}
	return m.db.Create(form).Error
}

// Get retrieves the contact form of a workspace.
func (m *ContactFormManager) Get(workspaceID uuid.UUID) (*ContactForm, error) {
	var form ContactForm
	err := m.db.Where("workspace_id = ?", workspaceID).First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// Exists reports whether the workspace has a contact form.
func (m *ContactFormManager) Exists(workspaceID uuid.UUID) (bool, error) {
	var count int64
	err := m.db.Model(&ContactForm{}).Where("workspace_id = ?", workspaceID).Count(&count).Error
	return count > 0, err
}

// FormTemplateManager provides persistence operations for FormTemplate
type FormTemplateManager struct {
	db *gorm.DB
}

// NewFormTemplateManager creates a new FormTemplateManager instance
func NewFormTemplateManager(db *gorm.DB) *FormTemplateManager {
	return &FormTemplateManager{db: db}
}

// Create creates a new form template
func (m *FormTemplateManager) Create(template *FormTemplate) error {
	return m.db.Create(template).Error
}

// Get retrieves a template within a workspace.
func (m *FormTemplateManager) Get(workspaceID, id uuid.UUID) (*FormTemplate, error) {
	var template FormTemplate
	err := m.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// List retrieves all templates of a workspace with linked service names.
func (m *FormTemplateManager) List(workspaceID uuid.UUID) ([]FormTemplateListItem, error) {
	var items []FormTemplateListItem
	err := m.db.Raw(`
		SELECT ft.*, bt.name AS linked_booking_type_name
		FROM form_templates ft
		LEFT JOIN booking_types bt ON bt.id = ft.linked_booking_type_id
		WHERE ft.workspace_id = ?
		ORDER BY ft.name`, workspaceID).
		Scan(&items).Error
	return items, err
}

// ForBookingType retrieves the templates that apply to a booking type:
// those linked to it plus those linked to no type at all.
func (m *FormTemplateManager) ForBookingType(workspaceID, bookingTypeID uuid.UUID) ([]FormTemplate, error) {
	var templates []FormTemplate
	err := m.db.
		Where("workspace_id = ? AND (linked_booking_type_id = ? OR linked_booking_type_id IS NULL)",
			workspaceID, bookingTypeID).
		Find(&templates).Error
	return templates, err
}

// Exists reports whether the workspace has any form template.
func (m *FormTemplateManager) Exists(workspaceID uuid.UUID) (bool, error) {
	var count int64
	err := m.db.Model(&FormTemplate{}).Where("workspace_id = ?", workspaceID).Count(&count).Error
	return count > 0, err
}

// FormSubmissionManager provides persistence operations for FormSubmission
type FormSubmissionManager struct {
	db *gorm.DB
}

// NewFormSubmissionManager creates a new FormSubmissionManager instance
func NewFormSubmissionManager(db *gorm.DB) *FormSubmissionManager {
	return &FormSubmissionManager{db: db}
}

// Create creates a new form submission
func (m *FormSubmissionManager) Create(sub *FormSubmission) error {
	return m.db.Create(sub).Error
}

// List retrieves a workspace's submissions joined with details, newest
// first, optionally filtered by status.
func (m *FormSubmissionManager) List(workspaceID uuid.UUID, status *SubmissionStatus) ([]FormSubmissionListItem, error) {
	q := m.db.Table("form_submissions fs").
		Select(`fs.*, c.name AS contact_name, c.email AS contact_email,
			b.scheduled_at AS booking_scheduled_at, ft.name AS form_name`).
		Joins("JOIN contacts c ON c.id = fs.contact_id").
		Joins("JOIN bookings b ON b.id = fs.booking_id").
		Joins("JOIN form_templates ft ON ft.id = fs.form_template_id").
		Where("fs.workspace_id = ?", workspaceID)
	if status != nil {
		q = q.Where("fs.status = ?", *status)
	}
	var items []FormSubmissionListItem
	err := q.Order("fs.created_at DESC").Scan(&items).Error
	return items, err
}

// Get retrieves a submission with details within a workspace.
func (m *FormSubmissionManager) Get(workspaceID, id uuid.UUID) (*FormSubmissionListItem, error) {
	var item FormSubmissionListItem
	err := m.db.Raw(`
		SELECT fs.*, c.name AS contact_name, c.email AS contact_email,
			b.scheduled_at AS booking_scheduled_at, ft.name AS form_name
		FROM form_submissions fs
		JOIN contacts c ON c.id = fs.contact_id
		JOIN bookings b ON b.id = fs.booking_id
		JOIN form_templates ft ON ft.id = fs.form_template_id
		WHERE fs.workspace_id = ? AND fs.id = ?`, workspaceID, id).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

// GetPublic retrieves a submission by id alone, for the public form link.
func (m *FormSubmissionManager) GetPublic(id uuid.UUID) (*FormSubmission, error) {
	var sub FormSubmission
	err := m.db.First(&sub, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// TemplateFor retrieves the template a submission was created from.
func (m *FormSubmissionManager) TemplateFor(sub *FormSubmission) (*FormTemplate, error) {
	var template FormTemplate
	err := m.db.First(&template, "id = ?", sub.FormTemplateID).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// Complete stores the filled answers and marks the submission completed.
func (m *FormSubmissionManager) Complete(id uuid.UUID, data JSONB) error {
	now := time.Now()
	return m.db.Model(&FormSubmission{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"data":         data,
			"status":       SubmissionCompleted,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// CountsByStatus aggregates a workspace's submissions by status.
func (m *FormSubmissionManager) CountsByStatus(workspaceID uuid.UUID) (*SubmissionCounts, error) {
	counts := &SubmissionCounts{}
	for _, pair := range []struct {
		status SubmissionStatus
		target *int64
	}{
		{SubmissionPending, &counts.Pending},
		{SubmissionOverdue, &counts.Overdue},
		{SubmissionCompleted, &counts.Completed},
	} {
		err := m.db.Model(&FormSubmission{}).
			Where("workspace_id = ? AND status = ?", workspaceID, pair.status).
			Count(pair.target).Error
		if err != nil {
			return nil, err
		}
	}
	return counts, nil
}
