package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingType is a bookable service definition with a fixed duration.
// Changing the duration does not retroactively affect booked slots.
type BookingType struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID     uuid.UUID `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	Location        *string   `gorm:"column:location" json:"location"`
	IsOnline        bool      `gorm:"column:is_online;not null;default:false" json:"is_online"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the BookingType model
func (BookingType) TableName() string {
	return "booking_types"
}

func (b *BookingType) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// AvailabilityWindow is a weekly recurring time range during which a
// service may be booked. Start and end are wall-clock "HH:MM" strings
// interpreted in the workspace timezone. A null booking_type_id means the
// window applies to every booking type.
type AvailabilityWindow struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID   uuid.UUID  `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	BookingTypeID *uuid.UUID `gorm:"type:uuid;column:booking_type_id" json:"booking_type_id"`
	DayOfWeek     int        `gorm:"column:day_of_week;not null" json:"day_of_week"`
	StartTime     string     `gorm:"column:start_time;not null" json:"start_time"`
	EndTime       string     `gorm:"column:end_time;not null" json:"end_time"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table name for the AvailabilityWindow model
func (AvailabilityWindow) TableName() string {
	return "availability"
}

func (a *AvailabilityWindow) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Booking is a confirmed appointment at an exact instant.
type Booking struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID   uuid.UUID     `gorm:"type:uuid;column:workspace_id;not null;index" json:"workspace_id"`
	ContactID     uuid.UUID     `gorm:"type:uuid;column:contact_id;not null" json:"contact_id"`
	BookingTypeID uuid.UUID     `gorm:"type:uuid;column:booking_type_id;not null" json:"booking_type_id"`
	ScheduledAt   time.Time     `gorm:"column:scheduled_at;not null" json:"scheduled_at"`
	Status        BookingStatus `gorm:"column:status;not null;default:'confirmed'" json:"status"`
	Notes         *string       `gorm:"column:notes" json:"notes"`
	CreatedAt     time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BookingListItem is a booking joined with contact and service columns.
type BookingListItem struct {
	Booking         `gorm:"embedded"`
	ContactName     *string `gorm:"column:contact_name" json:"contact_name"`
	ContactEmail    *string `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone    *string `gorm:"column:contact_phone" json:"contact_phone"`
	BookingTypeName string  `gorm:"column:booking_type_name" json:"booking_type_name"`
	DurationMinutes int     `gorm:"column:duration_minutes" json:"duration_minutes"`
}

// BookingFilters narrows booking listings.
type BookingFilters struct {
	From   *time.Time
	To     *time.Time
	Status *BookingStatus
}

// BookingTypeManager provides persistence operations for BookingType
type BookingTypeManager struct {
	db *gorm.DB
}

// NewBookingTypeManager creates a new BookingTypeManager instance
func NewBookingTypeManager(db *gorm.DB) *BookingTypeManager {
	return &BookingTypeManager{db: db}
}

// Create creates a new booking type
func (m *BookingTypeManager) Create(bt *BookingType) error {
	return m.db.Create(bt).Error
}

// Get retrieves a booking type within a workspace
func (m *BookingTypeManager) Get(workspaceID, id uuid.UUID) (*BookingType, error) {
	var bt BookingType
	err := m.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&bt).Error
	if err != nil {
		return nil, err
	}
	return &bt, nil
}

// List retrieves all booking types of a workspace ordered by name
func (m *BookingTypeManager) List(workspaceID uuid.UUID) ([]BookingType, error) {
	var types []BookingType
	err := m.db.Where("workspace_id = ?", workspaceID).Order("name").Find(&types).Error
	return types, err
}

// Exists reports whether the workspace has at least one booking type.
func (m *BookingTypeManager) Exists(workspaceID uuid.UUID) (bool, error) {
	var count int64
	err := m.db.Model(&BookingType{}).Where("workspace_id = ?", workspaceID).Count(&count).Error
	return count > 0, err
}

// AvailabilityManager provides persistence operations for AvailabilityWindow
type AvailabilityManager struct {
	db *gorm.DB
}

// NewAvailabilityManager creates a new AvailabilityManager instance
func NewAvailabilityManager(db *gorm.DB) *AvailabilityManager {
	return &AvailabilityManager{db: db}
}

// ListScope retrieves the windows of one (workspace, booking_type_id)
// scope, nil meaning the workspace-wide scope, ordered by day and start.
func (m *AvailabilityManager) ListScope(workspaceID uuid.UUID, bookingTypeID *uuid.UUID) ([]AvailabilityWindow, error) {
	var windows []AvailabilityWindow
	q := m.db.Where("workspace_id = ?", workspaceID)
	if bookingTypeID == nil {
		q = q.Where("booking_type_id IS NULL")
	} else {
		q = q.Where("booking_type_id = ?", *bookingTypeID)
	}
	err := q.Order("day_of_week, start_time").Find(&windows).Error
	return windows, err
}

// ReplaceScope atomically replaces all windows of one scope with the
// given list.
func (m *AvailabilityManager) ReplaceScope(workspaceID uuid.UUID, bookingTypeID *uuid.UUID, windows []AvailabilityWindow) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Where("workspace_id = ?", workspaceID)
		if bookingTypeID == nil {
			q = q.Where("booking_type_id IS NULL")
		} else {
			q = q.Where("booking_type_id = ?", *bookingTypeID)
		}
		if err := q.Delete(&AvailabilityWindow{}).Error; err != nil {
			return err
		}
		for i := range windows {
			windows[i].WorkspaceID = workspaceID
			windows[i].BookingTypeID = bookingTypeID
			if err := tx.Create(&windows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListForDay retrieves the windows that apply to a booking type on one
// weekday: type-specific windows and workspace-wide (null) windows are
// unioned, not overridden, ordered by start_time.
func (m *AvailabilityManager) ListForDay(workspaceID, bookingTypeID uuid.UUID, dayOfWeek int) ([]AvailabilityWindow, error) {
	var windows []AvailabilityWindow
	err := m.db.
		Where("workspace_id = ? AND (booking_type_id = ? OR booking_type_id IS NULL) AND day_of_week = ?",
			workspaceID, bookingTypeID, dayOfWeek).
		Order("start_time").
		Find(&windows).Error
	return windows, err
}

// Exists reports whether the workspace has any availability window.
func (m *AvailabilityManager) Exists(workspaceID uuid.UUID) (bool, error) {
	var count int64
	err := m.db.Model(&AvailabilityWindow{}).Where("workspace_id = ?", workspaceID).Count(&count).Error
	return count > 0, err
}

// BookingManager provides persistence operations for Booking
type BookingManager struct {
	db *gorm.DB
}

// NewBookingManager creates a new BookingManager instance
func NewBookingManager(db *gorm.DB) *BookingManager {
	return &BookingManager{db: db}
}

// Create creates a new booking
func (m *BookingManager) Create(booking *Booking) error {
	return m.db.Create(booking).Error
}

// Get retrieves a booking within a workspace
func (m *BookingManager) Get(workspaceID, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := m.db.Where("id = ? AND workspace_id = ?", id, workspaceID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatus overwrites a booking's status. No transition table is
// enforced: any status is reachable from any other by staff action.
func (m *BookingManager) UpdateStatus(workspaceID, id uuid.UUID, status BookingStatus) (*Booking, error) {
	result := m.db.Model(&Booking{}).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return m.Get(workspaceID, id)
}

// List retrieves a workspace's bookings joined with contact and service
// details, optionally filtered, ordered by scheduled time.
func (m *BookingManager) List(workspaceID uuid.UUID, filters BookingFilters) ([]BookingListItem, error) {
	q := m.db.Table("bookings b").
		Select(`b.*, c.name AS contact_name, c.email AS contact_email, c.phone AS contact_phone,
			bt.name AS booking_type_name, bt.duration_minutes`).
		Joins("JOIN contacts c ON c.id = b.contact_id").
		Joins("JOIN booking_types bt ON bt.id = b.booking_type_id").
		Where("b.workspace_id = ?", workspaceID)
	if filters.From != nil {
		q = q.Where("b.scheduled_at >= ?", *filters.From)
	}
	if filters.To != nil {
		q = q.Where("b.scheduled_at <= ?", *filters.To)
	}
	if filters.Status != nil {
		q = q.Where("b.status = ?", *filters.Status)
	}
	var items []BookingListItem
	err := q.Order("b.scheduled_at ASC").Scan(&items).Error
	return items, err
}

// ScheduledBetween returns the scheduled instants of non-cancelled
// bookings for a booking type within [from, to).
func (m *BookingManager) ScheduledBetween(workspaceID, bookingTypeID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var bookings []Booking
	err := m.db.
		Where("workspace_id = ? AND booking_type_id = ? AND scheduled_at >= ? AND scheduled_at < ? AND status <> ?",
			workspaceID, bookingTypeID, from, to, BookingCancelled).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(bookings))
	for _, b := range bookings {
		times = append(times, b.ScheduledAt)
	}
	return times, nil
}

// ExistsAt reports whether a non-cancelled booking already occupies the
// exact instant for the booking type.
func (m *BookingManager) ExistsAt(workspaceID, bookingTypeID uuid.UUID, at time.Time) (bool, error) {
	var count int64
	err := m.db.Model(&Booking{}).
		Where("workspace_id = ? AND booking_type_id = ? AND scheduled_at = ? AND status <> ?",
			workspaceID, bookingTypeID, at, BookingCancelled).
		Count(&count).Error
	return count > 0, err
}

// CountByStatus counts a workspace's bookings with the given status.
func (m *BookingManager) CountByStatus(workspaceID uuid.UUID, status BookingStatus) (int64, error) {
	var count int64
	err := m.db.Model(&Booking{}).
		Where("workspace_id = ? AND status = ?", workspaceID, status).
		Count(&count).Error
	return count, err
}

// CountStatusBetween counts bookings with the given status scheduled
// within [from, to).
func (m *BookingManager) CountStatusBetween(workspaceID uuid.UUID, status BookingStatus, from, to time.Time) (int64, error) {
	var count int64
	err := m.db.Model(&Booking{}).
		Where("workspace_id = ? AND status = ? AND scheduled_at >= ? AND scheduled_at < ?",
			workspaceID, status, from, to).
		Count(&count).Error
	return count, err
}
