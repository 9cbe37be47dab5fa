package services

import (
	"time"

	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
)

const upcomingBookingsLimit = 10
const unreadAlertsLimit = 20

// DashboardBookings summarizes the day's appointments.
type DashboardBookings struct {
	Today          []models.BookingListItem `json:"today"`
	Upcoming       []models.BookingListItem `json:"upcoming"`
	CompletedToday int64                    `json:"completedToday"`
	NoShowToday    int64                    `json:"noShowToday"`
}

// DashboardConversations summarizes the inbox.
type DashboardConversations struct {
	OpenCount int64 `json:"openCount"`
}

// DashboardInventory lists the items running out.
type DashboardInventory struct {
	LowStock []models.InventoryItem `json:"lowStock"`
}

// Dashboard is the landing-page aggregate, recomputed from source rows
// on every call.
type Dashboard struct {
	Bookings      DashboardBookings        `json:"bookings"`
	Conversations DashboardConversations   `json:"conversations"`
	Forms         *models.SubmissionCounts `json:"forms"`
	Inventory     DashboardInventory       `json:"inventory"`
	Alerts        []models.Alert           `json:"alerts"`
}

// NavCounts are the sidebar badge numbers.
type NavCounts struct {
	Inbox    int64 `json:"inbox"`
	Bookings int64 `json:"bookings"`
}

// DashboardService aggregates the workspace overview.
type DashboardService struct {
	db *models.DB
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(db *models.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Get builds the dashboard. "Today" is the workspace's local calendar
// day; cancelled bookings never appear in the lists.
func (s *DashboardService) Get(workspaceID uuid.UUID) (*Dashboard, error) {
	workspace, err := s.db.Workspaces.Get(workspaceID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Workspace not found")
		}
		return nil, err
	}
	loc := workspace.Location()
	now := time.Now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	tomorrowEnd := dayStart.AddDate(0, 0, 2)

	today, err := s.listNonCancelled(workspaceID, &dayStart, &dayEnd)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.listNonCancelled(workspaceID, &tomorrowEnd, nil)
	if err != nil {
		return nil, err
	}
	if len(upcoming) > upcomingBookingsLimit {
		upcoming = upcoming[:upcomingBookingsLimit]
	}

	completedToday, err := s.db.Bookings.CountStatusBetween(workspaceID, models.BookingCompleted, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	noShowToday, err := s.db.Bookings.CountStatusBetween(workspaceID, models.BookingNoShow, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	openCount, err := s.db.Conversations.CountOpen(workspaceID)
	if err != nil {
		return nil, err
	}
	formCounts, err := s.db.FormSubmissions.CountsByStatus(workspaceID)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.db.Inventory.LowStock(workspaceID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.db.Alerts.ListUnread(workspaceID)
	if err != nil {
		return nil, err
	}
	if len(alerts) > unreadAlertsLimit {
		alerts = alerts[:unreadAlertsLimit]
	}

	return &Dashboard{
		Bookings: DashboardBookings{
			Today:          today,
			Upcoming:       upcoming,
			CompletedToday: completedToday,
			NoShowToday:    noShowToday,
		},
		Conversations: DashboardConversations{OpenCount: openCount},
		Forms:         formCounts,
		Inventory:     DashboardInventory{LowStock: lowStock},
		Alerts:        alerts,
	}, nil
}

// NavCounts computes the sidebar badges: unread conversations by the
// latest-message rule, plus confirmed bookings.
func (s *DashboardService) NavCounts(workspaceID uuid.UUID) (*NavCounts, error) {
	inbox, err := s.db.Conversations.CountUnread(workspaceID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.db.Bookings.CountByStatus(workspaceID, models.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	return &NavCounts{Inbox: inbox, Bookings: bookings}, nil
}

func (s *DashboardService) listNonCancelled(workspaceID uuid.UUID, from, to *time.Time) ([]models.BookingListItem, error) {
	items, err := s.db.Bookings.List(workspaceID, models.BookingFilters{From: from, To: to})
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, item := range items {
		if item.Status != models.BookingCancelled {
			kept = append(kept, item)
		}
	}
	return kept, nil
}
