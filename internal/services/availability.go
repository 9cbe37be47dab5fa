package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/models"
)

// Slots are laid on a fixed half-hour grid regardless of service
// duration.
const slotGridMinutes = 30

// AvailabilitySlot is one window of a set-availability request.
type AvailabilitySlot struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// AvailabilityService computes bookable slots and manages the weekly
// windows they derive from.
type AvailabilityService struct {
	db *models.DB
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(db *models.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// ComputeSlots returns the bookable start instants for a booking type on
// one calendar date, resolved in the workspace timezone.
//
// Windows for the weekday where booking_type_id matches or is null are
// unioned (both apply; overlap between them is possible and slots are
// emitted per window in start_time order, not globally re-sorted).
// Within each window a cursor walks the half-hour grid and emits every
// position where cursor+duration still fits, skipping instants occupied
// by a non-cancelled booking. Conflict detection is exact-instant only.
// An unknown booking type, a weekday without windows, and a fully booked
// day all yield an empty sequence, never an error.
func (s *AvailabilityService) ComputeSlots(workspaceID, bookingTypeID uuid.UUID, date string) ([]time.Time, error) {
	workspace, err := s.db.Workspaces.Get(workspaceID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, apperror.NotFound("Workspace not found")
		}
		return nil, err
	}
	loc := workspace.Location()

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, apperror.InvalidInput("Invalid date")
	}

	bookingType, err := s.db.BookingTypes.Get(workspaceID, bookingTypeID)
	if err != nil {
		if models.IsNotFound(err) {
			return []time.Time{}, nil
		}
		return nil, err
	}

	windows, err := s.db.Availability.ListForDay(workspaceID, bookingTypeID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}

	dayEnd := day.AddDate(0, 0, 1)
	occupied, err := s.db.Bookings.ScheduledBetween(workspaceID, bookingTypeID, day, dayEnd)
	if err != nil {
		return nil, err
	}
	taken := make(map[int64]bool, len(occupied))
	for _, t := range occupied {
		taken[t.Unix()] = true
	}

	slots := []time.Time{}
	for _, w := range windows {
		startMin, err := parseClock(w.StartTime)
		if err != nil {
			continue
		}
		endMin, err := parseClock(w.EndTime)
		if err != nil {
			continue
		}
		for cursor := startMin; cursor+bookingType.DurationMinutes <= endMin; cursor += slotGridMinutes {
			slot := time.Date(day.Year(), day.Month(), day.Day(), cursor/60, cursor%60, 0, 0, loc)
			if !taken[slot.Unix()] {
				slots = append(slots, slot)
			}
		}
	}
	return slots, nil
}

// List retrieves the windows of one (workspace, booking type) scope.
func (s *AvailabilityService) List(workspaceID uuid.UUID, bookingTypeID *uuid.UUID) ([]models.AvailabilityWindow, error) {
	return s.db.Availability.ListScope(workspaceID, bookingTypeID)
}

// Set replaces all windows of one scope with the given list and returns
// the stored result. An empty list clears the scope.
func (s *AvailabilityService) Set(workspaceID uuid.UUID, bookingTypeID *uuid.UUID, slots []AvailabilitySlot) ([]models.AvailabilityWindow, error) {
	for _, slot := range slots {
		if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
			return nil, apperror.InvalidInput(fmt.Sprintf("Invalid day_of_week: %d", slot.DayOfWeek))
		}
		if _, err := parseClock(slot.StartTime); err != nil {
			return nil, apperror.InvalidInput(fmt.Sprintf("Invalid start_time: %s", slot.StartTime))
		}
		if _, err := parseClock(slot.EndTime); err != nil {
			return nil, apperror.InvalidInput(fmt.Sprintf("Invalid end_time: %s", slot.EndTime))
		}
	}

	windows := make([]models.AvailabilityWindow, len(slots))
	for i, slot := range slots {
		windows[i] = models.AvailabilityWindow{
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		}
	}
	if err := s.db.Availability.ReplaceScope(workspaceID, bookingTypeID, windows); err != nil {
		return nil, err
	}
	return s.db.Availability.ListScope(workspaceID, bookingTypeID)
}

// parseClock converts an "HH:MM" wall-clock string to minutes from
// midnight.
func parseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 3)
	if len(parts) < 2 {
		return 0, fmt.Errorf("malformed clock value %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("malformed clock value %q", clock)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("malformed clock value %q", clock)
	}
	return hours*60 + minutes, nil
}
