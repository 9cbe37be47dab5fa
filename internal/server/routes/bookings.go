package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"opsdeck/internal/models"
	"opsdeck/internal/services"
)

type BookingRoutes struct {
	server ServerInterface
}

func NewBookingRoutes(server ServerInterface) *BookingRoutes {
	return &BookingRoutes{server: server}
}

func (br *BookingRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(br.server)

	g := r.Group("/api/bookings/:workspaceId")
	g.Use(middleware.AuthMiddleware(), middleware.WorkspaceMiddleware())

	g.GET("/booking-types", br.listTypesHandler)
	g.POST("/booking-types", middleware.RequireRole("owner"), br.createTypeHandler)
	g.GET("/availability", br.listAvailabilityHandler)
	g.PUT("/availability", middleware.RequireRole("owner"), br.setAvailabilityHandler)
	g.GET("/bookings", br.listHandler)
	g.PATCH("/bookings/:bookingId/status", br.updateStatusHandler)
}

func (br *BookingRoutes) listTypesHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	types, err := br.server.BookingService().ListTypes(id)
	if err != nil {
		respondError(c, br.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (br *BookingRoutes) createTypeHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.CreateBookingTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := br.server.BookingService().CreateType(id, req)
	if err != nil {
		respondError(c, br.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (br *BookingRoutes) listAvailabilityHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	bookingTypeID, ok := optionalUUIDQuery(c, "bookingTypeId")
	if !ok {
		return
	}
	windows, err := br.server.AvailabilityService().List(id, bookingTypeID)
	if err != nil {
		respondError(c, br.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, windows)
}

type setAvailabilityRequest struct {
	BookingTypeID *uuid.UUID                  `json:"booking_type_id"`
	Slots         []services.AvailabilitySlot `json:"slots"`
}

func (br *BookingRoutes) setAvailabilityHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	windows, err := br.server.AvailabilityService().Set(id, req.BookingTypeID, req.Slots)
	if err != nil {
		respondError(c, br.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, windows)
}

func (br *BookingRoutes) listHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var filters models.BookingFilters
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from"})
			return
		}
		filters.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to"})
			return
		}
		filters.To = &t
	}
	if status := c.Query("status"); status != "" {
		s := models.BookingStatus(status)
		filters.Status = &s
	}
	bookings, err := br.server.BookingService().List(id, filters)
	if err != nil {
		respondError(c, br.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (br *BookingRoutes) updateStatusHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "bookingId")
	if !ok {
		return
	}
	var req struct {
		Status models.BookingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	booking, err := br.server.BookingService().UpdateStatus(id, bookingID, req.Status)
	if err != nil {
		respondError(c, br.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// optionalUUIDQuery parses a uuid query parameter that may be absent.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	return &id, true
}
