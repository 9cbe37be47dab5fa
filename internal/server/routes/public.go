package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdeck/internal/models"
	"opsdeck/internal/services"
)

// PublicRoutes serves the unauthenticated customer surface: the contact
// form, the booking page with its slots, and post-booking forms.
type PublicRoutes struct {
	server ServerInterface
}

func NewPublicRoutes(server ServerInterface) *PublicRoutes {
	return &PublicRoutes{server: server}
}

func (pr *PublicRoutes) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api/public")

	g.GET("/contact-form/:workspaceId", pr.contactFormHandler)
	g.POST("/contact-form/:workspaceId/submit", pr.submitContactFormHandler)
	g.GET("/booking/:workspaceId", pr.bookingPageHandler)
	g.GET("/booking/:workspaceId/slots", pr.slotsHandler)
	g.POST("/booking/:workspaceId", pr.createBookingHandler)
	g.GET("/form/:submissionId", pr.formHandler)
	g.POST("/form/:submissionId/submit", pr.submitFormHandler)
}

func (pr *PublicRoutes) contactFormHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	form, err := pr.server.ContactService().GetPublicForm(id)
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (pr *PublicRoutes) submitContactFormHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var sub services.ContactFormSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resolution, err := pr.server.ContactService().SubmitPublicForm(c.Request.Context(), id, sub)
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "contactId": resolution.ID})
}

func (pr *PublicRoutes) bookingPageHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	page, err := pr.server.BookingService().PublicPage(id)
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (pr *PublicRoutes) slotsHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	rawType := c.Query("bookingTypeId")
	date := c.Query("date")
	if rawType == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bookingTypeId and date required"})
		return
	}
	bookingTypeID, ok := optionalUUIDQuery(c, "bookingTypeId")
	if !ok {
		return
	}
	slots, err := pr.server.AvailabilityService().ComputeSlots(id, *bookingTypeID, date)
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (pr *PublicRoutes) createBookingHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.PublicBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := pr.server.BookingService().CreatePublic(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (pr *PublicRoutes) formHandler(c *gin.Context) {
	submissionID, ok := pathID(c, "submissionId")
	if !ok {
		return
	}
	form, err := pr.server.FormService().PublicForm(submissionID)
	if err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (pr *PublicRoutes) submitFormHandler(c *gin.Context) {
	submissionID, ok := pathID(c, "submissionId")
	if !ok {
		return
	}
	var data models.JSONB
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := pr.server.FormService().SubmitPublic(submissionID, data); err != nil {
		respondError(c, pr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
