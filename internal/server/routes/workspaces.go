package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdeck/internal/services"
)

type WorkspaceRoutes struct {
	server ServerInterface
}

func NewWorkspaceRoutes(server ServerInterface) *WorkspaceRoutes {
	return &WorkspaceRoutes{server: server}
}

func (wr *WorkspaceRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(wr.server)

	g := r.Group("/api/workspaces/:workspaceId")
	g.Use(middleware.AuthMiddleware(), middleware.WorkspaceMiddleware())

	g.GET("", wr.getHandler)
	g.PATCH("", middleware.RequireRole("owner"), wr.updateHandler)
	g.GET("/onboarding", wr.onboardingHandler)
	g.POST("/integrations/email", middleware.RequireRole("owner"), wr.emailIntegrationHandler)
	g.POST("/integrations/sms", middleware.RequireRole("owner"), wr.smsIntegrationHandler)
	g.PUT("/contact-form", middleware.RequireRole("owner"), wr.contactFormHandler)
	g.POST("/activate", middleware.RequireRole("owner"), wr.activateHandler)
	g.GET("/staff", wr.listStaffHandler)
	g.POST("/staff", middleware.RequireRole("owner"), wr.addStaffHandler)
}

func (wr *WorkspaceRoutes) getHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	workspace, err := wr.server.WorkspaceService().Get(id, mustClaims(c).UserID)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (wr *WorkspaceRoutes) updateHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	workspace, err := wr.server.WorkspaceService().Update(id, mustClaims(c).UserID, req)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (wr *WorkspaceRoutes) onboardingHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	status, err := wr.server.OnboardingService().Status(id)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (wr *WorkspaceRoutes) emailIntegrationHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.EmailIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	workspace, err := wr.server.WorkspaceService().SetEmailIntegration(id, mustClaims(c).UserID, req)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (wr *WorkspaceRoutes) smsIntegrationHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.SMSIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	workspace, err := wr.server.WorkspaceService().SetSMSIntegration(id, mustClaims(c).UserID, req)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (wr *WorkspaceRoutes) contactFormHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.ContactFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form, err := wr.server.WorkspaceService().UpsertContactForm(id, mustClaims(c).UserID, req)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (wr *WorkspaceRoutes) activateHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	workspace, err := wr.server.OnboardingService().Activate(id)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, workspace)
}

func (wr *WorkspaceRoutes) listStaffHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	staff, err := wr.server.WorkspaceService().ListStaff(id, mustClaims(c).UserID)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (wr *WorkspaceRoutes) addStaffHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.AddStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	staff, err := wr.server.WorkspaceService().AddStaff(id, mustClaims(c).UserID, req)
	if err != nil {
		respondError(c, wr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, staff)
}
