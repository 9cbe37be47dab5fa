package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdeck/internal/models"
	"opsdeck/internal/services"
)

type FormRoutes struct {
	server ServerInterface
}

func NewFormRoutes(server ServerInterface) *FormRoutes {
	return &FormRoutes{server: server}
}

func (fr *FormRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(fr.server)

	g := r.Group("/api/forms/:workspaceId")
	g.Use(middleware.AuthMiddleware(), middleware.WorkspaceMiddleware())

	g.GET("/templates", fr.listTemplatesHandler)
	g.POST("/templates", middleware.RequireRole("owner"), fr.createTemplateHandler)
	g.GET("/submissions", fr.listSubmissionsHandler)
	g.GET("/submissions/:submissionId", fr.getSubmissionHandler)
}

func (fr *FormRoutes) listTemplatesHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	templates, err := fr.server.FormService().ListTemplates(id)
	if err != nil {
		respondError(c, fr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (fr *FormRoutes) createTemplateHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.CreateFormTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	template, err := fr.server.FormService().CreateTemplate(id, req)
	if err != nil {
		respondError(c, fr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (fr *FormRoutes) listSubmissionsHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var status *models.SubmissionStatus
	if raw := c.Query("status"); raw != "" {
		s := models.SubmissionStatus(raw)
		status = &s
	}
	submissions, err := fr.server.FormService().ListSubmissions(id, status)
	if err != nil {
		respondError(c, fr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}

func (fr *FormRoutes) getSubmissionHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	submissionID, ok := pathID(c, "submissionId")
	if !ok {
		return
	}
	submission, err := fr.server.FormService().GetSubmission(id, submissionID)
	if err != nil {
		respondError(c, fr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, submission)
}
