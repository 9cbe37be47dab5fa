package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ContactRoutes struct {
	server ServerInterface
}

func NewContactRoutes(server ServerInterface) *ContactRoutes {
	return &ContactRoutes{server: server}
}

func (cr *ContactRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(cr.server)

	g := r.Group("/api/contacts/:workspaceId")
	g.Use(middleware.AuthMiddleware(), middleware.WorkspaceMiddleware())

	g.GET("/contacts", cr.listHandler)
	g.GET("/contacts/:contactId", cr.getHandler)
}

func (cr *ContactRoutes) listHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	contacts, err := cr.server.ContactService().List(id)
	if err != nil {
		respondError(c, cr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (cr *ContactRoutes) getHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	contactID, ok := pathID(c, "contactId")
	if !ok {
		return
	}
	contact, err := cr.server.ContactService().Get(id, contactID)
	if err != nil {
		respondError(c, cr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, contact)
}
