package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdeck/internal/services"
)

type InventoryRoutes struct {
	server ServerInterface
}

func NewInventoryRoutes(server ServerInterface) *InventoryRoutes {
	return &InventoryRoutes{server: server}
}

func (ir *InventoryRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(ir.server)

	g := r.Group("/api/inventory/:workspaceId")
	g.Use(middleware.AuthMiddleware(), middleware.WorkspaceMiddleware())

	g.GET("/items", ir.listHandler)
	g.POST("/items", ir.createHandler)
	g.PATCH("/items/:itemId", ir.updateHandler)
}

func (ir *InventoryRoutes) listHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	items, err := ir.server.InventoryService().List(id)
	if err != nil {
		respondError(c, ir.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ir *InventoryRoutes) createHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	var req services.CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := ir.server.InventoryService().Create(id, req)
	if err != nil {
		respondError(c, ir.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (ir *InventoryRoutes) updateHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var req services.UpdateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := ir.server.InventoryService().Update(id, itemID, req)
	if err != nil {
		respondError(c, ir.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, item)
}
