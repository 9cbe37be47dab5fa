package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdeck/internal/services"
)

type InboxRoutes struct {
	server ServerInterface
}

func NewInboxRoutes(server ServerInterface) *InboxRoutes {
	return &InboxRoutes{server: server}
}

func (ir *InboxRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(ir.server)

	g := r.Group("/api/inbox/:workspaceId")
	g.Use(middleware.AuthMiddleware(), middleware.WorkspaceMiddleware())

	g.GET("/conversations", ir.listHandler)
	g.GET("/conversations/:conversationId", ir.getHandler)
	g.PATCH("/conversations/:conversationId/read", ir.markReadHandler)
	g.GET("/conversations/:conversationId/messages", ir.messagesHandler)
	g.POST("/conversations/:conversationId/reply", ir.replyHandler)
}

func (ir *InboxRoutes) listHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	conversations, err := ir.server.InboxService().ListConversations(id)
	if err != nil {
		respondError(c, ir.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (ir *InboxRoutes) getHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	conversationID, ok := pathID(c, "conversationId")
	if !ok {
		return
	}
	conversation, err := ir.server.InboxService().GetConversation(id, conversationID)
	if err != nil {
		respondError(c, ir.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, conversation)
}

func (ir *InboxRoutes) markReadHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	conversationID, ok := pathID(c, "conversationId")
	if !ok {
		return
	}
	if err := ir.server.InboxService().MarkRead(id, conversationID); err != nil {
		respondError(c, ir.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (ir *InboxRoutes) messagesHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	conversationID, ok := pathID(c, "conversationId")
	if !ok {
		return
	}
	messages, err := ir.server.InboxService().Messages(id, conversationID)
	if err != nil {
		respondError(c, ir.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (ir *InboxRoutes) replyHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	conversationID, ok := pathID(c, "conversationId")
	if !ok {
		return
	}
	var req services.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	message, err := ir.server.InboxService().SendReply(c.Request.Context(), id, conversationID, req)
	if err != nil {
		respondError(c, ir.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, message)
}
