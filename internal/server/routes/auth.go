// Package routes contains the gin route groups. Each group holds a
// reference back to the server through ServerInterface and translates
// service errors 1:1 into HTTP responses.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdeck/internal/auth"
	"opsdeck/internal/models"
	"opsdeck/internal/services"
	"opsdeck/pkg/logger"
)

// ServerInterface exposes the wired application to the route groups.
type ServerInterface interface {
	GetDB() *models.DB
	Logger() logger.Logger
	Tokens() *auth.TokenManager
	AuthService() *services.AuthService
	WorkspaceService() *services.WorkspaceService
	ContactService() *services.ContactService
	AvailabilityService() *services.AvailabilityService
	BookingService() *services.BookingService
	OnboardingService() *services.OnboardingService
	InboxService() *services.InboxService
	FormService() *services.FormService
	InventoryService() *services.InventoryService
	DashboardService() *services.DashboardService
}

type AuthRoutes struct {
	server ServerInterface
}

func NewAuthRoutes(server ServerInterface) *AuthRoutes {
	return &AuthRoutes{server: server}
}

func (ar *AuthRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(ar.server)

	g := r.Group("/api/auth")
	g.POST("/register", ar.registerHandler)
	g.POST("/login", ar.loginHandler)
	g.GET("/me", middleware.AuthMiddleware(), ar.meHandler)
}

func (ar *AuthRoutes) registerHandler(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := ar.server.AuthService().Register(req)
	if err != nil {
		respondError(c, ar.server.Logger(), err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (ar *AuthRoutes) loginHandler(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := ar.server.AuthService().Login(req)
	if err != nil {
		respondError(c, ar.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (ar *AuthRoutes) meHandler(c *gin.Context) {
	claims := mustClaims(c)
	profile, err := ar.server.AuthService().Me(claims.UserID)
	if err != nil {
		respondError(c, ar.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
