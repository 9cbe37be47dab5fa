package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"opsdeck/internal/server/routes"
)

// RegisterRoutes builds the gin engine with every route group mounted
// under /api.
func (s *Server) RegisterRoutes() http.Handler {
	if s.cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/api/health", s.healthHandler)

	routes.NewAuthRoutes(s).RegisterRoutes(r)
	routes.NewWorkspaceRoutes(s).RegisterRoutes(r)
	routes.NewContactRoutes(s).RegisterRoutes(r)
	routes.NewInboxRoutes(s).RegisterRoutes(r)
	routes.NewBookingRoutes(s).RegisterRoutes(r)
	routes.NewFormRoutes(s).RegisterRoutes(r)
	routes.NewInventoryRoutes(s).RegisterRoutes(r)
	routes.NewDashboardRoutes(s).RegisterRoutes(r)
	routes.NewPublicRoutes(s).RegisterRoutes(r)

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.db.Health())
}
