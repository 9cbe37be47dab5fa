package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DashboardRoutes struct {
	server ServerInterface
}

func NewDashboardRoutes(server ServerInterface) *DashboardRoutes {
	return &DashboardRoutes{server: server}
}

func (dr *DashboardRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(dr.server)

	g := r.Group("/api/dashboard/:workspaceId")
	g.Use(middleware.AuthMiddleware(), middleware.WorkspaceMiddleware())

	g.GET("", dr.getHandler)
	g.GET("/nav-counts", dr.navCountsHandler)
}

func (dr *DashboardRoutes) getHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	dashboard, err := dr.server.DashboardService().Get(id)
	if err != nil {
		respondError(c, dr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (dr *DashboardRoutes) navCountsHandler(c *gin.Context) {
	id, ok := workspaceID(c)
	if !ok {
		return
	}
	counts, err := dr.server.DashboardService().NavCounts(id)
	if err != nil {
		respondError(c, dr.server.Logger(), err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
