package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"opsdeck/internal/apperror"
	"opsdeck/internal/auth"
	"opsdeck/pkg/logger"
)

const claimsKey = "claims"

type Middleware struct {
	server ServerInterface
}

func NewMiddleware(server ServerInterface) *Middleware {
	return &Middleware{server: server}
}

// AuthMiddleware verifies the bearer token and stores its claims in the
// request context.
func (m *Middleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization"})
			return
		}
		claims, err := m.server.Tokens().Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// WorkspaceMiddleware checks the caller is a member of the workspace in
// the path.
func (m *Middleware) WorkspaceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := mustClaims(c)
		workspaceID, err := uuid.Parse(c.Param("workspaceId"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Workspace ID required"})
			return
		}
		if _, err := m.server.GetDB().Users.GetMember(workspaceID, claims.UserID); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied to this workspace"})
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers whose token role is not in the list.
func (m *Middleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := mustClaims(c)
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// mustClaims retrieves the verified token claims set by AuthMiddleware.
func mustClaims(c *gin.Context) *auth.Claims {
	return c.MustGet(claimsKey).(*auth.Claims)
}

// workspaceID parses the workspace path parameter.
func workspaceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workspace id"})
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a named uuid path parameter.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondError translates service errors into HTTP responses. Typed
// errors map 1:1; anything else is a 500 with the detail logged, not
// leaked.
func respondError(c *gin.Context, log logger.Logger, err error) {
	if appErr, ok := apperror.As(err); ok {
		c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}
	log.WithFields(map[string]interface{}{
		"path":  c.FullPath(),
		"error": err.Error(),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
