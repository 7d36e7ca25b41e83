package demo

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware blocks catalog writes in demo mode.
// Reads and the login flow stay available.
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a demo mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that answers 403 to write methods.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		// Read-only methods and CORS preflight always pass
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		// Check if path is in the allowlist for write methods
		if isAllowedPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		// Block the request
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "This action is disabled in demo mode",
			"code":      "demo_mode",
			"demo_mode": true,
		})
	}
}

// isAllowedPath reports whether a write to path is allowed in demo mode.
func isAllowedPath(path string) bool {
	// Auth endpoints need to work for login flow
	return strings.HasPrefix(path, "/api/auth/")
}

// ContextKeyDemoMode stores the demo flag on the request context.
const ContextKeyDemoMode = "demo_mode"

// InjectContext exposes the demo flag to handlers.
func (m *Middleware) InjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)
		c.Next()
	}
}
