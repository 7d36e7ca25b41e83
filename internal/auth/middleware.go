package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyIsAdmin  = "auth_is_admin"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone      AuthType = "none" // auth disabled
	AuthTypeAnonymous AuthType = "anonymous"
	AuthTypeSession   AuthType = "session"
	AuthTypeBearer    AuthType = "bearer"
)

// DefaultUserID is used when authentication is disabled
const DefaultUserID = uint(0)

// Middleware identifies the caller of each request.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
}

// NewMiddleware creates a new authentication middleware. sessionManager may
// be nil, in which case only Bearer tokens are accepted.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// Handler resolves the caller and stores it in the gin context. It never
// rejects a request; use RequireAdmin on routes that need a user.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return func(c *gin.Context) {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Set(ContextKeyIsAdmin, true)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		switch {
		case m.setFrom(c, m.tryBearerAuth(c), AuthTypeBearer):
		case m.setFrom(c, m.trySessionAuth(c), AuthTypeSession):
		default:
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Set(ContextKeyIsAdmin, false)
			c.Set(ContextKeyAuthType, AuthTypeAnonymous)
		}
		c.Next()
	}
}

func (m *Middleware) setFrom(c *gin.Context, user *entities.User, authType AuthType) bool {
	if user == nil {
		return false
	}
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyIsAdmin, user.IsAdmin)
	c.Set(ContextKeyAuthType, authType)
	return true
}

func (m *Middleware) tryBearerAuth(c *gin.Context) *entities.User {
	token, ok := bearerToken(c)
	if !ok {
		return nil
	}
	user, err := m.service.ValidateToken(token)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}
	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}
	// The flag is read from the user record so revoking admin takes effect
	// without waiting for the session to expire.
	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

// RequireAdmin rejects callers that are not signed in (401) or whose user
// record does not carry the is_admin flag (403).
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAdmin(c) {
			c.Next()
			return
		}
		if GetAuthType(c) == AuthTypeAnonymous {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrAdminRequired.Error()})
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns DefaultUserID (0) if not authenticated or auth is disabled.
func GetUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextKeyUserID); ok {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// IsAdmin reports whether the caller may modify the catalog.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextKeyIsAdmin)
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, ok := c.Get(ContextKeyAuthType); ok {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeAnonymous
}
