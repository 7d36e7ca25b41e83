package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/config"
)

// AuthController serves the session and API token endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes registers the auth endpoints under group.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.GET("/me", ac.Me)
	group.POST("/token", ac.GenerateToken)
	group.DELETE("/token", ac.RevokeToken)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidPassword) {
			if ac.rateLimiter.RecordFailure(clientIP, req.Username) {
				logrus.WithFields(logrus.Fields{"username": req.Username, "ip": clientIP}).Warn("Login locked out")
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
		return
	}
	ac.rateLimiter.RecordSuccess(clientIP, req.Username)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
	})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me describes the current caller. It also hands out the CSRF token that
// cookie-authenticated writes must echo back.
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":    GetUserID(c),
		"username":   GetUsername(c),
		"is_admin":   IsAdmin(c),
		"auth_type":  GetAuthType(c),
		"csrf_token": GetCSRFToken(c),
	})
}

// GenerateToken creates a new API token for the signed-in user.
func (ac *AuthController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	token, err := ac.service.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken revokes the API token of the signed-in user.
func (ac *AuthController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	if err := ac.service.RevokeToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
