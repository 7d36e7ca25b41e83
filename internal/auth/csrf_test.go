package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var testCSRFSecret = []byte("test-secret-key-32-bytes-long!!!")

func csrfRouter() *gin.Engine {
	router := gin.New()
	router.Use(CSRFMiddleware(testCSRFSecret, false, nil))
	router.GET("/api/auth/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"csrf_token": GetCSRFToken(c)})
	})
	router.POST("/api/levels", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func TestCSRFMiddleware_AllowsGETAndIssuesToken(t *testing.T) {
	rr := httptest.NewRecorder()
	csrfRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"csrf_token":""`)
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	rr := httptest.NewRecorder()
	csrfRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/levels", nil))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "csrf")
}

func TestCSRFMiddleware_SkipsBearerAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/levels", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rr := httptest.NewRecorder()
	csrfRouter().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}
