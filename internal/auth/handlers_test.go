package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/database/users"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *Service, func()) {
	t.Helper()
	db, cleanupDB := setupTestDB(t)

	cfg := testAuthConfig(config.AuthModeLocal)
	cfg.MaxLoginAttempts = 2
	svc := NewService(users.NewRepository(db), cfg)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sm, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	mw := NewMiddleware(svc, sm, cfg)
	ctrl := NewAuthController(svc, sm, cfg)

	router := gin.New()
	router.Use(sm.SessionLoadSave(), mw.Handler())
	ctrl.RegisterRoutes(router.Group("/api/auth"))

	cleanup := func() {
		ctrl.Stop()
		cleanupDB()
	}
	return router, svc, cleanup
}

func postJSON(router http.Handler, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAuthController_LoginSessionFlow(t *testing.T) {
	router, svc, cleanup := setupAuthRouter(t)
	defer cleanup()

	_, err := svc.CreateUser("editor", testPassword, true)
	require.NoError(t, err)

	rr := postJSON(router, "/api/auth/login", gin.H{"username": "editor", "password": testPassword})
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "editor", me["username"])
	assert.Equal(t, true, me["is_admin"])
	assert.Equal(t, string(AuthTypeSession), me["auth_type"])
}

func TestAuthController_LoginFailuresAreRateLimited(t *testing.T) {
	router, svc, cleanup := setupAuthRouter(t)
	defer cleanup()

	_, err := svc.CreateUser("editor", testPassword, true)
	require.NoError(t, err)

	bad := gin.H{"username": "editor", "password": "definitely-wrong"}
	assert.Equal(t, http.StatusUnauthorized, postJSON(router, "/api/auth/login", bad).Code)
	assert.Equal(t, http.StatusUnauthorized, postJSON(router, "/api/auth/login", bad).Code)

	good := gin.H{"username": "editor", "password": testPassword}
	assert.Equal(t, http.StatusTooManyRequests, postJSON(router, "/api/auth/login", good).Code)
}

func TestAuthController_LoginRequiresBody(t *testing.T) {
	router, _, cleanup := setupAuthRouter(t)
	defer cleanup()

	rr := postJSON(router, "/api/auth/login", gin.H{"username": "editor"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAuthController_TokenRequiresUser(t *testing.T) {
	router, _, cleanup := setupAuthRouter(t)
	defer cleanup()

	rr := postJSON(router, "/api/auth/token", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
