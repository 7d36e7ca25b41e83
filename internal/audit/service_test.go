package audit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storyshelf/internal/auth"
	"github.com/mrlokans/storyshelf/internal/database"
	auditRepo "github.com/mrlokans/storyshelf/internal/database/audit"
	"github.com/mrlokans/storyshelf/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(auditRepo.NewRepository(db.DB), log)
}

func TestService_LogTruncates(t *testing.T) {
	svc := setupTestService(t)

	err := svc.Log(&entities.AuditEvent{
		EventType:   entities.AuditEventWrite,
		Action:      "POST /api/levels",
		Description: strings.Repeat("x", 600),
		Status:      entities.AuditStatusSuccess,
	})
	require.NoError(t, err)

	events, total, err := svc.GetEvents("", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events[0].Description, maxTextLen)
	assert.True(t, strings.HasSuffix(events[0].Description, "..."))
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc := setupTestService(t)
	require.NoError(t, svc.Log(&entities.AuditEvent{Action: "old", CreatedAt: time.Now().Add(-72 * time.Hour)}))
	require.NoError(t, svc.Log(&entities.AuditEvent{Action: "fresh"}))

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func auditedRouter(svc *Service) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, uint(7))
		c.Set(auth.ContextKeyUsername, "editor")
		c.Next()
	})
	router.Use(svc.Middleware())
	router.GET("/api/levels", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/levels/:id/books", func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.POST("/api/admin/import", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	return router
}

func TestMiddleware_RecordsWrites(t *testing.T) {
	svc := setupTestService(t)
	router := auditedRouter(svc)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/levels", nil),
		httptest.NewRequest(http.MethodPost, "/api/levels/L1/books", nil),
		httptest.NewRequest(http.MethodPost, "/api/admin/import", nil),
	} {
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	svc.Wait()

	events, total, err := svc.GetEvents("", 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total, "reads are not audited")

	byAction := map[string]entities.AuditEvent{}
	for _, e := range events {
		byAction[e.Action] = e
	}

	attach := byAction["POST /api/levels/:id/books"]
	assert.Equal(t, entities.AuditEventWrite, attach.EventType)
	assert.Equal(t, "L1", attach.EntityID)
	assert.Equal(t, uint(7), attach.UserID)
	assert.Equal(t, "editor", attach.Username)
	assert.Equal(t, http.StatusCreated, attach.HTTPStatus)
	assert.Equal(t, entities.AuditStatusSuccess, attach.Status)

	imp := byAction["POST /api/admin/import"]
	assert.Equal(t, entities.AuditEventImport, imp.EventType)
	assert.Equal(t, entities.AuditStatusFailed, imp.Status)
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, entities.AuditEventSweep, eventTypeFor("/api/admin/sweep"))
	assert.Equal(t, entities.AuditEventImport, eventTypeFor("/api/admin/import"))
	assert.Equal(t, entities.AuditEventWrite, eventTypeFor("/api/books/:id"))
}
