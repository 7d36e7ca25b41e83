package audit

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/auth"
	"github.com/mrlokans/storyshelf/internal/entities"
)

// Middleware records every write that reaches a handler. Reads are ignored.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		event := &entities.AuditEvent{
			UserID:      auth.GetUserID(c),
			Username:    auth.GetUsername(c),
			EventType:   eventTypeFor(route),
			Action:      c.Request.Method + " " + route,
			Description: fmt.Sprintf("%s %s answered %d", c.Request.Method, c.Request.URL.Path, status),
			EntityID:    c.Param("id"),
			IPAddress:   c.ClientIP(),
			UserAgent:   c.Request.UserAgent(),
			HTTPStatus:  status,
			Status:      entities.AuditStatusSuccess,
		}
		if status >= http.StatusBadRequest {
			event.Status = entities.AuditStatusFailed
			if errs := c.Errors.String(); errs != "" {
				event.ErrorMsg = errs
			}
		}

		s.LogAsync(event)
	}
}

func eventTypeFor(route string) entities.AuditEventType {
	switch {
	case strings.HasSuffix(route, "/admin/import"):
		return entities.AuditEventImport
	case strings.HasSuffix(route, "/admin/sweep"):
		return entities.AuditEventSweep
	default:
		return entities.AuditEventWrite
	}
}
