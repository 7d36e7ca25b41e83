package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/entities"
)

const maxAuditPageSize = 200

type AuditController struct {
	audit AuditLog
}

func NewAuditController(audit AuditLog) *AuditController {
	return &AuditController{audit: audit}
}

type auditPage struct {
	Events []entities.AuditEvent `json:"events"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// List handles GET /api/admin/audit?type=&limit=&offset=
func (ac *AuditController) List(c *gin.Context) {
	limit, err := queryInt(c, "limit", 50)
	if err != nil || limit <= 0 || limit > maxAuditPageSize {
		respondBadRequest(c, "limit must be between 1 and 200")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		respondBadRequest(c, "offset must be a non-negative integer")
		return
	}

	events, total, err := ac.audit.GetEvents(entities.AuditEventType(c.Query("type")), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	c.JSON(http.StatusOK, auditPage{Events: events, Total: total, Limit: limit, Offset: offset})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
