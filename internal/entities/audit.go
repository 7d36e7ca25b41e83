package entities

import "time"

type AuditEventType string

const (
	AuditEventWrite  AuditEventType = "catalog_write"
	AuditEventImport AuditEventType = "import"
	AuditEventSweep  AuditEventType = "sweep"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent records one administrative change to the catalog.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	Username    string         `gorm:"size:100" json:"username,omitempty"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g. "POST /api/levels/:id/books"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityID    string         `gorm:"size:64" json:"entity_id,omitempty"`
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"size:500" json:"user_agent,omitempty"`
	HTTPStatus  int            `json:"http_status,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
