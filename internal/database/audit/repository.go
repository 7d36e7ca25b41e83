// Package audit stores the catalog audit trail.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/storyshelf/internal/entities"
)

const defaultPageSize = 50

// Filter narrows a listing. Zero fields match everything.
type Filter struct {
	Type   entities.AuditEventType
	Status entities.AuditStatus
	Since  time.Time
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if f.Type != "" {
		q = q.Where("event_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	return q
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts event, stamping CreatedAt when unset.
func (r *Repository) Record(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// List returns one page of matching events, newest first, and the total
// number of matches.
func (r *Repository) List(f Filter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var total int64
	if err := f.apply(r.db.Model(&entities.AuditEvent{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	offset = max(offset, 0)

	var events []entities.AuditEvent
	err := f.apply(r.db.Model(&entities.AuditEvent{})).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, total, err
}

// Prune deletes events created before cutoff and reports how many went.
func (r *Repository) Prune(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{})
	return res.RowsAffected, res.Error
}
