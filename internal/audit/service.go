package audit

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/database/audit"
	"github.com/mrlokans/storyshelf/internal/entities"
)

const maxTextLen = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	log  logrus.FieldLogger
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log}
}

// Log records an audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	event.Description = truncate(event.Description, maxTextLen)
	event.UserAgent = truncate(event.UserAgent, maxTextLen)
	event.ErrorMsg = truncate(event.ErrorMsg, maxTextLen)
	return s.repo.Record(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Log(event); err != nil {
			s.log.WithError(err).WithField("action", event.Action).Warn("Failed to log audit event")
		}
	}()
}

// Wait blocks until every pending LogAsync call has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// GetEvents retrieves paginated audit events of one type, or of every type
// when eventType is empty.
func (s *Service) GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(audit.Filter{Type: eventType}, limit, offset)
}

// DeleteOldEvents removes events older than retention.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.Prune(time.Now().Add(-retention))
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
