package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/storyshelf/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))
	return db
}

func seed(t *testing.T, repo *Repository, base time.Time) {
	t.Helper()
	events := []entities.AuditEvent{
		{EventType: entities.AuditEventWrite, Status: entities.AuditStatusSuccess, Action: "POST /api/levels"},
		{EventType: entities.AuditEventImport, Status: entities.AuditStatusFailed, Action: "POST /api/admin/import"},
		{EventType: entities.AuditEventWrite, Status: entities.AuditStatusFailed, Action: "DELETE /api/books/:id"},
	}
	for i := range events {
		events[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Record(&events[i]))
	}
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	seed(t, repo, time.Now().Add(-time.Hour))

	events, total, err := repo.List(Filter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, events, 2)
	assert.Equal(t, "DELETE /api/books/:id", events[0].Action)

	rest, _, err := repo.List(Filter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "POST /api/levels", rest[0].Action)
}

func TestRepository_ListFilters(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	base := time.Now().Add(-time.Hour)
	seed(t, repo, base)

	tests := []struct {
		name   string
		filter Filter
		want   int64
	}{
		{"by type", Filter{Type: entities.AuditEventWrite}, 2},
		{"by status", Filter{Status: entities.AuditStatusFailed}, 2},
		{"type and status", Filter{Type: entities.AuditEventWrite, Status: entities.AuditStatusFailed}, 1},
		{"since", Filter{Since: base.Add(90 * time.Second)}, 1},
		{"no match", Filter{Type: entities.AuditEventSweep}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, total, err := repo.List(tt.filter, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
			assert.Len(t, events, int(tt.want))
		})
	}
}

func TestRepository_RecordStampsTime(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	event := &entities.AuditEvent{EventType: entities.AuditEventSweep}

	require.NoError(t, repo.Record(event))
	assert.False(t, event.CreatedAt.IsZero())
	assert.NotZero(t, event.ID)
}

func TestRepository_Prune(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	require.NoError(t, repo.Record(&entities.AuditEvent{Action: "old", CreatedAt: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, repo.Record(&entities.AuditEvent{Action: "new"}))

	deleted, err := repo.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, _, err := repo.List(Filter{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].Action)
}
