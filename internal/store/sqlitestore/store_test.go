package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store"
)

func setupTestDB(t *testing.T) (*Store, func()) {
	dbPath := filepath.Join(t.TempDir(), "documents.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.DocumentRecord{}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}
	return New(db), cleanup
}

func TestStore_CreateAndGet(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := st.Create(ctx, store.CollectionLevels, store.Fields{
		"name":  "Beginner",
		"books": []string{"b1", "b2"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	doc, err := st.Get(ctx, store.CollectionLevels, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, int64(1), doc.Version)
	assert.Equal(t, "Beginner", doc.Fields["name"])
	assert.Equal(t, []any{"b1", "b2"}, doc.Fields["books"])
}

func TestStore_GetMissing(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := st.Get(context.Background(), store.CollectionBooks, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := st.Create(ctx, store.CollectionBooks, store.Fields{"name": "Tale"})
	require.NoError(t, err)

	_, err = st.Get(ctx, store.CollectionPages, id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Create(ctx, store.CollectionBooks, store.Fields{"name": "Other"})
	require.NoError(t, err)

	books, err := st.GetAll(ctx, store.CollectionBooks)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	pages, err := st.GetAll(ctx, store.CollectionPages)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestStore_GetAllSkipsUndecodableRows(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := st.Create(ctx, store.CollectionLevels, store.Fields{"name": "Beginner"})
	require.NoError(t, err)
	require.NoError(t, st.db.Create(&entities.DocumentRecord{
		Collection: string(store.CollectionLevels),
		ID:         "bad",
		Version:    1,
		Data:       "[1]",
	}).Error)

	levels, err := st.GetAll(ctx, store.CollectionLevels)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, id, levels[0].ID)
}

func TestStore_UpdateMergesAndBumpsVersion(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := st.Create(ctx, store.CollectionBooks, store.Fields{"name": "Tale", "description": "old"})
	require.NoError(t, err)

	require.NoError(t, st.Update(ctx, store.CollectionBooks, id, store.Fields{"description": "new"}, 1))

	doc, err := st.Get(ctx, store.CollectionBooks, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)
	assert.Equal(t, "Tale", doc.Fields["name"])
	assert.Equal(t, "new", doc.Fields["description"])
}

func TestStore_UpdateVersionConflict(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := st.Create(ctx, store.CollectionBooks, store.Fields{"name": "Tale"})
	require.NoError(t, err)
	require.NoError(t, st.Update(ctx, store.CollectionBooks, id, store.Fields{"name": "A"}, 0))

	err = st.Update(ctx, store.CollectionBooks, id, store.Fields{"name": "B"}, 1)
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	doc, err := st.Get(ctx, store.CollectionBooks, id)
	require.NoError(t, err)
	assert.Equal(t, "A", doc.Fields["name"])
}

func TestStore_UpdateMissing(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()

	err := st.Update(context.Background(), store.CollectionBooks, "nope", store.Fields{"name": "x"}, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	st, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := st.Create(ctx, store.CollectionPages, store.Fields{"bookId": "b1"})
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, store.CollectionPages, id))
	require.NoError(t, st.Delete(ctx, store.CollectionPages, id))

	_, err = st.Get(ctx, store.CollectionPages, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
