package catalog

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storyshelf/internal/database"
	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store/sqlitestore"
)

func setupSQLiteService(t *testing.T, opts Options) (*Service, func()) {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	log := logrus.New()
	log.SetOutput(io.Discard)
	opts.Logger = log

	st := sqlitestore.New(db.DB)
	cleanup := func() {
		db.Close()
	}
	return NewService(st, opts), cleanup
}

func TestSQLite_EndToEnd(t *testing.T) {
	svc, cleanup := setupSQLiteService(t, Options{})
	defer cleanup()
	ctx := context.Background()

	level, err := svc.CreateLevel(ctx, "Beginner")
	require.NoError(t, err)
	book, err := svc.CreateBook(ctx, "The Fox", "")
	require.NoError(t, err)
	require.NoError(t, svc.AttachChild(ctx, ParentLevel, level.ID, book.ID, PositionAppend))

	p1, err := svc.CreateAndAttachPage(ctx, book.ID, PageFields{Text: "First"})
	require.NoError(t, err)
	p2, err := svc.CreateAndAttachPage(ctx, book.ID, PageFields{Text: "Second"})
	require.NoError(t, err)
	cover, err := svc.CreateAndAttachPage(ctx, book.ID, PageFields{Text: "Cover", IsFrontCover: true})
	require.NoError(t, err)

	tree, err := svc.Materialize(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Levels, 1)
	require.Len(t, tree.Levels[0].Books, 1)
	assert.Equal(t, []string{cover.ID, p1.ID, p2.ID}, pageIDs(tree.Levels[0].Books[0].Pages))

	require.NoError(t, svc.Reorder(ctx, ParentBook, book.ID, []string{cover.ID, p2.ID, p1.ID}))
	require.NoError(t, svc.DetachAndDelete(ctx, ParentBook, book.ID, p2.ID))

	node, err := svc.MaterializeBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{cover.ID, p1.ID}, pageIDs(node.Pages))
}

func TestSQLite_MaterializeSkipsMalformedLevelRow(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer db.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(sqlitestore.New(db.DB), Options{Logger: log})
	ctx := context.Background()

	level, err := svc.CreateLevel(ctx, "Beginner")
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.DocumentRecord{
		Collection: "levels",
		ID:         "bad",
		Version:    1,
		Data:       "[1]",
	}).Error)

	tree, err := svc.Materialize(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Levels, 1)
	assert.Equal(t, level.ID, tree.Levels[0].ID)
}

func TestSQLite_ConcurrentAttachesAreNotLost(t *testing.T) {
	svc, cleanup := setupSQLiteService(t, Options{MaxCASRetries: 100})
	defer cleanup()
	ctx := context.Background()

	level, err := svc.CreateLevel(ctx, "Beginner")
	require.NoError(t, err)

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		book, err := svc.CreateBook(ctx, fmt.Sprintf("Book %d", i), "")
		require.NoError(t, err)
		ids[i] = book.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = svc.AttachChild(ctx, ParentLevel, level.ID, id, PositionAppend)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	node, err := svc.MaterializeLevel(ctx, level.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, nodeIDs(node.Books))
}

func nodeIDs(nodes []BookNode) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
