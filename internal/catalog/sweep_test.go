package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storyshelf/internal/store"
)

func TestSweepDanglingReferences(t *testing.T) {
	f := newFakeStore()
	seedLevel(f, "L1", "Beginner", "B1", "deleted-book", "B2")
	seedLevel(f, "L2", "Advanced", "B2")
	seedBook(f, "B1", "One", "P1", "deleted-page", "deleted-page")
	seedBook(f, "B2", "Two")
	seedPage(f, "P1", "B1", false)
	svc := newTestService(f)

	report, err := svc.SweepDanglingReferences(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.LevelsScanned)
	assert.Equal(t, 2, report.BooksScanned)
	assert.Equal(t, 3, report.RefsRemoved)
	assert.Equal(t, []string{"B1", "B2"}, f.refs(store.CollectionLevels, "L1", fieldBooks))
	assert.Equal(t, []string{"P1"}, f.refs(store.CollectionBooks, "B1", fieldPages))
}

func TestSweepDanglingReferences_KeepsUnreadableRefs(t *testing.T) {
	f := newFakeStore()
	seedLevel(f, "L1", "Beginner", "flaky")
	f.getErrs[fkey(store.CollectionBooks, "flaky")] = errors.New("timeout")
	svc := newTestService(f)

	report, err := svc.SweepDanglingReferences(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.RefsRemoved)
	assert.Equal(t, []string{"flaky"}, f.refs(store.CollectionLevels, "L1", fieldBooks))
}

func TestSweepDanglingReferences_NothingToDo(t *testing.T) {
	f := newFakeStore()
	seedLevel(f, "L1", "Beginner", "B1")
	seedBook(f, "B1", "One")
	svc := newTestService(f)

	report, err := svc.SweepDanglingReferences(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.RefsRemoved)

	doc, err := f.Get(context.Background(), store.CollectionLevels, "L1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
}
