package importers

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/database"
	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store/sqlitestore"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return catalog.NewService(sqlitestore.New(db.DB), catalog.Options{Logger: quietLogger()})
}

func TestPipeline_ImportsFixture(t *testing.T) {
	svc := setupCatalog(t)
	ctx := context.Background()
	f, err := ParseCatalog([]byte(sampleFixture))
	require.NoError(t, err)

	result, err := NewPipeline(svc, quietLogger()).Import(ctx, f)
	require.NoError(t, err)

	assert.Equal(t, ImportResult{
		LanguagesCreated: 2,
		LevelsCreated:    2,
		BooksCreated:     2,
		BooksAttached:    3,
		PagesCreated:     2,
	}, result)

	tree, err := svc.Materialize(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Levels, 2)

	beginner := tree.Levels[0]
	assert.Equal(t, "Beginner", beginner.Name)
	require.Len(t, beginner.Books, 1)
	pages := beginner.Books[0].Pages
	require.Len(t, pages, 2)
	assert.True(t, pages[0].IsFrontCover, "cover is moved to the front")
	assert.Equal(t, "Once upon a time", pages[1].Text)
	assert.Equal(t, []entities.Translation{{Language: "de", Text: "Es war einmal"}}, pages[1].Translations)

	review := tree.Levels[1]
	require.Len(t, review.Books, 2)
	assert.Equal(t, beginner.Books[0].ID, review.Books[0].ID, "keyed book is shared")
	assert.Equal(t, "The Owl", review.Books[1].Name)
}

func TestPipeline_SkipsExistingLanguages(t *testing.T) {
	svc := setupCatalog(t)
	ctx := context.Background()
	_, err := svc.CreateLanguage(ctx, "en", "English")
	require.NoError(t, err)

	f := &Fixture{Languages: []LanguageFixture{{Code: "EN", Name: "English"}, {Code: "fr", Name: "French"}}}
	result, err := NewPipeline(svc, quietLogger()).Import(ctx, f)
	require.NoError(t, err)

	assert.Equal(t, 1, result.LanguagesCreated)
	assert.Equal(t, 1, result.LanguagesSkipped)
}

type failingWriter struct {
	CatalogWriter
	err error
}

func (w *failingWriter) CreateAndAttachPage(ctx context.Context, bookID string, in catalog.PageFields) (*entities.Page, error) {
	return nil, w.err
}

func TestPipeline_ReportsProgressOnFailure(t *testing.T) {
	svc := setupCatalog(t)
	boom := errors.New("disk full")
	writer := &failingWriter{CatalogWriter: svc, err: boom}

	f := &Fixture{Levels: []LevelFixture{{
		Name:  "Beginner",
		Books: []BookFixture{{Name: "The Fox", Pages: []PageFixture{{Text: "hello"}}}},
	}}}
	result, err := NewPipeline(writer, quietLogger()).Import(context.Background(), f)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "levels[0].books[0]: pages[0]")
	assert.Equal(t, 1, result.LevelsCreated)
	assert.Equal(t, 1, result.BooksCreated)
	assert.Zero(t, result.PagesCreated)
}

func TestPipeline_RejectsInvalidFixture(t *testing.T) {
	_, err := NewPipeline(setupCatalog(t), quietLogger()).Import(context.Background(), &Fixture{
		Levels: []LevelFixture{{Name: ""}},
	})
	assert.ErrorIs(t, err, ErrInvalidFixture)

	_, err = NewPipeline(setupCatalog(t), quietLogger()).Import(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidFixture)
}
