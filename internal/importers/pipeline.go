package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/entities"
)

// CatalogWriter is the subset of catalog.Service the importer writes through.
type CatalogWriter interface {
	ListLanguages(ctx context.Context) ([]entities.Language, error)
	CreateLanguage(ctx context.Context, code, name string) (*entities.Language, error)
	CreateLevel(ctx context.Context, name string) (*entities.Level, error)
	CreateBook(ctx context.Context, name, description string) (*entities.Book, error)
	AttachChild(ctx context.Context, pt catalog.ParentType, parentID, childID string, pos catalog.Position) error
	CreateAndAttachPage(ctx context.Context, bookID string, in catalog.PageFields) (*entities.Page, error)
}

var _ CatalogWriter = (*catalog.Service)(nil)

// ImportResult counts what an import created.
type ImportResult struct {
	LanguagesCreated int `json:"languages_created"`
	LanguagesSkipped int `json:"languages_skipped"`
	LevelsCreated    int `json:"levels_created"`
	BooksCreated     int `json:"books_created"`
	BooksAttached    int `json:"books_attached"`
	PagesCreated     int `json:"pages_created"`
}

// Pipeline writes fixtures into the catalog. An import is not
// transactional: on error the returned result describes what was written
// before the failure.
type Pipeline struct {
	writer CatalogWriter
	log    logrus.FieldLogger
}

// NewPipeline creates an import pipeline writing through writer.
func NewPipeline(writer CatalogWriter, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{writer: writer, log: log.WithField("component", "importer")}
}

// Import writes f. Languages whose code already exists are skipped.
func (p *Pipeline) Import(ctx context.Context, f *Fixture) (ImportResult, error) {
	var result ImportResult
	if f == nil {
		return result, fmt.Errorf("%w: nil fixture", ErrInvalidFixture)
	}
	if err := f.Validate(); err != nil {
		return result, err
	}

	if err := p.importLanguages(ctx, f.Languages, &result); err != nil {
		return result, err
	}

	books := make(map[string]string) // fixture key → book id
	for i, lf := range f.Levels {
		level, err := p.writer.CreateLevel(ctx, lf.Name)
		if err != nil {
			return result, fmt.Errorf("levels[%d]: create level: %w", i, err)
		}
		result.LevelsCreated++

		for j, bf := range lf.Books {
			bookID, err := p.importBook(ctx, bf, books, &result)
			if err != nil {
				return result, fmt.Errorf("levels[%d].books[%d]: %w", i, j, err)
			}
			if err := p.writer.AttachChild(ctx, catalog.ParentLevel, level.ID, bookID, catalog.PositionAppend); err != nil {
				return result, fmt.Errorf("levels[%d].books[%d]: attach: %w", i, j, err)
			}
			result.BooksAttached++
		}
	}

	p.log.WithFields(logrus.Fields{
		"languages": result.LanguagesCreated,
		"levels":    result.LevelsCreated,
		"books":     result.BooksCreated,
		"pages":     result.PagesCreated,
	}).Info("Catalog import complete")
	return result, nil
}

func (p *Pipeline) importLanguages(ctx context.Context, langs []LanguageFixture, result *ImportResult) error {
	if len(langs) == 0 {
		return nil
	}
	existing, err := p.writer.ListLanguages(ctx)
	if err != nil {
		return fmt.Errorf("list languages: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, l := range existing {
		known[strings.ToLower(l.Code)] = true
	}

	for i, lf := range langs {
		if known[strings.ToLower(strings.TrimSpace(lf.Code))] {
			result.LanguagesSkipped++
			continue
		}
		if _, err := p.writer.CreateLanguage(ctx, lf.Code, lf.Name); err != nil {
			// Lost a race with a concurrent writer; the language exists.
			if errors.Is(err, catalog.ErrInvalidInput) {
				result.LanguagesSkipped++
				continue
			}
			return fmt.Errorf("languages[%d]: %w", i, err)
		}
		result.LanguagesCreated++
	}
	return nil
}

func (p *Pipeline) importBook(ctx context.Context, bf BookFixture, books map[string]string, result *ImportResult) (string, error) {
	if bf.Key != "" {
		if id, ok := books[bf.Key]; ok {
			return id, nil
		}
	}

	book, err := p.writer.CreateBook(ctx, bf.Name, bf.Description)
	if err != nil {
		return "", fmt.Errorf("create book: %w", err)
	}
	result.BooksCreated++
	if bf.Key != "" {
		books[bf.Key] = book.ID
	}

	for k, pf := range bf.Pages {
		if _, err := p.writer.CreateAndAttachPage(ctx, book.ID, pageFields(pf)); err != nil {
			return "", fmt.Errorf("pages[%d]: %w", k, err)
		}
		result.PagesCreated++
	}
	return book.ID, nil
}

func pageFields(pf PageFixture) catalog.PageFields {
	translations := make([]entities.Translation, 0, len(pf.Translations))
	for _, t := range pf.Translations {
		translations = append(translations, entities.Translation{Language: t.Language, Text: t.Text})
	}
	return catalog.PageFields{
		Text:         pf.Text,
		TextLanguage: pf.TextLanguage,
		PictureURL:   pf.PictureURL,
		IsFrontCover: pf.FrontCover,
		Translations: translations,
	}
}
