package exporters

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/importers"
	"github.com/mrlokans/storyshelf/internal/utils"
)

// YAMLExporter writes the catalog in the import fixture format, so the output
// can be loaded into another store with the importer.
type YAMLExporter struct {
	source TreeSource
}

func NewYAMLExporter(source TreeSource) *YAMLExporter {
	return &YAMLExporter{source: source}
}

func (e *YAMLExporter) Export(ctx context.Context, w io.Writer) (ExportResult, error) {
	tree, err := e.source.Materialize(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("materialize catalog: %w", err)
	}
	langs, err := e.source.ListLanguages(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("list languages: %w", err)
	}

	fixture, result := BuildFixture(tree, langs)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fixture); err != nil {
		return ExportResult{}, fmt.Errorf("encode catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return ExportResult{}, fmt.Errorf("encode catalog: %w", err)
	}
	return result, nil
}

// BuildFixture converts a materialized tree into an import fixture. A book
// attached to several levels is written in full once and referenced by key
// afterwards.
func BuildFixture(tree *catalog.Tree, langs []entities.Language) (*importers.Fixture, ExportResult) {
	result := ExportResult{Skipped: tree.Skipped}
	fixture := &importers.Fixture{Levels: []importers.LevelFixture{}}

	for _, lang := range langs {
		fixture.Languages = append(fixture.Languages, importers.LanguageFixture{Code: lang.Code, Name: lang.Name})
		result.LanguagesExported++
	}

	keys := sharedBookKeys(tree)
	written := make(map[string]bool)

	for _, level := range tree.Levels {
		lf := importers.LevelFixture{Name: level.Name, Books: []importers.BookFixture{}}
		result.Skipped += level.Skipped

		for _, book := range level.Books {
			key := keys[book.ID]
			if written[book.ID] {
				lf.Books = append(lf.Books, importers.BookFixture{Key: key})
				continue
			}
			written[book.ID] = true

			bf := importers.BookFixture{Key: key, Name: book.Name, Description: book.Description}
			for _, page := range book.Pages {
				bf.Pages = append(bf.Pages, pageFixture(page))
			}
			lf.Books = append(lf.Books, bf)
			result.BooksExported++
			result.PagesExported += len(book.Pages)
			result.Skipped += book.Skipped
		}

		fixture.Levels = append(fixture.Levels, lf)
		result.LevelsExported++
	}
	return fixture, result
}

// sharedBookKeys assigns a unique slug key to every book that appears more
// than once in the tree.
func sharedBookKeys(tree *catalog.Tree) map[string]string {
	seen := make(map[string]int)
	var order []catalog.BookNode
	for _, level := range tree.Levels {
		for _, book := range level.Books {
			if seen[book.ID] == 0 {
				order = append(order, book)
			}
			seen[book.ID]++
		}
	}

	keys := make(map[string]string)
	used := make(map[string]bool)
	for _, book := range order {
		if seen[book.ID] < 2 {
			continue
		}
		base := utils.Slugify(book.Name)
		if base == "" {
			base = "book"
		}
		key := base
		for n := 2; used[key]; n++ {
			key = base + "-" + strconv.Itoa(n)
		}
		used[key] = true
		keys[book.ID] = key
	}
	return keys
}

func pageFixture(page entities.Page) importers.PageFixture {
	pf := importers.PageFixture{
		Text:         page.Text,
		TextLanguage: page.TextLanguage,
		PictureURL:   page.PictureURL,
		FrontCover:   page.IsFrontCover,
	}
	for _, tr := range page.Translations {
		pf.Translations = append(pf.Translations, importers.TranslationFixture{Language: tr.Language, Text: tr.Text})
	}
	return pf
}
