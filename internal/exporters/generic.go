package exporters

import (
	"context"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/entities"
)

// TreeSource is the read side every exporter works from.
type TreeSource interface {
	Materialize(ctx context.Context) (*catalog.Tree, error)
	ListLanguages(ctx context.Context) ([]entities.Language, error)
}

type ExportResult struct {
	LevelsExported    int `json:"levels_exported"`
	BooksExported     int `json:"books_exported"`
	PagesExported     int `json:"pages_exported"`
	LanguagesExported int `json:"languages_exported"`
	// Skipped counts tree entries that failed to load and are missing from the export.
	Skipped int `json:"skipped"`
}
