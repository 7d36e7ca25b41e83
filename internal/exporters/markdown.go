package exporters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/utils"
)

// MarkdownExporter writes one readable file per book, grouped in a
// directory per level: <dir>/<level>/<book>.md
type MarkdownExporter struct {
	source TreeSource
	dir    string
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewMarkdownExporter(source TreeSource, dir string, log logrus.FieldLogger) *MarkdownExporter {
	return &MarkdownExporter{source: source, dir: dir, log: log, now: time.Now}
}

func (e *MarkdownExporter) Export(ctx context.Context) (ExportResult, error) {
	tree, err := e.source.Materialize(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("materialize catalog: %w", err)
	}
	langs, err := e.source.ListLanguages(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("list languages: %w", err)
	}
	names := make(map[string]string, len(langs))
	for _, l := range langs {
		names[l.Code] = l.Name
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	result := ExportResult{Skipped: tree.Skipped, LanguagesExported: len(langs)}
	for _, level := range tree.Levels {
		levelDir := filepath.Join(e.dir, utils.SanitizeFilename(level.Name))
		if err := os.MkdirAll(levelDir, 0755); err != nil {
			return result, fmt.Errorf("failed to create level directory: %w", err)
		}

		for _, book := range level.Books {
			path := filepath.Join(levelDir, utils.SanitizeFilename(book.Name)+".md")
			content := GenerateMarkdown(level.Name, book, names, e.now())
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return result, fmt.Errorf("write %s: %w", path, err)
			}
			e.log.WithField("path", path).Debug("Exported book")
			result.BooksExported++
			result.PagesExported += len(book.Pages)
			result.Skipped += book.Skipped
		}
		result.LevelsExported++
		result.Skipped += level.Skipped
	}

	return result, nil
}

// GenerateMarkdown renders a book with front matter, one section per page
// and its translations as quotes. langNames maps language codes to display
// names; unknown codes are printed as is.
func GenerateMarkdown(level string, book catalog.BookNode, langNames map[string]string, at time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "---\n")
	fmt.Fprintf(&b, "title: %q\n", book.Name)
	fmt.Fprintf(&b, "level: %q\n", level)
	fmt.Fprintf(&b, "book_id: %s\n", book.ID)
	fmt.Fprintf(&b, "pages: %d\n", len(book.Pages))
	fmt.Fprintf(&b, "exported_at: %s\n", at.Format("2006-01-02"))
	fmt.Fprintf(&b, "---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", book.Name)
	if book.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", book.Description)
	}

	number := 0
	for _, page := range book.Pages {
		if page.IsFrontCover {
			fmt.Fprintf(&b, "## Cover\n\n")
		} else {
			number++
			fmt.Fprintf(&b, "## Page %d\n\n", number)
		}
		if page.PictureURL != "" {
			fmt.Fprintf(&b, "![](%s)\n\n", page.PictureURL)
		}
		if page.Text != "" {
			fmt.Fprintf(&b, "%s\n\n", page.Text)
		}
		for _, tr := range page.Translations {
			name := langNames[tr.Language]
			if name == "" {
				name = tr.Language
			}
			fmt.Fprintf(&b, "> **%s:** %s\n\n", name, strings.ReplaceAll(tr.Text, "\n", "\n> "))
		}
	}

	return b.String()
}
