package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store"
)

// Tree is the fully materialized catalog.
type Tree struct {
	Levels []LevelNode `json:"levels"`
	// Skipped counts entries left out because they failed to load for a
	// reason other than not existing.
	Skipped int `json:"skipped"`
}

type LevelNode struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Books   []BookNode `json:"books"`
	Skipped int        `json:"skipped,omitempty"`
}

type BookNode struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Pages       []entities.Page `json:"pages"`
	Skipped     int             `json:"skipped,omitempty"`
}

// Materialize loads every level with its books and their pages. Children that
// fail to load are left out and counted; only a failure to list the levels
// themselves, or a cancelled context, fails the call. Levels are sorted by
// name, then id.
func (s *Service) Materialize(ctx context.Context) (*Tree, error) {
	levels, skipped, err := s.listLevels(ctx)
	if err != nil {
		return nil, err
	}

	tree := &Tree{Levels: make([]LevelNode, 0, len(levels)), Skipped: skipped}
	for _, level := range levels {
		node, err := s.materializeLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		tree.Levels = append(tree.Levels, node)
		tree.Skipped += node.Skipped
	}
	return tree, nil
}

// MaterializeLevel loads a single level subtree.
func (s *Service) MaterializeLevel(ctx context.Context, id string) (*LevelNode, error) {
	doc, err := s.store.Get(ctx, store.CollectionLevels, id)
	if err != nil {
		return nil, fmt.Errorf("levels %s: %w", id, err)
	}
	level, err := decodeLevel(doc)
	if err != nil {
		return nil, err
	}
	node, err := s.materializeLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// MaterializeBook loads a single book with its pages.
func (s *Service) MaterializeBook(ctx context.Context, id string) (*BookNode, error) {
	doc, err := s.store.Get(ctx, store.CollectionBooks, id)
	if err != nil {
		return nil, fmt.Errorf("books %s: %w", id, err)
	}
	book, err := decodeBook(doc)
	if err != nil {
		return nil, err
	}
	node, err := s.materializeBook(ctx, book)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (s *Service) materializeLevel(ctx context.Context, level entities.Level) (LevelNode, error) {
	node := LevelNode{ID: level.ID, Name: level.Name, Books: []BookNode{}}

	books, err := s.books.Resolve(ctx, level.Books)
	if ctx.Err() != nil {
		return LevelNode{}, ctx.Err()
	}
	if err != nil {
		node.Skipped += failureCount(err)
		s.log.WithError(err).WithField("level_id", level.ID).Warn("Some books of level could not be loaded")
	}

	for _, book := range books {
		bookNode, err := s.materializeBook(ctx, book)
		if err != nil {
			return LevelNode{}, err
		}
		node.Books = append(node.Books, bookNode)
		node.Skipped += bookNode.Skipped
	}
	return node, nil
}

func (s *Service) materializeBook(ctx context.Context, book entities.Book) (BookNode, error) {
	node := BookNode{ID: book.ID, Name: book.Name, Description: book.Description}

	pages, err := s.pages.Resolve(ctx, book.Pages)
	if ctx.Err() != nil {
		return BookNode{}, ctx.Err()
	}
	if err != nil {
		node.Skipped = failureCount(err)
		s.log.WithError(err).WithField("book_id", book.ID).Warn("Some pages of book could not be loaded")
	}
	node.Pages = pages
	return node, nil
}

// listLevels decodes every level, dropping and counting malformed ones.
func (s *Service) listLevels(ctx context.Context) ([]entities.Level, int, error) {
	docs, err := s.store.GetAll(ctx, store.CollectionLevels)
	if err != nil {
		return nil, 0, fmt.Errorf("list levels: %w", err)
	}

	skipped := 0
	levels := make([]entities.Level, 0, len(docs))
	for i := range docs {
		level, err := decodeLevel(&docs[i])
		if err != nil {
			skipped++
			s.log.WithError(err).Warn("Skipping malformed level")
			continue
		}
		levels = append(levels, level)
	}

	sort.SliceStable(levels, func(i, j int) bool {
		if levels[i].Name != levels[j].Name {
			return levels[i].Name < levels[j].Name
		}
		return levels[i].ID < levels[j].ID
	})
	return levels, skipped, nil
}

// ListLevels returns every well-formed level, sorted by name then id.
func (s *Service) ListLevels(ctx context.Context) ([]entities.Level, error) {
	levels, _, err := s.listLevels(ctx)
	return levels, err
}

// ListBooks returns every well-formed book, sorted by name then id.
func (s *Service) ListBooks(ctx context.Context) ([]entities.Book, error) {
	docs, err := s.store.GetAll(ctx, store.CollectionBooks)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	books := make([]entities.Book, 0, len(docs))
	for i := range docs {
		book, err := decodeBook(&docs[i])
		if err != nil {
			s.log.WithError(err).Warn("Skipping malformed book")
			continue
		}
		books = append(books, book)
	}

	sort.SliceStable(books, func(i, j int) bool {
		if books[i].Name != books[j].Name {
			return books[i].Name < books[j].Name
		}
		return books[i].ID < books[j].ID
	})
	return books, nil
}

// GetPage returns a single page.
func (s *Service) GetPage(ctx context.Context, id string) (*entities.Page, error) {
	doc, err := s.store.Get(ctx, store.CollectionPages, id)
	if err != nil {
		return nil, fmt.Errorf("pages %s: %w", id, err)
	}
	page, err := decodePage(doc)
	if err != nil {
		return nil, err
	}
	return &page, nil
}
