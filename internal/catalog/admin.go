package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store"
)

// CreateLevel creates an empty level. It is not linked anywhere.
func (s *Service) CreateLevel(ctx context.Context, name string) (*entities.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: level name is required", ErrInvalidInput)
	}
	id, err := s.store.Create(ctx, store.CollectionLevels, store.Fields{
		fieldName:  name,
		fieldBooks: []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("create level: %w", err)
	}
	s.log.WithFields(logrus.Fields{"level_id": id, "name": name}).Info("Level created")
	return &entities.Level{ID: id, Name: name, Books: []string{}, Version: 1}, nil
}

// CreateBook creates a book with no pages. Use AttachChild to list it in a level.
func (s *Service) CreateBook(ctx context.Context, name, description string) (*entities.Book, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: book name is required", ErrInvalidInput)
	}
	id, err := s.store.Create(ctx, store.CollectionBooks, store.Fields{
		fieldName:        name,
		fieldDescription: description,
		fieldPages:       []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	s.log.WithFields(logrus.Fields{"book_id": id, "name": name}).Info("Book created")
	return &entities.Book{ID: id, Name: name, Description: description, Pages: []string{}, Version: 1}, nil
}

// UpdateLevel renames a level.
func (s *Service) UpdateLevel(ctx context.Context, id, name string) (*entities.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: level name is required", ErrInvalidInput)
	}
	if err := s.store.Update(ctx, store.CollectionLevels, id, store.Fields{fieldName: name}, 0); err != nil {
		return nil, fmt.Errorf("update level %s: %w", id, err)
	}
	doc, err := s.store.Get(ctx, store.CollectionLevels, id)
	if err != nil {
		return nil, fmt.Errorf("levels %s: %w", id, err)
	}
	level, err := decodeLevel(doc)
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// BookUpdate holds the book fields to change. Nil fields are left as is.
type BookUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// UpdateBook edits a book's name and description. Its page array is untouched.
func (s *Service) UpdateBook(ctx context.Context, id string, in BookUpdate) (*entities.Book, error) {
	fields := store.Fields{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: book name cannot be empty", ErrInvalidInput)
		}
		fields[fieldName] = name
	}
	if in.Description != nil {
		fields[fieldDescription] = *in.Description
	}

	if len(fields) > 0 {
		if err := s.store.Update(ctx, store.CollectionBooks, id, fields, 0); err != nil {
			return nil, fmt.Errorf("update book %s: %w", id, err)
		}
	}
	doc, err := s.store.Get(ctx, store.CollectionBooks, id)
	if err != nil {
		return nil, fmt.Errorf("books %s: %w", id, err)
	}
	book, err := decodeBook(doc)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// PageUpdate holds the page fields to change. Nil fields are left as is.
type PageUpdate struct {
	Text         *string                 `json:"text"`
	TextLanguage *string                 `json:"text_language"`
	PictureURL   *string                 `json:"picture_url"`
	IsFrontCover *bool                   `json:"is_front_cover"`
	Translations *[]entities.Translation `json:"translations"`
}

// UpdatePage edits a page. Promoting a page to front cover demotes the book's
// other covers and moves the page to index 0 of its book.
func (s *Service) UpdatePage(ctx context.Context, id string, in PageUpdate) (*entities.Page, error) {
	current, err := s.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := store.Fields{}
	if in.Text != nil {
		fields[fieldText] = *in.Text
	}
	if in.TextLanguage != nil {
		fields[fieldTextLanguage] = *in.TextLanguage
	}
	if in.PictureURL != nil {
		fields[fieldPictureURL] = *in.PictureURL
	}
	if in.Translations != nil {
		fields[fieldTranslations] = encodeTranslations(*in.Translations)
	}
	if in.IsFrontCover != nil {
		fields[fieldIsFrontCover] = *in.IsFrontCover
	}

	if len(fields) > 0 {
		if err := s.store.Update(ctx, store.CollectionPages, id, fields, 0); err != nil {
			return nil, fmt.Errorf("update page %s: %w", id, err)
		}
	}

	if in.IsFrontCover != nil && *in.IsFrontCover {
		ps, _ := parentSpecOf(ParentBook)
		err := s.updateRefs(ctx, ps, current.BookID, func(refs []string) ([]string, bool, error) {
			return moveToFront(refs, id)
		})
		if err != nil {
			return nil, &PartialWriteError{Op: "update_page", Step: "move_to_front", ID: id, Err: err}
		}
		if err := s.demoteCovers(ctx, current.BookID, id); err != nil {
			return nil, &PartialWriteError{Op: "update_page", Step: "demote_covers", ID: id, Err: err}
		}
	}

	return s.GetPage(ctx, id)
}

// DeleteLevel deletes a level document. Its books are left in place.
func (s *Service) DeleteLevel(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.CollectionLevels, id); err != nil {
		return fmt.Errorf("delete level %s: %w", id, err)
	}
	s.log.WithField("level_id", id).Info("Level deleted")
	return nil
}

// DeleteBook deletes a book and removes it from every level that lists it.
// Its pages are left in place.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.CollectionBooks, id); err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}

	levels, _, err := s.listLevels(ctx)
	if err != nil {
		return &PartialWriteError{Op: "delete_book", Step: "list_levels", ID: id, Err: err}
	}

	ps, _ := parentSpecOf(ParentLevel)
	var merr *multierror.Error
	for _, level := range levels {
		if !slices.Contains(level.Books, id) {
			continue
		}
		err := s.updateRefs(ctx, ps, level.ID, removeRef(id))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return &PartialWriteError{Op: "delete_book", Step: "detach", ID: id, Err: err}
	}

	s.log.WithField("book_id", id).Info("Book deleted")
	return nil
}

// CreateLanguage adds an entry to the language list. Codes are unique,
// compared case-insensitively.
func (s *Service) CreateLanguage(ctx context.Context, code, name string) (*entities.Language, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: language code is required", ErrInvalidInput)
	}

	existing, err := s.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}
	for _, lang := range existing {
		if strings.EqualFold(lang.Code, code) {
			return nil, fmt.Errorf("%w: language %q already exists", ErrInvalidInput, code)
		}
	}

	id, err := s.store.Create(ctx, store.CollectionLanguages, store.Fields{
		fieldCode: code,
		fieldName: strings.TrimSpace(name),
	})
	if err != nil {
		return nil, fmt.Errorf("create language: %w", err)
	}
	return &entities.Language{ID: id, Code: code, Name: strings.TrimSpace(name)}, nil
}

// ListLanguages returns the language list sorted by code.
func (s *Service) ListLanguages(ctx context.Context) ([]entities.Language, error) {
	docs, err := s.store.GetAll(ctx, store.CollectionLanguages)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}

	langs := make([]entities.Language, 0, len(docs))
	for i := range docs {
		lang, err := decodeLanguage(&docs[i])
		if err != nil {
			s.log.WithError(err).Warn("Skipping malformed language")
			continue
		}
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })
	return langs, nil
}

func (s *Service) DeleteLanguage(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.CollectionLanguages, id); err != nil {
		return fmt.Errorf("delete language %s: %w", id, err)
	}
	return nil
}
