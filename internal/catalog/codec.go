package catalog

import (
	"fmt"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store"
)

// Document field names as stored in the record store.
const (
	fieldName         = "name"
	fieldBooks        = "books"
	fieldDescription  = "description"
	fieldPages        = "pages"
	fieldBookID       = "bookId"
	fieldText         = "text"
	fieldTextLanguage = "textLanguage"
	fieldPictureURL   = "pictureUrl"
	fieldIsFrontCover = "isFrontCover"
	fieldTranslations = "translations"
	fieldCode         = "code"
	fieldLanguage     = "language"
)

func decodeLevel(doc *store.Document) (entities.Level, error) {
	name, err := requiredString(doc, fieldName)
	if err != nil {
		return entities.Level{}, err
	}
	books, err := refsOf(doc.Fields, fieldBooks)
	if err != nil {
		return entities.Level{}, invalid(doc, err)
	}
	return entities.Level{ID: doc.ID, Name: name, Books: books, Version: doc.Version}, nil
}

func decodeBook(doc *store.Document) (entities.Book, error) {
	name, err := requiredString(doc, fieldName)
	if err != nil {
		return entities.Book{}, err
	}
	description, err := optionalString(doc.Fields, fieldDescription)
	if err != nil {
		return entities.Book{}, invalid(doc, err)
	}
	pages, err := refsOf(doc.Fields, fieldPages)
	if err != nil {
		return entities.Book{}, invalid(doc, err)
	}
	return entities.Book{
		ID:          doc.ID,
		Name:        name,
		Description: description,
		Pages:       pages,
		Version:     doc.Version,
	}, nil
}

func decodePage(doc *store.Document) (entities.Page, error) {
	bookID, err := requiredString(doc, fieldBookID)
	if err != nil {
		return entities.Page{}, err
	}
	page := entities.Page{ID: doc.ID, BookID: bookID, Version: doc.Version}

	for key, dst := range map[string]*string{
		fieldText:         &page.Text,
		fieldTextLanguage: &page.TextLanguage,
		fieldPictureURL:   &page.PictureURL,
	} {
		if *dst, err = optionalString(doc.Fields, key); err != nil {
			return entities.Page{}, invalid(doc, err)
		}
	}
	if page.IsFrontCover, err = optionalBool(doc.Fields, fieldIsFrontCover); err != nil {
		return entities.Page{}, invalid(doc, err)
	}
	if page.Translations, err = translationsOf(doc.Fields); err != nil {
		return entities.Page{}, invalid(doc, err)
	}
	return page, nil
}

func decodeLanguage(doc *store.Document) (entities.Language, error) {
	code, err := requiredString(doc, fieldCode)
	if err != nil {
		return entities.Language{}, err
	}
	name, err := optionalString(doc.Fields, fieldName)
	if err != nil {
		return entities.Language{}, invalid(doc, err)
	}
	return entities.Language{ID: doc.ID, Code: code, Name: name}, nil
}

func encodeTranslations(ts []entities.Translation) []map[string]any {
	out := make([]map[string]any, 0, len(ts))
	for _, t := range ts {
		out = append(out, map[string]any{fieldLanguage: t.Language, fieldText: t.Text})
	}
	return out
}

func invalid(doc *store.Document, err error) error {
	return fmt.Errorf("%w: %s/%s: %v", ErrInvalidDocument, doc.Collection, doc.ID, err)
}

func requiredString(doc *store.Document, key string) (string, error) {
	if _, ok := doc.Fields[key]; !ok {
		return "", invalid(doc, fmt.Errorf("missing field %q", key))
	}
	v, err := optionalString(doc.Fields, key)
	if err != nil {
		return "", invalid(doc, err)
	}
	return v, nil
}

func optionalString(f store.Fields, key string) (string, error) {
	raw, ok := f[key]
	if !ok || raw == nil {
		return "", nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, raw)
	}
	return v, nil
}

func optionalBool(f store.Fields, key string) (bool, error) {
	raw, ok := f[key]
	if !ok || raw == nil {
		return false, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("field %q: expected bool, got %T", key, raw)
	}
	return v, nil
}

// refsOf reads an id array. Entries that are not non-empty strings are
// skipped: some legacy documents hold embedded objects instead of ids.
func refsOf(f store.Fields, key string) ([]string, error) {
	raw, ok := f[key]
	if !ok || raw == nil {
		return []string{}, nil
	}
	switch v := raw.(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, id := range v {
			if id != "" {
				out = append(out, id)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if id, ok := item.(string); ok && id != "" {
				out = append(out, id)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q: expected array, got %T", key, raw)
	}
}

func translationsOf(f store.Fields) ([]entities.Translation, error) {
	raw, ok := f[fieldTranslations]
	if !ok || raw == nil {
		return []entities.Translation{}, nil
	}

	var items []map[string]any
	switch v := raw.(type) {
	case []map[string]any:
		items = v
	case []any:
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("translation %d: expected object, got %T", i, item)
			}
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("field %q: expected array, got %T", fieldTranslations, raw)
	}

	out := make([]entities.Translation, 0, len(items))
	for i, m := range items {
		lang, err := optionalString(m, fieldLanguage)
		if err != nil {
			return nil, fmt.Errorf("translation %d: %w", i, err)
		}
		text, err := optionalString(m, fieldText)
		if err != nil {
			return nil, fmt.Errorf("translation %d: %w", i, err)
		}
		out = append(out, entities.Translation{Language: lang, Text: text})
	}
	return out, nil
}
