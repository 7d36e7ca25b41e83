package importers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidFixture = errors.New("invalid catalog fixture")

// Fixture is the decoded form of a catalog YAML file.
type Fixture struct {
	Languages []LanguageFixture `yaml:"languages,omitempty"`
	Levels    []LevelFixture    `yaml:"levels"`
}

type LanguageFixture struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type LevelFixture struct {
	Name  string        `yaml:"name"`
	Books []BookFixture `yaml:"books"`
}

type BookFixture struct {
	// Key identifies the book within the fixture so several levels can
	// share it. Optional.
	Key         string        `yaml:"key,omitempty"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Pages       []PageFixture `yaml:"pages,omitempty"`
}

type PageFixture struct {
	Text         string               `yaml:"text"`
	TextLanguage string               `yaml:"text_language,omitempty"`
	PictureURL   string               `yaml:"picture_url,omitempty"`
	FrontCover   bool                 `yaml:"front_cover,omitempty"`
	Translations []TranslationFixture `yaml:"translations,omitempty"`
}

type TranslationFixture struct {
	Language string `yaml:"language"`
	Text     string `yaml:"text"`
}

// ParseCatalog decodes and validates a fixture. Unknown keys are rejected
// so typos do not silently drop content.
func ParseCatalog(data []byte) (*Fixture, error) {
	return DecodeCatalog(bytes.NewReader(data))
}

// DecodeCatalog is ParseCatalog for a stream.
func DecodeCatalog(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidFixture)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the fixture without touching the store.
func (f *Fixture) Validate() error {
	codes := make(map[string]bool, len(f.Languages))
	for i, lang := range f.Languages {
		code := strings.ToLower(strings.TrimSpace(lang.Code))
		if code == "" {
			return fmt.Errorf("%w: languages[%d]: code is required", ErrInvalidFixture, i)
		}
		if codes[code] {
			return fmt.Errorf("%w: languages[%d]: duplicate code %q", ErrInvalidFixture, i, lang.Code)
		}
		codes[code] = true
	}

	defined := make(map[string]bool)
	for i, level := range f.Levels {
		if strings.TrimSpace(level.Name) == "" {
			return fmt.Errorf("%w: levels[%d]: name is required", ErrInvalidFixture, i)
		}
		for j, book := range level.Books {
			where := fmt.Sprintf("levels[%d].books[%d]", i, j)
			if err := validateBook(book, where, defined); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateBook(book BookFixture, where string, defined map[string]bool) error {
	isRef := book.Key != "" && defined[book.Key]
	if isRef {
		if book.Name != "" || book.Description != "" || len(book.Pages) > 0 {
			return fmt.Errorf("%w: %s: book %q is already defined, a repeat may only carry its key",
				ErrInvalidFixture, where, book.Key)
		}
		return nil
	}
	if strings.TrimSpace(book.Name) == "" {
		return fmt.Errorf("%w: %s: name is required", ErrInvalidFixture, where)
	}
	if book.Key != "" {
		defined[book.Key] = true
	}

	covers := 0
	for k, page := range book.Pages {
		if page.FrontCover {
			covers++
		}
		for t, tr := range page.Translations {
			if strings.TrimSpace(tr.Language) == "" {
				return fmt.Errorf("%w: %s.pages[%d].translations[%d]: language is required",
					ErrInvalidFixture, where, k, t)
			}
		}
	}
	if covers > 1 {
		return fmt.Errorf("%w: %s: %d pages marked as front cover", ErrInvalidFixture, where, covers)
	}
	return nil
}
