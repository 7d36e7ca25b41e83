package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store"
)

func TestDecodePage(t *testing.T) {
	doc := &store.Document{
		Collection: store.CollectionPages,
		ID:         "p1",
		Version:    4,
		Fields: store.Fields{
			"bookId":       "b1",
			"text":         "Hello",
			"textLanguage": "en",
			"pictureUrl":   "https://example.com/p1.png",
			"isFrontCover": true,
			"translations": []any{
				map[string]any{"language": "de", "text": "Hallo"},
			},
		},
	}

	page, err := decodePage(doc)
	require.NoError(t, err)

	assert.Equal(t, entities.Page{
		ID:           "p1",
		BookID:       "b1",
		Text:         "Hello",
		TextLanguage: "en",
		PictureURL:   "https://example.com/p1.png",
		IsFrontCover: true,
		Translations: []entities.Translation{{Language: "de", Text: "Hallo"}},
		Version:      4,
	}, page)
}

func TestDecode_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		decode func(*store.Document) error
		fields store.Fields
	}{
		{
			name:   "level without name",
			decode: func(d *store.Document) error { _, err := decodeLevel(d); return err },
			fields: store.Fields{"books": []any{}},
		},
		{
			name:   "level with non-array books",
			decode: func(d *store.Document) error { _, err := decodeLevel(d); return err },
			fields: store.Fields{"name": "L", "books": "b1,b2"},
		},
		{
			name:   "book with numeric name",
			decode: func(d *store.Document) error { _, err := decodeBook(d); return err },
			fields: store.Fields{"name": 7.0},
		},
		{
			name:   "page without bookId",
			decode: func(d *store.Document) error { _, err := decodePage(d); return err },
			fields: store.Fields{"text": "orphan"},
		},
		{
			name:   "page with string cover flag",
			decode: func(d *store.Document) error { _, err := decodePage(d); return err },
			fields: store.Fields{"bookId": "b1", "isFrontCover": "yes"},
		},
		{
			name:   "page with scalar translation",
			decode: func(d *store.Document) error { _, err := decodePage(d); return err },
			fields: store.Fields{"bookId": "b1", "translations": []any{"hello"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(&store.Document{ID: "x", Fields: tt.fields})
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestDecodeBook_DefaultsOptionalFields(t *testing.T) {
	book, err := decodeBook(&store.Document{ID: "b1", Fields: store.Fields{"name": "Tale"}})

	require.NoError(t, err)
	assert.Equal(t, "", book.Description)
	assert.NotNil(t, book.Pages)
	assert.Empty(t, book.Pages)
}
