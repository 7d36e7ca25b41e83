package importers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFixture = `
languages:
  - code: en
    name: English
  - code: de
    name: German
levels:
  - name: Beginner
    books:
      - key: fox
        name: The Fox
        description: A short tale
        pages:
          - text: Once upon a time
            text_language: en
            translations:
              - language: de
                text: Es war einmal
          - text: Cover
            front_cover: true
            picture_url: https://example.com/fox.png
  - name: Review
    books:
      - key: fox
      - name: The Owl
`

func TestParseCatalog(t *testing.T) {
	f, err := ParseCatalog([]byte(sampleFixture))
	require.NoError(t, err)

	require.Len(t, f.Languages, 2)
	require.Len(t, f.Levels, 2)

	fox := f.Levels[0].Books[0]
	assert.Equal(t, "fox", fox.Key)
	assert.Equal(t, "The Fox", fox.Name)
	require.Len(t, fox.Pages, 2)
	assert.True(t, fox.Pages[1].FrontCover)
	assert.Equal(t, []TranslationFixture{{Language: "de", Text: "Es war einmal"}}, fox.Pages[0].Translations)

	assert.Equal(t, BookFixture{Key: "fox"}, f.Levels[1].Books[0])
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "empty", yaml: "", want: "empty document"},
		{name: "unknown field", yaml: "levels:\n  - name: L\n    colour: red\n", want: "colour"},
		{name: "level without name", yaml: "levels:\n  - books: []\n", want: "levels[0]: name is required"},
		{name: "book without name", yaml: "levels:\n  - name: L\n    books:\n      - description: x\n", want: "name is required"},
		{name: "duplicate language", yaml: "languages:\n  - code: en\n  - code: EN\n", want: "duplicate code"},
		{name: "language without code", yaml: "languages:\n  - name: English\n", want: "code is required"},
		{
			name: "two covers",
			yaml: "levels:\n  - name: L\n    books:\n      - name: B\n        pages:\n          - front_cover: true\n          - front_cover: true\n",
			want: "2 pages marked as front cover",
		},
		{
			name: "repeat with content",
			yaml: "levels:\n  - name: L\n    books:\n      - key: b\n        name: B\n      - key: b\n        name: Again\n",
			want: "already defined",
		},
		{
			name: "translation without language",
			yaml: "levels:\n  - name: L\n    books:\n      - name: B\n        pages:\n          - text: hi\n            translations:\n              - text: hallo\n",
			want: "language is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidFixture)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeCatalog_Reader(t *testing.T) {
	f, err := DecodeCatalog(strings.NewReader("levels:\n  - name: Only\n"))

	require.NoError(t, err)
	require.Len(t, f.Levels, 1)
	assert.Empty(t, f.Levels[0].Books)
}
