package entities

// Level groups books into a learning stage. Books holds book ids in display order.
type Level struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Books   []string `json:"books"`
	Version int64    `json:"-"`
}

// Book is an ordered list of pages. Pages[0] is the front cover when one exists.
type Book struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Pages       []string `json:"pages"`
	Version     int64    `json:"-"`
}

// Page is a single readable page of a book. It always belongs to exactly one book.
type Page struct {
	ID           string        `json:"id"`
	BookID       string        `json:"book_id"`
	Text         string        `json:"text"`
	TextLanguage string        `json:"text_language,omitempty"`
	PictureURL   string        `json:"picture_url,omitempty"`
	IsFrontCover bool          `json:"is_front_cover"`
	Translations []Translation `json:"translations"`
	Version      int64         `json:"-"`
}

// Translation is embedded in a page and has no identity of its own.
type Translation struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Language is an entry of the language lookup list used by pages and translations.
type Language struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
