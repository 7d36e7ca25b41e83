// Package store defines the record store boundary the catalog depends on.
//
// A record store keeps schemaless documents grouped into named collections and
// addressed by (collection, id). It offers no multi-document transactions.
// Every document carries a version that is bumped on each write, which lets
// callers run compare-and-swap updates against a single document.
//
// Implementations:
//
//   - sqlitestore: documents table managed through GORM (default)
//   - mongostore: MongoDB collections
package store

import (
	"context"
	"errors"
	"time"
)

// Collection names a group of documents.
type Collection string

const (
	CollectionLevels    Collection = "levels"
	CollectionBooks     Collection = "books"
	CollectionPages     Collection = "pages"
	CollectionLanguages Collection = "languages"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrVersionConflict is returned by Update when the stored version no
	// longer matches the expected one.
	ErrVersionConflict = errors.New("document version conflict")
)

// Fields is the untyped field bag of a document. Values are JSON-compatible:
// string, bool, float64, []any and map[string]any.
type Fields map[string]any

// Document is a single stored record.
type Document struct {
	Collection Collection
	ID         string
	Version    int64
	Fields     Fields
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store is the record store client.
type Store interface {
	// Get returns ErrNotFound when the id does not resolve.
	Get(ctx context.Context, collection Collection, id string) (*Document, error)

	// GetAll returns every document of a collection. Order is not guaranteed.
	GetAll(ctx context.Context, collection Collection) ([]Document, error)

	// Create stores a new document and returns its generated id.
	Create(ctx context.Context, collection Collection, fields Fields) (string, error)

	// Update merges fields into the document's top-level fields.
	// When expectedVersion > 0 the write only happens if the stored version
	// still equals it, otherwise ErrVersionConflict is returned.
	Update(ctx context.Context, collection Collection, id string, fields Fields, expectedVersion int64) error

	// Delete removes a document. Deleting an absent id succeeds.
	Delete(ctx context.Context, collection Collection, id string) error
}
