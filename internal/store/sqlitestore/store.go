// Package sqlitestore implements store.Store on top of a GORM connection.
//
// All collections share one "documents" table keyed by (collection, id); the
// document fields are kept as a JSON object in the data column and the version
// column backs compare-and-swap updates.
//
// # Usage
//
//	db, err := database.NewDatabase("./storyshelf.db")
//	st := sqlitestore.New(db.DB)
//	id, err := st.Create(ctx, store.CollectionLevels, store.Fields{"name": "Beginner"})
package sqlitestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store"
)

// unconditionalRetries bounds the internal retry loop of Update calls made
// without an expected version, which still need a consistent merge.
const unconditionalRetries = 5

// Store handles all document operations against the documents table.
type Store struct {
	db *gorm.DB
}

// New creates a new SQLite-backed record store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get retrieves a document by collection and id.
func (s *Store) Get(ctx context.Context, collection store.Collection, id string) (*store.Document, error) {
	var rec entities.DocumentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", string(collection), id).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return toDocument(rec)
}

// GetAll retrieves all documents of a collection in creation order.
// Rows whose data column does not decode are logged and left out.
func (s *Store) GetAll(ctx context.Context, collection store.Collection) ([]store.Document, error) {
	var recs []entities.DocumentRecord
	err := s.db.WithContext(ctx).
		Where("collection = ?", string(collection)).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]store.Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := toDocument(rec)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"collection": collection,
				"id":         rec.ID,
			}).Warn("Skipping undecodable document")
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Create inserts a new document with a random UUID and version 1.
func (s *Store) Create(ctx context.Context, collection store.Collection, fields store.Fields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}

	rec := entities.DocumentRecord{
		Collection: string(collection),
		ID:         uuid.NewString(),
		Version:    1,
		Data:       string(data),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("create %s: %w", collection, err)
	}
	return rec.ID, nil
}

// Update merges fields into the stored document.
// The write is a conditional UPDATE on the version column, so a concurrent
// writer always causes either ErrVersionConflict or a retry, never a lost update.
func (s *Store) Update(ctx context.Context, collection store.Collection, id string, fields store.Fields, expectedVersion int64) error {
	attempts := 1
	if expectedVersion <= 0 {
		attempts = unconditionalRetries
	}

	for i := 0; i < attempts; i++ {
		current, err := s.Get(ctx, collection, id)
		if err != nil {
			return err
		}
		if expectedVersion > 0 && current.Version != expectedVersion {
			return store.ErrVersionConflict
		}

		merged := make(store.Fields, len(current.Fields)+len(fields))
		for k, v := range current.Fields {
			merged[k] = v
		}
		for k, v := range fields {
			merged[k] = v
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}

		result := s.db.WithContext(ctx).Model(&entities.DocumentRecord{}).
			Where("collection = ? AND id = ? AND version = ?", string(collection), id, current.Version).
			Updates(map[string]any{
				"data":       string(data),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("update %s/%s: %w", collection, id, result.Error)
		}
		if result.RowsAffected == 1 {
			return nil
		}
	}
	return store.ErrVersionConflict
}

// Delete removes a document. A missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection store.Collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", string(collection), id).
		Delete(&entities.DocumentRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func toDocument(rec entities.DocumentRecord) (*store.Document, error) {
	fields := store.Fields{}
	if rec.Data != "" {
		if err := json.Unmarshal([]byte(rec.Data), &fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", rec.Collection, rec.ID, err)
		}
	}
	return &store.Document{
		Collection: store.Collection(rec.Collection),
		ID:         rec.ID,
		Version:    rec.Version,
		Fields:     fields,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}
