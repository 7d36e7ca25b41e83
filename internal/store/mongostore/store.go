// Package mongostore implements store.Store on MongoDB.
//
// Each store collection maps to a MongoDB collection of the same name. The
// document id is kept in _id and the version counter in _version; fields are
// stored as top-level keys.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mrlokans/storyshelf/internal/store"
)

const (
	keyID        = "_id"
	keyVersion   = "_version"
	keyCreatedAt = "_createdAt"
	keyUpdatedAt = "_updatedAt"
)

// Store is a MongoDB-backed record store.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Connect dials the server at uri and verifies it with a ping.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(database), timeout: timeout}

	pingCtx, cancel := s.opContext(ctx)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return s, nil
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) coll(c store.Collection) *mongo.Collection {
	return s.db.Collection(string(c))
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) Get(ctx context.Context, collection store.Collection, id string) (*store.Document, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	raw, err := s.coll(collection).FindOne(ctx, bson.M{keyID: id}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeRaw(collection, raw)
}

// GetAll returns every document of a collection. Documents that fail to
// decode are logged and left out.
func (s *Store) GetAll(ctx context.Context, collection store.Collection) ([]store.Document, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cursor, err := s.coll(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []store.Document
	for cursor.Next(ctx) {
		if doc, ok := decodeOrSkip(collection, cursor.Current); ok {
			docs = append(docs, *doc)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) Create(ctx context.Context, collection store.Collection, fields store.Fields) (string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	id := uuid.NewString()
	now := time.Now().UTC()

	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	doc[keyID] = id
	doc[keyVersion] = int64(1)
	doc[keyCreatedAt] = now
	doc[keyUpdatedAt] = now

	if _, err := s.coll(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create %s: %w", collection, err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection store.Collection, id string, fields store.Fields, expectedVersion int64) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	filter := bson.M{keyID: id}
	if expectedVersion > 0 {
		filter[keyVersion] = expectedVersion
	}

	set := bson.M{keyUpdatedAt: time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{keyVersion: int64(1)},
	}

	result, err := s.coll(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	// Nothing matched: either the document is gone or the version moved on.
	n, err := s.coll(collection).CountDocuments(ctx, bson.M{keyID: id})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrVersionConflict
}

func (s *Store) Delete(ctx context.Context, collection store.Collection, id string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if _, err := s.coll(collection).DeleteOne(ctx, bson.M{keyID: id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func decodeOrSkip(collection store.Collection, raw bson.Raw) (*store.Document, bool) {
	doc, err := decodeRaw(collection, raw)
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).Warn("Skipping undecodable document")
		return nil, false
	}
	return doc, true
}

// decodeRaw converts a raw BSON document into a store.Document. Field values
// go through relaxed extended JSON so that nested documents come out as plain
// maps and arrays, the same shapes the SQLite store produces.
func decodeRaw(collection store.Collection, raw bson.Raw) (*store.Document, error) {
	doc := &store.Document{Collection: collection}

	idVal := raw.Lookup(keyID)
	if v, ok := idVal.StringValueOK(); ok {
		doc.ID = v
	} else if oid, ok := idVal.ObjectIDOK(); ok {
		// Inserted by other tools with the driver's default id.
		doc.ID = oid.Hex()
	} else {
		return nil, fmt.Errorf("decode %s document: missing _id", collection)
	}
	if v, ok := raw.Lookup(keyVersion).AsInt64OK(); ok {
		doc.Version = v
	}
	if v, ok := raw.Lookup(keyCreatedAt).TimeOK(); ok {
		doc.CreatedAt = v
	}
	if v, ok := raw.Lookup(keyUpdatedAt).TimeOK(); ok {
		doc.UpdatedAt = v
	}

	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
	}
	fields := store.Fields{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
	}
	for _, k := range []string{keyID, keyVersion, keyCreatedAt, keyUpdatedAt} {
		delete(fields, k)
	}
	doc.Fields = fields
	return doc, nil
}
