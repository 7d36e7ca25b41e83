package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mrlokans/storyshelf/internal/store"
)

// fakeStore is an in-memory store.Store with fault injection. Fields go
// through a JSON round trip on every read and write, so arrays come back as
// []any the way the real backends return them.
type fakeStore struct {
	mu   sync.Mutex
	docs map[store.Collection]map[string]store.Document
	seq  int

	getErrs    map[string]error
	updateErrs map[string]error
	deleteErrs map[string]error
	// conflicts is the number of versioned updates to reject per document,
	// each one simulating a concurrent writer that bumped the version.
	conflicts map[string]int

	getCalls atomic.Int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:       map[store.Collection]map[string]store.Document{},
		getErrs:    map[string]error{},
		updateErrs: map[string]error{},
		deleteErrs: map[string]error{},
		conflicts:  map[string]int{},
	}
}

func fkey(c store.Collection, id string) string {
	return string(c) + "/" + id
}

// put seeds a document with a fixed id.
func (f *fakeStore) put(c store.Collection, id string, fields store.Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[c] == nil {
		f.docs[c] = map[string]store.Document{}
	}
	f.docs[c][id] = store.Document{Collection: c, ID: id, Version: 1, Fields: clone(fields)}
}

func (f *fakeStore) fields(c store.Collection, id string) store.Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[c][id]
	if !ok {
		return nil
	}
	return clone(doc.Fields)
}

func (f *fakeStore) has(c store.Collection, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[c][id]
	return ok
}

func (f *fakeStore) Get(ctx context.Context, c store.Collection, id string) (*store.Document, error) {
	f.getCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErrs[fkey(c, id)]; err != nil {
		return nil, err
	}
	doc, ok := f.docs[c][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	doc.Fields = clone(doc.Fields)
	return &doc, nil
}

func (f *fakeStore) GetAll(ctx context.Context, c store.Collection) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Document
	for _, doc := range f.docs[c] {
		doc.Fields = clone(doc.Fields)
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, c store.Collection, fields store.Fields) (string, error) {
	f.mu.Lock()
	f.seq++
	id := fmt.Sprintf("%s-%d", c, f.seq)
	f.mu.Unlock()
	f.put(c, id, fields)
	return id, nil
}

func (f *fakeStore) Update(ctx context.Context, c store.Collection, id string, fields store.Fields, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fkey(c, id)
	if err := f.updateErrs[k]; err != nil {
		return err
	}
	doc, ok := f.docs[c][id]
	if !ok {
		return store.ErrNotFound
	}
	if expectedVersion > 0 && f.conflicts[k] > 0 {
		f.conflicts[k]--
		doc.Version++
		f.docs[c][id] = doc
		return store.ErrVersionConflict
	}
	if expectedVersion > 0 && doc.Version != expectedVersion {
		return store.ErrVersionConflict
	}
	merged := clone(doc.Fields)
	for key, v := range clone(fields) {
		merged[key] = v
	}
	doc.Fields = merged
	doc.Version++
	f.docs[c][id] = doc
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, c store.Collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErrs[fkey(c, id)]; err != nil {
		return err
	}
	delete(f.docs[c], id)
	return nil
}

func clone(fields store.Fields) store.Fields {
	if fields == nil {
		return store.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}
	out := store.Fields{}
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

// refs reads an id array from a stored document as []string.
func (f *fakeStore) refs(c store.Collection, id, field string) []string {
	refs, err := refsOf(f.fields(c, id), field)
	if err != nil {
		panic(err)
	}
	return refs
}
