package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/storyshelf/internal/store"
)

// Resolver turns an ordered id array into the records it references.
type Resolver[T any] struct {
	store       store.Store
	collection  store.Collection
	decode      func(*store.Document) (T, error)
	concurrency int
}

// NewResolver creates a resolver for one collection.
func NewResolver[T any](st store.Store, collection store.Collection, decode func(*store.Document) (T, error), concurrency int) *Resolver[T] {
	if concurrency <= 0 {
		concurrency = DefaultResolveConcurrency
	}
	return &Resolver[T]{store: st, collection: collection, decode: decode, concurrency: concurrency}
}

// Resolve looks up every id concurrently and returns the records in input
// order. Ids that are not found are dropped silently. Ids that fail for any
// other reason, including documents that do not decode, are dropped too, and
// their errors are returned together as a *multierror.Error alongside the
// partial result. A duplicated id yields the record once per occurrence.
//
// If ctx is cancelled the result is discarded and ctx.Err() is returned.
func (r *Resolver[T]) Resolve(ctx context.Context, refs []string) ([]T, error) {
	if len(refs) == 0 {
		return []T{}, ctx.Err()
	}

	slots := make([]*T, len(refs))
	errs := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, id := range refs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			doc, err := r.store.Get(ctx, r.collection, id)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				errs[i] = fmt.Errorf("resolve %s/%s: %w", r.collection, id, err)
				return nil
			}
			v, err := r.decode(doc)
			if err != nil {
				errs[i] = err
				return nil
			}
			slots[i] = &v
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merr *multierror.Error
	out := make([]T, 0, len(refs))
	for i, v := range slots {
		if errs[i] != nil {
			merr = multierror.Append(merr, errs[i])
			continue
		}
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, merr.ErrorOrNil()
}

// failureCount reports how many individual failures an error from Resolve
// aggregates.
func failureCount(err error) int {
	if err == nil {
		return 0
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return len(merr.Errors)
	}
	return 1
}
