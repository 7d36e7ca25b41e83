// Package catalog manages the Level → Book → Page content hierarchy stored in
// a record store.
//
// Parents reference children through ordered id arrays, so the package keeps
// those arrays consistent: it resolves them into records (dropping ids that
// no longer resolve), attaches and detaches children under positional rules,
// persists reorders, and materializes the whole tree for display.
//
// # Invariants
//
//   - ids that do not resolve are dropped on read
//   - a book has at most one front cover page, and it sits at index 0
//   - a page is only ever listed by the book named in its bookId
//   - deletes patch the direct parent only
//
// Array updates run as compare-and-swap loops against the parent's version,
// so concurrent writers never lose each other's changes.
package catalog

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store"
)

const (
	DefaultResolveConcurrency = 16
	DefaultMaxCASRetries      = 5
)

// Options tunes a Service. Zero values fall back to the defaults.
type Options struct {
	ResolveConcurrency int
	MaxCASRetries      int
	Logger             logrus.FieldLogger
}

// Service is the entry point for every catalog read and mutation.
type Service struct {
	store      store.Store
	maxRetries int
	log        logrus.FieldLogger

	books *Resolver[entities.Book]
	pages *Resolver[entities.Page]
}

// NewService creates a catalog service over the given record store.
func NewService(st store.Store, opts Options) *Service {
	if opts.ResolveConcurrency <= 0 {
		opts.ResolveConcurrency = DefaultResolveConcurrency
	}
	if opts.MaxCASRetries <= 0 {
		opts.MaxCASRetries = DefaultMaxCASRetries
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return &Service{
		store:      st,
		maxRetries: opts.MaxCASRetries,
		log:        opts.Logger.WithField("component", "catalog"),
		books:      NewResolver(st, store.CollectionBooks, decodeBook, opts.ResolveConcurrency),
		pages:      NewResolver(st, store.CollectionPages, decodePage, opts.ResolveConcurrency),
	}
}

// ResolveBooks resolves book ids in order, dropping those that do not resolve.
func (s *Service) ResolveBooks(ctx context.Context, refs []string) ([]entities.Book, error) {
	return s.books.Resolve(ctx, refs)
}

// ResolvePages resolves page ids in order, dropping those that do not resolve.
func (s *Service) ResolvePages(ctx context.Context, refs []string) ([]entities.Page, error) {
	return s.pages.Resolve(ctx, refs)
}
