// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Record Store
//
//   - store.Store: document access by (collection, id) with versioned
//     compare-and-swap updates (internal/store/store.go). Implemented by
//     sqlitestore (GORM) and mongostore (MongoDB driver).
//
// ## Catalog
//
// catalog.Service is the single implementation behind every consumer-side
// interface below. Consumers declare only the methods they call.
//
//   - http.CatalogReader, http.HierarchyMutator, http.CatalogAdmin
//     (internal/http/stores.go)
//   - importers.CatalogWriter (internal/importers/pipeline.go)
//   - exporters.TreeSource (internal/exporters/generic.go)
//   - tasks.Sweeper (internal/tasks/sweep_references.go)
//   - demo.LevelLister (internal/demo/embedded.go)
//
// ## Background Work
//
//   - http.TaskQueue and scheduler.Enqueuer: implemented by tasks.Client
//
// # Adding a New Record Store
//
//  1. Create a sub-package under internal/store/ with a Store type.
//
//  2. Implement Get, GetAll, Create, Update and Delete. Update must reject a
//     stale version with store.ErrVersionConflict.
//
//  3. Add a compile-time check:
//
//     var _ store.Store = (*mystore.Store)(nil)
//
//  4. Select it by STORE_BACKEND in internal/entrypoint/app.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
