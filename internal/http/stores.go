package http

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/exporters"
	"github.com/mrlokans/storyshelf/internal/importers"
)

// This file consolidates the service interfaces used by HTTP controllers.

// CatalogReader provides the read side of the catalog.
type CatalogReader interface {
	Materialize(ctx context.Context) (*catalog.Tree, error)
	MaterializeLevel(ctx context.Context, id string) (*catalog.LevelNode, error)
	MaterializeBook(ctx context.Context, id string) (*catalog.BookNode, error)
	ListLevels(ctx context.Context) ([]entities.Level, error)
	ListBooks(ctx context.Context) ([]entities.Book, error)
	GetPage(ctx context.Context, id string) (*entities.Page, error)
	ListLanguages(ctx context.Context) ([]entities.Language, error)
}

// HierarchyMutator edits parent reference arrays.
type HierarchyMutator interface {
	AttachChild(ctx context.Context, pt catalog.ParentType, parentID, childID string, pos catalog.Position) error
	CreateAndAttachPage(ctx context.Context, bookID string, in catalog.PageFields) (*entities.Page, error)
	DetachAndDelete(ctx context.Context, pt catalog.ParentType, parentID, childID string) error
	Reorder(ctx context.Context, pt catalog.ParentType, parentID string, newOrder []string) error
}

// CatalogAdmin edits documents themselves.
type CatalogAdmin interface {
	CreateLevel(ctx context.Context, name string) (*entities.Level, error)
	UpdateLevel(ctx context.Context, id, name string) (*entities.Level, error)
	DeleteLevel(ctx context.Context, id string) error
	CreateBook(ctx context.Context, name, description string) (*entities.Book, error)
	UpdateBook(ctx context.Context, id string, in catalog.BookUpdate) (*entities.Book, error)
	DeleteBook(ctx context.Context, id string) error
	UpdatePage(ctx context.Context, id string, in catalog.PageUpdate) (*entities.Page, error)
	CreateLanguage(ctx context.Context, code, name string) (*entities.Language, error)
	DeleteLanguage(ctx context.Context, id string) error
	SweepDanglingReferences(ctx context.Context) (*catalog.SweepReport, error)
}

// CatalogService combines everything the catalog controllers need.
type CatalogService interface {
	CatalogReader
	HierarchyMutator
	CatalogAdmin
}

// CatalogImporter loads a YAML fixture into the catalog.
type CatalogImporter interface {
	Import(ctx context.Context, f *importers.Fixture) (importers.ImportResult, error)
}

// CatalogExporter writes the whole catalog to w.
type CatalogExporter interface {
	Export(ctx context.Context, w io.Writer) (exporters.ExportResult, error)
}

// TaskQueue enqueues background work and reports on it.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// AuditLog records and lists administrative changes.
type AuditLog interface {
	Middleware() gin.HandlerFunc
	GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}
