package interfaces

// Compile-time checks that concrete types satisfy the interfaces they are
// wired through. To verify: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/storyshelf/internal/audit"
	"github.com/mrlokans/storyshelf/internal/auth"
	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/database/users"
	"github.com/mrlokans/storyshelf/internal/demo"
	"github.com/mrlokans/storyshelf/internal/exporters"
	"github.com/mrlokans/storyshelf/internal/http"
	"github.com/mrlokans/storyshelf/internal/importers"
	"github.com/mrlokans/storyshelf/internal/scheduler"
	"github.com/mrlokans/storyshelf/internal/store"
	"github.com/mrlokans/storyshelf/internal/store/mongostore"
	"github.com/mrlokans/storyshelf/internal/store/sqlitestore"
	"github.com/mrlokans/storyshelf/internal/tasks"
)

// =============================================================================
// Record Store
// =============================================================================

var _ store.Store = (*sqlitestore.Store)(nil)
var _ store.Store = (*mongostore.Store)(nil)

// =============================================================================
// Catalog Service
// =============================================================================

var _ http.CatalogService = (*catalog.Service)(nil)
var _ importers.CatalogWriter = (*catalog.Service)(nil)
var _ exporters.TreeSource = (*catalog.Service)(nil)
var _ demo.LevelLister = (*catalog.Service)(nil)
var _ tasks.Sweeper = (*catalog.Service)(nil)

// =============================================================================
// Import / Export
// =============================================================================

var _ http.CatalogImporter = (*importers.Pipeline)(nil)
var _ http.CatalogExporter = (*exporters.YAMLExporter)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)

// =============================================================================
// Users and Audit
// =============================================================================

var _ auth.UserRepository = (*users.Repository)(nil)
var _ http.AuditLog = (*audit.Service)(nil)
