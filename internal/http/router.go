package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storyshelf/internal/auth"
	"github.com/mrlokans/storyshelf/internal/demo"
	"github.com/mrlokans/storyshelf/internal/exporters"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Reads are public; every catalog write requires an admin caller.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	demoMiddleware := demo.NewMiddleware(cfg.DemoMode)
	router.Use(demoMiddleware.InjectContext())
	router.Use(demoMiddleware.Handler())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	var requireAdmin gin.HandlerFunc
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
		requireAdmin = cfg.AuthMiddleware.RequireAdmin()
	} else {
		// No auth: every caller may edit.
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyIsAdmin, true)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
		requireAdmin = func(c *gin.Context) { c.Next() }
	}

	health := NewHealthController(cfg.HealthChecks, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router.Group("/api/auth"))
	}

	if cfg.Catalog == nil {
		return router
	}

	api := router.Group("/api")
	admin := api.Group("", requireAdmin)
	if cfg.Audit != nil {
		admin.Use(cfg.Audit.Middleware())
		auditController := NewAuditController(cfg.Audit)
		admin.GET("/admin/audit", auditController.List)
	}

	catalogController := NewCatalogController(cfg.Catalog)
	api.GET("/catalog", catalogController.Tree)

	levels := NewLevelsController(cfg.Catalog)
	api.GET("/levels", levels.List)
	api.GET("/levels/:id", levels.Get)
	admin.POST("/levels", levels.Create)
	admin.PATCH("/levels/:id", levels.Update)
	admin.DELETE("/levels/:id", levels.Delete)
	admin.POST("/levels/:id/books", levels.AttachBook)
	admin.PUT("/levels/:id/books/order", levels.ReorderBooks)
	admin.DELETE("/levels/:id/books/:childId", levels.DetachBook)

	books := NewBooksController(cfg.Catalog)
	api.GET("/books", books.List)
	api.GET("/books/:id", books.Get)
	admin.POST("/books", books.Create)
	admin.PATCH("/books/:id", books.Update)
	admin.DELETE("/books/:id", books.Delete)
	admin.POST("/books/:id/pages", books.CreatePage)
	admin.PUT("/books/:id/pages/order", books.ReorderPages)
	admin.DELETE("/books/:id/pages/:childId", books.DeletePage)

	pages := NewPagesController(cfg.Catalog)
	api.GET("/pages/:id", pages.Get)
	admin.PATCH("/pages/:id", pages.Update)

	languages := NewLanguagesController(cfg.Catalog)
	api.GET("/languages", languages.List)
	admin.POST("/languages", languages.Create)
	admin.DELETE("/languages/:id", languages.Delete)

	tasksController := NewTasksController(cfg.TaskQueue, cfg.Catalog)
	admin.POST("/admin/sweep", tasksController.RunSweep)
	api.GET("/tasks/:id", tasksController.GetTaskStatus)

	exportController := NewExportController(exporters.NewYAMLExporter(cfg.Catalog))
	admin.GET("/admin/export", exportController.Export)

	if cfg.Importer != nil {
		importController := NewImportController(cfg.Importer)
		admin.POST("/admin/import", importController.Import)
	}

	return router
}
