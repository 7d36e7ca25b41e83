package http

import (
	"context"

	"github.com/mrlokans/storyshelf/internal/auth"
	"github.com/mrlokans/storyshelf/internal/config"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  CatalogService
	Importer CatalogImporter

	// Named dependency probes reported by /health
	HealthChecks map[string]HealthCheck

	// Task queue (optional). Without it sweeps run inline.
	TaskQueue TaskQueue

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// Audit trail of admin writes (optional)
	Audit AuditLog

	// Demo mode rejects every catalog write
	DemoMode bool

	// Application info
	Version string
}
