// Package auth provides authentication and the is-admin check guarding
// catalog writes.
//
// It supports two authentication modes:
//   - "none": No authentication required (default), every request acts as an admin
//   - "local": Local user database with session cookies and Bearer API tokens
//
// Reads of the catalog are open in both modes. Writes require a user whose
// is_admin flag is set; there are no other roles.
//
// # Configuration
//
//	AUTH_MODE=none   # Default, no auth required
//	AUTH_MODE=local  # Requires user creation and login
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db), cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//	admin := router.Group("/api", authMiddleware.RequireAdmin())
package auth
