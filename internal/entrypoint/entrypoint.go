package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/audit"
	"github.com/mrlokans/storyshelf/internal/auth"
	"github.com/mrlokans/storyshelf/internal/config"
	auditRepo "github.com/mrlokans/storyshelf/internal/database/audit"
	"github.com/mrlokans/storyshelf/internal/demo"
	http_controllers "github.com/mrlokans/storyshelf/internal/http"
	"github.com/mrlokans/storyshelf/internal/importers"
	"github.com/mrlokans/storyshelf/internal/logging"
	"github.com/mrlokans/storyshelf/internal/scheduler"
	"github.com/mrlokans/storyshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logrus.WithField("timeout", timeout).Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first (task queue, scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logrus.Info("Server exiting")
	return nil
}

// Run wires every component from cfg and serves the API.
func Run(cfg *config.Config, version string) error {
	if err := logging.Init(cfg.Log); err != nil {
		return err
	}
	log := logrus.StandardLogger()
	log.WithField("version", version).Info("Starting Storyshelf")

	ctx := context.Background()
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	if cfg.Demo.Enabled {
		log.Info("Demo mode enabled: catalog writes are disabled")
		if _, err := demo.Seed(ctx, app.Catalog, app.Catalog, log); err != nil {
			return err
		}
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		path := cfg.Database.TasksPath
		if path == "" {
			path = tasks.DerivePath(cfg.Database.Path)
		}
		taskClient, err = tasks.NewClient(path, tasks.FromAppConfig(cfg.Tasks), log)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.WithError(err).Warn("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewSweepReferencesQueue(app.Catalog, log))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	var sweepScheduler *scheduler.SweepScheduler
	if cfg.Sweep.Enabled {
		var queue scheduler.Enqueuer
		if taskClient != nil {
			queue = taskClient
		}
		sweepScheduler = scheduler.NewSweepScheduler(cfg.Sweep.Schedule, queue, app.Catalog, log)
		if err := sweepScheduler.Start(context.Background()); err != nil {
			return err
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:       app.Catalog,
		Importer:      importers.NewPipeline(app.Catalog, log),
		HealthChecks:  app.Checks,
		AuthConfig:    cfg.Auth,
		SecureCookies: cfg.Auth.SecureCookies,
		DemoMode:      cfg.Demo.Enabled,
		Version:       version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	auditService := setupAudit(app, cfg.Audit, log)
	if auditService != nil {
		routerCfg.Audit = auditService
	}
	if err := setupAuth(app, cfg, &routerCfg, log); err != nil {
		return err
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sweepScheduler != nil {
			sweepScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if auditService != nil {
			auditService.Wait()
		}
	}

	return Serve(router, cfg, onShutdown)
}

// setupAudit returns nil when the audit trail is disabled.
func setupAudit(app *App, cfg config.Audit, log logrus.FieldLogger) *audit.Service {
	if !cfg.Enabled {
		return nil
	}
	svc := audit.NewService(auditRepo.NewRepository(app.DB.DB), log)
	if cfg.Retention > 0 {
		deleted, err := svc.DeleteOldEvents(cfg.Retention)
		if err != nil {
			log.WithError(err).Warn("Failed to prune audit events")
		} else if deleted > 0 {
			log.WithField("deleted", deleted).Info("Pruned old audit events")
		}
	}
	return svc
}

func setupAuth(app *App, cfg *config.Config, routerCfg *http_controllers.RouterConfig, log logrus.FieldLogger) error {
	if cfg.Auth.Mode != config.AuthModeLocal {
		log.Info("Authentication mode: none (every caller may edit the catalog)")
		return nil
	}
	log.Info("Authentication mode: local")

	authService := auth.NewService(app.Users(), cfg.Auth)

	sqlDB, err := app.DB.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		return err
	}
	if cfg.Auth.SessionSecret == "" {
		log.Warn("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, _ := authService.HasUsers()
	if !hasUsers {
		log.Warn("No users found. Run 'storyshelf create-user --admin' to create an editor account.")
	}

	routerCfg.AuthService = authService
	routerCfg.SessionManager = sessionManager
	routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
	routerCfg.CSRFSecret = csrfSecret
	return nil
}

// csrfSecret decodes a hex secret, falls back to raw bytes, and generates a
// fresh one when configured empty.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}
	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	return hex.DecodeString(generated)
}
