package entrypoint

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/config"
	"github.com/mrlokans/storyshelf/internal/database"
	"github.com/mrlokans/storyshelf/internal/database/users"
	http_controllers "github.com/mrlokans/storyshelf/internal/http"
	"github.com/mrlokans/storyshelf/internal/store"
	"github.com/mrlokans/storyshelf/internal/store/mongostore"
	"github.com/mrlokans/storyshelf/internal/store/sqlitestore"
)

// App holds the long-lived components shared by the server and the CLI
// commands.
type App struct {
	DB      *database.Database
	Store   store.Store
	Catalog *catalog.Service
	Checks  map[string]http_controllers.HealthCheck

	log     logrus.FieldLogger
	closers []func(ctx context.Context) error
}

// NewApp opens the application database and the record store selected by
// cfg.Store.Backend. The SQLite database is always opened since users and
// sessions live there.
func NewApp(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		DB:  db,
		log: log,
		Checks: map[string]http_controllers.HealthCheck{
			"database": func(context.Context) error { return db.Ping() },
		},
	}
	app.closers = append(app.closers, func(context.Context) error { return db.Close() })

	st, err := app.openStore(ctx, cfg.Store)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	app.Store = st

	app.Catalog = catalog.NewService(st, catalog.Options{
		ResolveConcurrency: cfg.Catalog.ResolveConcurrency,
		MaxCASRetries:      cfg.Catalog.MaxCASRetries,
		Logger:             log,
	})
	return app, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	switch cfg.Backend {
	case "", config.StoreBackendSQLite:
		a.log.WithField("backend", config.StoreBackendSQLite).Info("Record store ready")
		return sqlitestore.New(a.DB.DB), nil

	case config.StoreBackendMongo:
		ms, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		a.Checks["mongo"] = ms.Ping
		a.closers = append(a.closers, ms.Close)
		a.log.WithFields(logrus.Fields{
			"backend":  config.StoreBackendMongo,
			"database": cfg.MongoDatabase,
		}).Info("Record store ready")
		return ms, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Users returns the user repository backed by the application database.
func (a *App) Users() *users.Repository {
	return users.NewRepository(a.DB.DB)
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.WithError(err).Warn("Error closing resource")
			if first == nil {
				first = err
			}
		}
	}
	a.closers = nil
	return first
}
