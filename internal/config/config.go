package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		Store
		Catalog
		Tasks
		Sweep
		Auth
		Demo
		Audit
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path      string
		TasksPath string
	}
	Store struct {
		Backend       string // "sqlite" or "mongo"
		MongoURI      string
		MongoDatabase string
		Timeout       time.Duration // Per-call timeout for remote stores
	}
	Catalog struct {
		ResolveConcurrency int // Parallel lookups per resolved reference array
		MaxCASRetries      int // Retries of a reference array update on version conflict
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Sweep struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Demo struct {
		Enabled bool // Read-only API seeded with the sample catalog
	}
	Audit struct {
		Enabled   bool
		Retention time.Duration // Events older than this are pruned at startup; 0 keeps everything
	}
	Log struct {
		Level  string // logrus level name
		Format string // "text" or "json"
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("tasks_database_path", DefaultTasksDatabasePath)

	// Record store defaults
	v.SetDefault("store_backend", StoreBackendSQLite)
	v.SetDefault("store_mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("store_mongo_database", "storyshelf")
	v.SetDefault("store_timeout", "10s")

	// Catalog defaults
	v.SetDefault("catalog_resolve_concurrency", 16)
	v.SetDefault("catalog_max_cas_retries", 5)

	// Dangling reference sweep
	v.SetDefault("sweep_enabled", false)
	v.SetDefault("sweep_schedule", "30 3 * * *")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("demo_mode", false)
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention", "2160h") // 90 days

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:      v.GetString("DATABASE_PATH"),
			TasksPath: v.GetString("TASKS_DATABASE_PATH"),
		},
		Store: Store{
			Backend:       v.GetString("STORE_BACKEND"),
			MongoURI:      v.GetString("STORE_MONGO_URI"),
			MongoDatabase: v.GetString("STORE_MONGO_DATABASE"),
			Timeout:       v.GetDuration("STORE_TIMEOUT"),
		},
		Catalog: Catalog{
			ResolveConcurrency: v.GetInt("CATALOG_RESOLVE_CONCURRENCY"),
			MaxCASRetries:      v.GetInt("CATALOG_MAX_CAS_RETRIES"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Sweep: Sweep{
			Enabled:  v.GetBool("SWEEP_ENABLED"),
			Schedule: v.GetString("SWEEP_SCHEDULE"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
		Audit: Audit{
			Enabled:   v.GetBool("AUDIT_ENABLED"),
			Retention: v.GetDuration("AUDIT_RETENTION"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
