package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./storyshelf.db"

	// DefaultTasksDatabasePath is the default path for the background task queue database
	DefaultTasksDatabasePath = "./storyshelf-tasks.db"
)

// Record store backends.
const (
	StoreBackendSQLite = "sqlite"
	StoreBackendMongo  = "mongo"
)
