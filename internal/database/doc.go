// Package database owns the SQLite connection shared by the application.
//
// # Architecture
//
//	database/
//	├── database.go   # Connection setup and migrations
//	└── users/        # User accounts (is-admin flag, API tokens)
//
// Catalog documents live in the "documents" table but are only accessed
// through the record store in internal/store/sqlitestore, never directly.
//
// # Usage
//
//	db, err := database.NewDatabase("./storyshelf.db")
//	usersRepo := users.NewRepository(db.DB)
//	docs := sqlitestore.New(db.DB)
package database
