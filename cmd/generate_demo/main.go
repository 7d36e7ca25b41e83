// Command generate_demo creates a demo database seeded with the sample catalog of public domain fables.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/catalog"
	"github.com/mrlokans/storyshelf/internal/database"
	"github.com/mrlokans/storyshelf/internal/demo"
	"github.com/mrlokans/storyshelf/internal/store/sqlitestore"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log := logrus.StandardLogger()
	log.WithField("path", *dbPath).Info("Generating demo database")

	// Start fresh so the seed always runs
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Fatal("Failed to remove existing demo database")
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.WithError(err).Fatal("Failed to create demo directory")
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to create database")
	}
	defer db.Close()

	svc := catalog.NewService(sqlitestore.New(db.DB), catalog.Options{Logger: log})
	if _, err := demo.Seed(context.Background(), svc, svc, log); err != nil {
		log.WithError(err).Fatal("Failed to seed demo catalog")
	}

	log.Info("Demo database generated successfully")
}
