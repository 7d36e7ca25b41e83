package demo

import (
	"bytes"
	"context"
	"embed"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/importers"
)

//go:embed assets
var embeddedAssets embed.FS

const catalogAsset = "assets/catalog.yaml"

// Fixture returns the embedded sample catalog of public domain fables.
func Fixture() (*importers.Fixture, error) {
	data, err := embeddedAssets.ReadFile(catalogAsset)
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return importers.DecodeCatalog(bytes.NewReader(data))
}

// HasEmbeddedAssets returns true if the sample catalog is compiled in.
func HasEmbeddedAssets() bool {
	_, err := embeddedAssets.ReadFile(catalogAsset)
	return err == nil
}

// LevelLister is the read side Seed needs to tell an empty catalog apart.
type LevelLister interface {
	ListLevels(ctx context.Context) ([]entities.Level, error)
}

// Seed imports the sample catalog unless the catalog already has levels.
// It reports whether anything was imported.
func Seed(ctx context.Context, levels LevelLister, writer importers.CatalogWriter, log logrus.FieldLogger) (bool, error) {
	existing, err := levels.ListLevels(ctx)
	if err != nil {
		return false, fmt.Errorf("list levels: %w", err)
	}
	if len(existing) > 0 {
		log.WithField("levels", len(existing)).Debug("Catalog not empty, skipping demo seed")
		return false, nil
	}

	fixture, err := Fixture()
	if err != nil {
		return false, err
	}
	result, err := importers.NewPipeline(writer, log).Import(ctx, fixture)
	if err != nil {
		return false, fmt.Errorf("seed demo catalog: %w", err)
	}

	log.WithFields(logrus.Fields{
		"levels": result.LevelsCreated,
		"books":  result.BooksCreated,
		"pages":  result.PagesCreated,
	}).Info("Seeded demo catalog")
	return true, nil
}
