package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/catalog"
)

// SweepQueueName is the backlite queue carrying SweepReferencesTask.
const SweepQueueName = "sweep_references"

// Sweeper removes references to documents that no longer exist.
type Sweeper interface {
	SweepDanglingReferences(ctx context.Context) (*catalog.SweepReport, error)
}

// SweepReferencesTask runs one dangling-reference sweep over the catalog.
type SweepReferencesTask struct {
	// Trigger records who asked for the sweep: "api", "schedule" or "cli".
	Trigger string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for sweep tasks.
func (t SweepReferencesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        SweepQueueName,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SweepReferencesProcessor creates a processor function for SweepReferencesTask.
func SweepReferencesProcessor(sweeper Sweeper, log logrus.FieldLogger) backlite.QueueProcessor[SweepReferencesTask] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(ctx context.Context, task SweepReferencesTask) error {
		if sweeper == nil {
			return fmt.Errorf("sweeper not configured")
		}

		report, err := sweeper.SweepDanglingReferences(ctx)
		if err != nil {
			return fmt.Errorf("sweep references: %w", err)
		}

		log.WithFields(logrus.Fields{
			"trigger":        task.Trigger,
			"levels_scanned": report.LevelsScanned,
			"books_scanned":  report.BooksScanned,
			"refs_removed":   report.RefsRemoved,
		}).Info("Reference sweep complete")
		return nil
	}
}

// NewSweepReferencesQueue creates a backlite queue for sweep tasks.
func NewSweepReferencesQueue(sweeper Sweeper, log logrus.FieldLogger) backlite.Queue {
	return backlite.NewQueue(SweepReferencesProcessor(sweeper, log))
}
