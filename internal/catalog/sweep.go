package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/store"
)

// SweepReport summarizes a SweepDanglingReferences run.
type SweepReport struct {
	LevelsScanned int `json:"levels_scanned"`
	BooksScanned  int `json:"books_scanned"`
	RefsRemoved   int `json:"refs_removed"`
}

// SweepDanglingReferences removes ids that no longer resolve from every level
// and book array. Deletes patch only one parent and are not atomic, so these
// ids accumulate over time; reads already ignore them.
//
// An id is only removed after a direct lookup confirms it is gone. Ids that
// fail to load for any other reason are kept.
func (s *Service) SweepDanglingReferences(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{}
	var merr *multierror.Error

	for _, pt := range []ParentType{ParentLevel, ParentBook} {
		ps, _ := parentSpecOf(pt)

		existing, err := s.idSet(ctx, ps.children)
		if err != nil {
			return report, err
		}
		parents, err := s.store.GetAll(ctx, ps.collection)
		if err != nil {
			return report, fmt.Errorf("list %s: %w", ps.collection, err)
		}

		for _, parent := range parents {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if pt == ParentLevel {
				report.LevelsScanned++
			} else {
				report.BooksScanned++
			}

			refs, err := refsOf(parent.Fields, ps.field)
			if err != nil {
				continue
			}
			dangling := s.confirmMissing(ctx, ps.children, refs, existing)
			if len(dangling) == 0 {
				continue
			}

			removed := 0
			err = s.updateRefs(ctx, ps, parent.ID, func(current []string) ([]string, bool, error) {
				next := slices.DeleteFunc(slices.Clone(current), func(ref string) bool { return dangling[ref] })
				removed = len(current) - len(next)
				return next, removed > 0, nil
			})
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				merr = multierror.Append(merr, err)
				continue
			}
			report.RefsRemoved += removed
		}
	}

	s.log.WithFields(logrus.Fields{
		"levels_scanned": report.LevelsScanned,
		"books_scanned":  report.BooksScanned,
		"refs_removed":   report.RefsRemoved,
	}).Info("Dangling reference sweep finished")

	return report, merr.ErrorOrNil()
}

func (s *Service) idSet(ctx context.Context, collection store.Collection) (map[string]bool, error) {
	docs, err := s.store.GetAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	ids := make(map[string]bool, len(docs))
	for _, doc := range docs {
		ids[doc.ID] = true
	}
	return ids, nil
}

// confirmMissing returns the refs absent from the snapshot that a direct
// lookup also reports as not found. Children created after the snapshot are
// therefore never removed.
func (s *Service) confirmMissing(ctx context.Context, collection store.Collection, refs []string, snapshot map[string]bool) map[string]bool {
	missing := map[string]bool{}
	for _, ref := range refs {
		if snapshot[ref] || missing[ref] {
			continue
		}
		if _, err := s.store.Get(ctx, collection, ref); errors.Is(err, store.ErrNotFound) {
			missing[ref] = true
		}
	}
	return missing
}
