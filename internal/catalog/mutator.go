package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/storyshelf/internal/entities"
	"github.com/mrlokans/storyshelf/internal/store"
)

// ParentType selects which kind of parent a mutation targets.
type ParentType string

const (
	ParentLevel ParentType = "level" // children are books
	ParentBook  ParentType = "book"  // children are pages
)

// ParseParentType accepts "level"/"levels" and "book"/"books".
func ParseParentType(s string) (ParentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "level", "levels":
		return ParentLevel, nil
	case "book", "books":
		return ParentBook, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownParent, s)
	}
}

// Position is where AttachChild inserts a child.
type Position int

const (
	PositionAppend Position = iota
	PositionFront
)

// ParsePosition maps "", "append"/"end" and "front"/"start" to a Position.
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append", "end":
		return PositionAppend, nil
	case "front", "start":
		return PositionFront, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
}

type parentSpec struct {
	collection store.Collection
	children   store.Collection
	field      string
}

func parentSpecOf(pt ParentType) (parentSpec, error) {
	switch pt {
	case ParentLevel:
		return parentSpec{collection: store.CollectionLevels, children: store.CollectionBooks, field: fieldBooks}, nil
	case ParentBook:
		return parentSpec{collection: store.CollectionBooks, children: store.CollectionPages, field: fieldPages}, nil
	default:
		return parentSpec{}, fmt.Errorf("%w: %q", ErrUnknownParent, pt)
	}
}

// refsTransform computes the new array from the current one. Returning
// changed=false skips the write.
type refsTransform func(current []string) (next []string, changed bool, err error)

// updateRefs applies fn to the parent's id array as a compare-and-swap on the
// parent's version, retrying on version conflicts.
func (s *Service) updateRefs(ctx context.Context, ps parentSpec, parentID string, fn refsTransform) error {
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		doc, err := s.store.Get(ctx, ps.collection, parentID)
		if err != nil {
			return fmt.Errorf("%s %s: %w", ps.collection, parentID, err)
		}
		current, err := refsOf(doc.Fields, ps.field)
		if err != nil {
			return invalid(doc, err)
		}

		next, changed, err := fn(current)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		err = s.store.Update(ctx, ps.collection, parentID, store.Fields{ps.field: next}, doc.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return fmt.Errorf("update %s %s: %w", ps.collection, parentID, err)
		}
		s.log.WithFields(logrus.Fields{
			"collection": ps.collection,
			"id":         parentID,
			"attempt":    attempt + 1,
		}).Debug("Reference update lost a race, retrying")
	}
	return fmt.Errorf("%w: %s %s", ErrConflict, ps.collection, parentID)
}

// AttachChild inserts childID into the parent's reference array. It is a
// no-op when the child is already present, except that a front cover found
// off index 0 is moved there. The child must exist.
//
// For books, a front-cover page is always placed at index 0 and any other
// cover in the book is demoted; a regular page cannot be placed at the front.
func (s *Service) AttachChild(ctx context.Context, pt ParentType, parentID, childID string, pos Position) error {
	ps, err := parentSpecOf(pt)
	if err != nil {
		return err
	}
	if parentID == "" || childID == "" {
		return fmt.Errorf("%w: parent and child ids are required", ErrInvalidInput)
	}

	child, err := s.store.Get(ctx, ps.children, childID)
	if err != nil {
		return fmt.Errorf("%s %s: %w", ps.children, childID, err)
	}

	cover := false
	if pt == ParentBook {
		page, err := decodePage(child)
		if err != nil {
			return err
		}
		if page.BookID != parentID {
			return fmt.Errorf("%w: page %s belongs to book %s, not %s", ErrBookMismatch, childID, page.BookID, parentID)
		}
		cover = page.IsFrontCover
		if cover && pos != PositionFront {
			return fmt.Errorf("%w: front cover page %s must be attached at the front", ErrInvalidPosition, childID)
		}
		if !cover && pos == PositionFront {
			return fmt.Errorf("%w: only a front cover page can be attached at the front", ErrInvalidPosition)
		}
	}

	err = s.updateRefs(ctx, ps, parentID, func(current []string) ([]string, bool, error) {
		if slices.Contains(current, childID) {
			if cover {
				return moveToFront(current, childID)
			}
			return current, false, nil
		}
		return insertAt(current, childID, pos), true, nil
	})
	if err != nil {
		return err
	}

	if cover {
		if err := s.demoteCovers(ctx, parentID, childID); err != nil {
			return &PartialWriteError{Op: "attach_child", Step: "demote_covers", ID: childID, Err: err}
		}
	}
	return nil
}

// PageFields are the editable fields of a new page.
type PageFields struct {
	Text         string                 `json:"text"`
	TextLanguage string                 `json:"text_language"`
	PictureURL   string                 `json:"picture_url"`
	IsFrontCover bool                   `json:"is_front_cover"`
	Translations []entities.Translation `json:"translations"`
}

// CreateAndAttachPage creates a page owned by bookID and links it into the
// book: at the front when it is a front cover (demoting any other cover),
// appended otherwise.
//
// The page is written before the book is patched. If a later step fails the
// returned *PartialWriteError carries the id of the created page.
func (s *Service) CreateAndAttachPage(ctx context.Context, bookID string, in PageFields) (*entities.Page, error) {
	if bookID == "" {
		return nil, fmt.Errorf("%w: book id is required", ErrInvalidInput)
	}
	if _, err := s.store.Get(ctx, store.CollectionBooks, bookID); err != nil {
		return nil, fmt.Errorf("books %s: %w", bookID, err)
	}

	translations := in.Translations
	if translations == nil {
		translations = []entities.Translation{}
	}
	id, err := s.store.Create(ctx, store.CollectionPages, store.Fields{
		fieldBookID:       bookID,
		fieldText:         in.Text,
		fieldTextLanguage: in.TextLanguage,
		fieldPictureURL:   in.PictureURL,
		fieldIsFrontCover: in.IsFrontCover,
		fieldTranslations: encodeTranslations(translations),
	})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	pos := PositionAppend
	if in.IsFrontCover {
		pos = PositionFront
	}
	ps, _ := parentSpecOf(ParentBook)
	err = s.updateRefs(ctx, ps, bookID, func(current []string) ([]string, bool, error) {
		if slices.Contains(current, id) {
			return current, false, nil
		}
		return insertAt(current, id, pos), true, nil
	})
	if err != nil {
		return nil, &PartialWriteError{Op: "create_and_attach_page", Step: "attach", ID: id, Err: err}
	}

	if in.IsFrontCover {
		if err := s.demoteCovers(ctx, bookID, id); err != nil {
			return nil, &PartialWriteError{Op: "create_and_attach_page", Step: "demote_covers", ID: id, Err: err}
		}
	}

	s.log.WithFields(logrus.Fields{"book_id": bookID, "page_id": id, "front_cover": in.IsFrontCover}).Info("Page created")

	return &entities.Page{
		ID:           id,
		BookID:       bookID,
		Text:         in.Text,
		TextLanguage: in.TextLanguage,
		PictureURL:   in.PictureURL,
		IsFrontCover: in.IsFrontCover,
		Translations: translations,
		Version:      1,
	}, nil
}

// DetachAndDelete deletes the child document, then removes every occurrence
// of its id from the parent's array. An absent child or parent is not an
// error. A page owned by a different book is refused with ErrBookMismatch. A failure to patch the parent after the delete succeeded is
// reported as *PartialWriteError.
func (s *Service) DetachAndDelete(ctx context.Context, pt ParentType, parentID, childID string) error {
	ps, err := parentSpecOf(pt)
	if err != nil {
		return err
	}
	if parentID == "" || childID == "" {
		return fmt.Errorf("%w: parent and child ids are required", ErrInvalidInput)
	}

	if pt == ParentBook {
		child, err := s.store.Get(ctx, ps.children, childID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Already gone, still detach below.
		case err != nil:
			return fmt.Errorf("%s %s: %w", ps.children, childID, err)
		default:
			page, err := decodePage(child)
			if err != nil {
				return err
			}
			if page.BookID != parentID {
				return fmt.Errorf("%w: page %s belongs to book %s, not %s", ErrBookMismatch, childID, page.BookID, parentID)
			}
		}
	}

	if err := s.store.Delete(ctx, ps.children, childID); err != nil {
		return fmt.Errorf("delete %s %s: %w", ps.children, childID, err)
	}

	err = s.updateRefs(ctx, ps, parentID, removeRef(childID))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return &PartialWriteError{Op: "detach_and_delete", Step: "detach", ID: childID, Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"parent":    ps.collection,
		"parent_id": parentID,
		"child_id":  childID,
	}).Info("Child deleted")
	return nil
}

// Reorder replaces the parent's array with newOrder, which must contain
// exactly the same ids (including duplicates) as the current array. For
// books, a front cover at index 0 must stay there.
func (s *Service) Reorder(ctx context.Context, pt ParentType, parentID string, newOrder []string) error {
	ps, err := parentSpecOf(pt)
	if err != nil {
		return err
	}

	return s.updateRefs(ctx, ps, parentID, func(current []string) ([]string, bool, error) {
		if !sameMultiset(current, newOrder) {
			return nil, false, fmt.Errorf("%w: new order is not a permutation of the current children", ErrInvalidReorder)
		}
		if slices.Equal(current, newOrder) {
			return current, false, nil
		}
		if pt == ParentBook && newOrder[0] != current[0] && s.isFrontCover(ctx, current[0]) {
			return nil, false, fmt.Errorf("%w: front cover page %s must stay first", ErrInvalidReorder, current[0])
		}
		return slices.Clone(newOrder), true, nil
	})
}

// moveToFront relocates id to index 0 of refs, reporting whether it moved.
func moveToFront(refs []string, id string) ([]string, bool, error) {
	if len(refs) > 0 && refs[0] == id {
		return refs, false, nil
	}
	rest := slices.DeleteFunc(slices.Clone(refs), func(ref string) bool { return ref == id })
	return insertAt(rest, id, PositionFront), true, nil
}

// demoteCovers clears isFrontCover on every page of the book except keepID.
func (s *Service) demoteCovers(ctx context.Context, bookID, keepID string) error {
	doc, err := s.store.Get(ctx, store.CollectionBooks, bookID)
	if err != nil {
		return fmt.Errorf("books %s: %w", bookID, err)
	}
	refs, err := refsOf(doc.Fields, fieldPages)
	if err != nil {
		return invalid(doc, err)
	}

	var merr *multierror.Error
	for _, id := range refs {
		if id == keepID || !s.isFrontCover(ctx, id) {
			continue
		}
		err := s.store.Update(ctx, store.CollectionPages, id, store.Fields{fieldIsFrontCover: false}, 0)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			merr = multierror.Append(merr, fmt.Errorf("demote page %s: %w", id, err))
			continue
		}
		s.log.WithFields(logrus.Fields{"book_id": bookID, "page_id": id}).Info("Front cover demoted")
	}
	return merr.ErrorOrNil()
}

func (s *Service) isFrontCover(ctx context.Context, pageID string) bool {
	doc, err := s.store.Get(ctx, store.CollectionPages, pageID)
	if err != nil {
		return false
	}
	page, err := decodePage(doc)
	if err != nil {
		return false
	}
	return page.IsFrontCover
}

func insertAt(refs []string, id string, pos Position) []string {
	out := make([]string, 0, len(refs)+1)
	if pos == PositionFront {
		out = append(out, id)
		return append(out, refs...)
	}
	out = append(out, refs...)
	return append(out, id)
}

func removeRef(id string) refsTransform {
	return func(current []string) ([]string, bool, error) {
		if !slices.Contains(current, id) {
			return current, false, nil
		}
		return slices.DeleteFunc(slices.Clone(current), func(ref string) bool { return ref == id }), true, nil
	}
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
