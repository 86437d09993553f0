package timeline

import (
	"errors"
	"fmt"

	"github.com/framecut/framecut-agent/internal/keyframe"
)

// Split cuts the element at timeline time at and returns the new right-hand
// part, which is appended as a new row with a fresh ID.
//
// A static element is divided in time: the original keeps [start, at) and the
// copy covers [at, end). A dynamic element keeps its placement in both halves
// and the trim window is partitioned at the matching source offset instead.
func (s *Store) Split(id string, at int64) (Element, error) {
	orig, ok := s.elements[id]
	if !ok {
		return Element{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if at <= orig.VisibleStart() || at >= orig.VisibleEnd() {
		return Element{}, fmt.Errorf("%w: %d not in (%d, %d)", ErrSplitOutOfRange, at, orig.VisibleStart(), orig.VisibleEnd())
	}

	left := Patch{}
	right := orig
	right.ID = ""
	offset := at - orig.StartTime
	if orig.Static() {
		right.StartTime = at
		right.Duration = orig.Duration - offset
		left.Duration = ref(offset)
	} else {
		right.Trim.StartTime = offset
		left.Trim = &Trim{StartTime: orig.Trim.StartTime, EndTime: offset}
	}

	// both halves are validated before either is committed
	if err := left.apply(orig).validate(); err != nil {
		return Element{}, err
	}
	right, err := s.prepare(right)
	if err != nil {
		return Element{}, err
	}

	anim := s.animations[id].Clone()
	if _, err := s.Apply(id, left); err != nil {
		return Element{}, err
	}
	s.insert(right, anim)
	return right, nil
}

var ErrClipboardEmpty = errors.New("clipboard is empty")

// Clipboard holds one copied element with its animation.
type Clipboard struct {
	elem *Element
	anim *keyframe.Animation
}

func (c *Clipboard) Empty() bool { return c.elem == nil }

// Copy puts a deep copy of the element on the clipboard.
func (c *Clipboard) Copy(s *Store, id string) error {
	e, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.elem = &e
	c.anim = s.animations[id].Clone()
	return nil
}

// Cut copies the element and removes it from the store.
func (c *Clipboard) Cut(s *Store, id string) error {
	if err := c.Copy(s, id); err != nil {
		return err
	}
	return s.Remove(id)
}

// Paste adds a new copy of the clipboard element with a fresh ID. The
// clipboard keeps its content, so pasting twice gives two elements.
func (c *Clipboard) Paste(s *Store) (Element, error) {
	if c.elem == nil {
		return Element{}, ErrClipboardEmpty
	}
	e := *c.elem
	e.ID = ""
	return s.add(e, c.anim.Clone())
}
