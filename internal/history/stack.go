// Package history keeps the host side of undo: an in-memory stack of
// gesture caches, and a SQLite journal that persists them between runs.
package history

import (
	"errors"

	"github.com/ivlev/tweener/internal/changes"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrSceneChanged  = errors.New("scene changed since the change was recorded")
)

// Stack is an undo stack of released gesture caches.
type Stack struct {
	done   []*changes.Cache
	undone []*changes.Cache
	limit  int
}

// NewStack returns a stack keeping at most limit entries; 0 means no limit.
func NewStack(limit int) *Stack {
	return &Stack{limit: limit}
}

// Push adds a released cache and discards the redo branch.
func (s *Stack) Push(c *changes.Cache) {
	if c == nil || c.Len() == 0 {
		return
	}
	s.done = append(s.done, c)
	s.undone = nil
	if s.limit > 0 && len(s.done) > s.limit {
		s.done = s.done[len(s.done)-s.limit:]
	}
}

// Undo reverts the newest cache.
func (s *Stack) Undo() error {
	if len(s.done) == 0 {
		return ErrNothingToUndo
	}
	c := s.done[len(s.done)-1]
	if err := c.Undo(); err != nil {
		return err
	}
	s.done = s.done[:len(s.done)-1]
	s.undone = append(s.undone, c)
	return nil
}

// Redo reapplies the most recently undone cache.
func (s *Stack) Redo() error {
	if len(s.undone) == 0 {
		return ErrNothingToRedo
	}
	c := s.undone[len(s.undone)-1]
	if err := c.Redo(); err != nil {
		return err
	}
	s.undone = s.undone[:len(s.undone)-1]
	s.done = append(s.done, c)
	return nil
}

// Depth returns the number of undoable and redoable entries.
func (s *Stack) Depth() (undo, redo int) {
	return len(s.done), len(s.undone)
}
