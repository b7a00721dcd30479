package tween

import (
	"github.com/google/uuid"

	"github.com/ivlev/tweener/internal/changes"
	"github.com/ivlev/tweener/internal/shape"
)

// Session is the handle of one press/drag/release gesture. It is returned by
// Engine.Press and must be passed back to Drag and Release.
type Session struct {
	id        uuid.UUID
	engine    *Engine
	targets   []Target
	shapeName string
	shape     shape.Func
	cache     *changes.Cache
	active    bool
	editor    bool
	factor    float64
	drags     int
}

func (s *Session) ID() uuid.UUID { return s.id }

// Active reports whether the session still accepts drags.
func (s *Session) Active() bool { return s.active }

// Shape returns the name of the shape applied by the last drag.
func (s *Session) Shape() string { return s.shapeName }

// Factor returns the factor of the last drag.
func (s *Session) Factor() float64 { return s.factor }

// FromEditor reports whether the keys came from a live curve editor
// selection rather than from the keys at the current time.
func (s *Session) FromEditor() bool { return s.editor }

// Drags returns how many drags were applied.
func (s *Session) Drags() int { return s.drags }

// Cache returns the live change cache. It is valid for undo immediately
// after every write, before the session is released.
func (s *Session) Cache() *changes.Cache { return s.cache }

// Targets returns a copy of the resolved targets.
func (s *Session) Targets() []Target {
	out := make([]Target, len(s.targets))
	copy(out, s.targets)
	return out
}
