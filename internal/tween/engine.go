package tween

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/ivlev/tweener/internal/changes"
	"github.com/ivlev/tweener/internal/curve"
	"github.com/ivlev/tweener/internal/shape"
)

// Options tune an Engine.
type Options struct {
	// Strict makes Press fail with ErrSessionAlreadyActive while a session
	// is open. Otherwise the open session is released and replaced.
	Strict bool
	// ClampFactor limits drag factors to [MinFactor, MaxFactor].
	ClampFactor bool
	MinFactor   float64
	MaxFactor   float64
	// Logger receives notes about skipped curves. Nil discards them.
	Logger *log.Logger
}

// Engine runs tween sessions against a set of host curves. It is not safe
// for concurrent use; a gesture handler owns it.
type Engine struct {
	curves CurveAccessor
	opts   Options
	active *Session
}

// NewEngine creates an idle engine.
func NewEngine(curves CurveAccessor, opts Options) *Engine {
	return &Engine{
		curves: curves,
		opts:   opts,
	}
}

// Active returns the open session, or nil when idle.
func (e *Engine) Active() *Session {
	return e.active
}

// PressSelection opens a session on the keys resolved by sel. ctx, when
// not nil, tells whether those keys come from a curve editor selection;
// the session reports it through FromEditor.
func (e *Engine) PressSelection(sel Selector, ctx EditContext, shapeName string) (*Session, error) {
	editor := ctx != nil && ctx.IsEditableContext()
	keys, err := sel.SelectedKeys()
	if err != nil {
		return nil, fmt.Errorf("resolving selection: %w", err)
	}
	s, err := e.Press(keys, shapeName)
	if err != nil {
		return nil, err
	}
	s.editor = editor
	if editor {
		e.logf("[*] session %s: %d keys from the curve editor selection", s.id, len(s.targets))
	} else {
		e.logf("[*] session %s: %d keys at the current time", s.id, len(s.targets))
	}
	return s, nil
}

// Press opens a session on keys. Targets are resolved and every key's
// current value is recorded in the session's change cache; nothing is
// written to the curves.
func (e *Engine) Press(keys []KeyRef, shapeName string) (*Session, error) {
	if e.active != nil {
		if e.opts.Strict {
			return nil, ErrSessionAlreadyActive
		}
		e.logf("[!] session %s replaced by a new press", e.active.id)
		e.close(e.active)
	}

	targets, err := e.resolve(keys)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, ErrNoTweenableKeys
	}

	f, ok := shape.Lookup(shapeName)
	if !ok && shapeName != "" {
		e.logf("[!] unknown shape %q, using %s", shapeName, shape.Linear)
	}
	s := &Session{
		id:        uuid.New(),
		engine:    e,
		targets:   targets,
		shapeName: shapeNameOr(shapeName, ok),
		shape:     f,
		cache:     changes.New(e.curves),
		active:    true,
	}
	for _, t := range targets {
		s.cache.Record(t.Curve, t.Key, t.Original)
	}
	e.active = s
	return s, nil
}

// Drag blends every target of s by factor and writes the results. An empty
// shapeName keeps the session's shape; any other name replaces it. Factors
// are not clamped unless the engine was configured to.
func (e *Engine) Drag(s *Session, factor float64, shapeName string) error {
	if err := e.check(s); err != nil {
		return err
	}
	if shapeName != "" {
		f, ok := shape.Lookup(shapeName)
		if !ok {
			e.logf("[!] unknown shape %q, using %s", shapeName, shape.Linear)
		}
		s.shape, s.shapeName = f, shapeNameOr(shapeName, ok)
	}
	if e.opts.ClampFactor {
		factor = shape.Clamp(factor, e.opts.MinFactor, e.opts.MaxFactor)
	}

	tp := s.shape(factor)
	var errs []error
	for _, t := range s.targets {
		v := t.Blend(tp)
		if err := e.curves.SetValue(t.Curve, t.Key, v); err != nil {
			errs = append(errs, fmt.Errorf("writing %s[%d]: %w", t.Curve, t.Key, err))
			continue
		}
		s.cache.Track(t.Curve, t.Key, v)
	}
	s.factor = factor
	s.drags++
	return errors.Join(errs...)
}

// Release closes s and returns its change cache, the caller's undo unit.
func (e *Engine) Release(s *Session) (*changes.Cache, error) {
	if err := e.check(s); err != nil {
		return nil, err
	}
	e.close(s)
	return s.cache, nil
}

// Cancel restores every key touched by s and closes it.
func (e *Engine) Cancel(s *Session) error {
	if err := e.check(s); err != nil {
		return err
	}
	err := s.cache.Undo()
	e.close(s)
	return err
}

func (e *Engine) check(s *Session) error {
	if s == nil || !s.active || s.engine != e || e.active != s {
		return ErrSessionClosed
	}
	return nil
}

func (e *Engine) close(s *Session) {
	s.active = false
	if e.active == s {
		e.active = nil
	}
}

// resolve builds one target per distinct key. Curves without keys, or
// end keys whose attribute has no default, are skipped.
func (e *Engine) resolve(keys []KeyRef) ([]Target, error) {
	samples := make(map[curve.ID][]curve.Keyframe)
	seen := make(map[KeyRef]bool, len(keys))
	var targets []Target

	for _, ref := range keys {
		if seen[ref] {
			continue
		}
		seen[ref] = true

		ks, ok := samples[ref.Curve]
		if !ok {
			var err error
			ks, err = e.curves.Samples(ref.Curve)
			if err != nil {
				e.logf("[!] skipping %s: %v", ref.Curve, err)
			}
			samples[ref.Curve] = ks
		}
		if len(ks) == 0 {
			continue
		}
		if ref.Key < 0 || ref.Key >= len(ks) {
			return nil, fmt.Errorf("key %d of %s with %d keys: %w", ref.Key, ref.Curve, len(ks), ErrInvalidRange)
		}

		t, ok, err := e.target(ref, ks)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.logf("[!] skipping %s[%d]: end key without attribute default", ref.Curve, ref.Key)
			continue
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func (e *Engine) target(ref KeyRef, keys []curve.Keyframe) (Target, bool, error) {
	t := Target{
		Curve:    ref.Curve,
		Key:      ref.Key,
		Original: keys[ref.Key].Value,
	}
	if ref.Key > 0 && ref.Key < len(keys)-1 {
		seg, err := curve.BuildSegment(keys, ref.Key-1, ref.Key+1)
		if err != nil {
			return t, false, err
		}
		t.Segment = &seg
		return t, true, nil
	}

	def, ok := e.curves.DefaultValue(ref.Curve)
	if !ok {
		return t, false, nil
	}
	t.Fallback = def
	return t, true, nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.opts.Logger != nil {
		e.opts.Logger.Printf(format, args...)
	}
}

func shapeNameOr(name string, ok bool) string {
	if !ok {
		return shape.Linear
	}
	return shape.Normalize(name)
}
