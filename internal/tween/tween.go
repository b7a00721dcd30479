// Package tween blends keyframe values toward their neighbouring keys, or
// toward the attribute default, for the duration of a press/drag/release
// gesture.
package tween

import (
	"errors"

	"github.com/ivlev/tweener/internal/curve"
)

var (
	ErrInvalidRange         = curve.ErrInvalidRange
	ErrNoTweenableKeys      = errors.New("no tweenable keys")
	ErrSessionAlreadyActive = errors.New("tween session already active")
	ErrSessionClosed        = errors.New("tween session is closed")
)

// KeyRef addresses one key of a host curve.
type KeyRef struct {
	Curve curve.ID
	Key   int
}

// CurveAccessor reads and writes host curves. Samples must be ordered by
// time with tangents already expressed in (time, value) space.
type CurveAccessor interface {
	Samples(id curve.ID) ([]curve.Keyframe, error)
	// DefaultValue returns the default of the attribute driven by the
	// curve, if there is one.
	DefaultValue(id curve.ID) (float64, bool)
	SetValue(id curve.ID, index int, value float64) error
}

// Selector resolves the keys the user wants to tween. Implementations
// return only keys on tweenable curves.
type Selector interface {
	SelectedKeys() ([]KeyRef, error)
}

// EditContext reports whether a curve editing view holds a live key
// selection.
type EditContext interface {
	IsEditableContext() bool
}

// Target is what a selected key is blended toward, resolved once at press.
type Target struct {
	Curve    curve.ID
	Key      int
	Original float64
	// Segment spans the previous and next key. It is nil when the key
	// is the first or last on its curve.
	Segment  *curve.Segment
	Fallback float64
}

// HasSegment reports whether the target is bounded by neighbour keys.
func (t Target) HasSegment() bool {
	return t.Segment != nil
}

// Blend returns the key value for the shaped factor tp.
func (t Target) Blend(tp float64) float64 {
	if t.Segment != nil {
		return t.Segment.Value(tp)
	}
	return lerp(t.Original, t.Fallback, tp)
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
