// Package curve holds the keyframe model of an animation curve and the
// reconstruction of the cubic Bezier segments between its keys.
package curve

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange = errors.New("invalid key range")
	ErrUnordered    = errors.New("key times are not strictly increasing")
)

// ID identifies a curve owned by the host. The core never interprets it.
type ID string

// Kind is the input/output family of an animation curve.
type Kind int

const (
	KindUnknown Kind = iota
	TimeToAngular
	TimeToDistance
	TimeToUnitless
	TimeToTime
	// Driven-key curves share the representation but are keyed on an
	// attribute instead of time.
	UnitlessToAngular
	UnitlessToDistance
	UnitlessToUnitless
	UnitlessToTime
)

var kindNames = map[Kind]string{
	TimeToAngular:      "timeToAngular",
	TimeToDistance:     "timeToDistance",
	TimeToUnitless:     "timeToUnitless",
	TimeToTime:         "timeToTime",
	UnitlessToAngular:  "unitlessToAngular",
	UnitlessToDistance: "unitlessToDistance",
	UnitlessToUnitless: "unitlessToUnitless",
	UnitlessToTime:     "unitlessToTime",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown curve kind %q", name)
}

// Tweenable reports whether curves of this kind may be tweened. Only
// time-driven curves qualify.
func (k Kind) Tweenable() bool {
	switch k {
	case TimeToAngular, TimeToDistance, TimeToUnitless, TimeToTime:
		return true
	}
	return false
}

// Keyframe is one keyed point of a curve. Time is in seconds, Value in the
// attribute's final numeric domain. In and Out are the incoming and outgoing
// tangent handles, already projected into (time, value) space.
type Keyframe struct {
	Time  float64
	Value float64
	In    Vec2
	Out   Vec2
}

// Position returns the key as a point.
func (k Keyframe) Position() Point {
	return Pt(k.Time, k.Value)
}

// Curve is a read copy of a host curve.
type Curve struct {
	ID   ID
	Kind Kind
	Keys []Keyframe
}

// Validate checks that key times are strictly increasing.
func (c Curve) Validate() error {
	return ValidateKeys(c.Keys)
}

// ValidateKeys checks that key times are strictly increasing.
func ValidateKeys(keys []Keyframe) error {
	for i := 1; i < len(keys); i++ {
		if keys[i].Time <= keys[i-1].Time {
			return fmt.Errorf("key %d at %gs follows %gs: %w", i, keys[i].Time, keys[i-1].Time, ErrUnordered)
		}
	}
	return nil
}

// IndexAt returns the index of the key at time t, within tolerance eps.
func IndexAt(keys []Keyframe, t, eps float64) (int, bool) {
	for i, k := range keys {
		d := k.Time - t
		if d < 0 {
			d = -d
		}
		if d <= eps {
			return i, true
		}
	}
	return -1, false
}
