package curve

import "fmt"

// Segment is the cubic Bezier arc between two keys. P1 and P4 are the key
// positions, P2 and P3 the handles derived from their tangents.
type Segment struct {
	P1 Point
	P2 Point
	P3 Point
	P4 Point
}

// BuildSegment reconstructs the Bezier control points spanning keys[start]
// and keys[end]. Tangent handles are converted to control points with the
// one-third rule: the outgoing tangent of the start key pushes P2 forward
// from P1, the incoming tangent of the end key pulls P3 back from P4.
func BuildSegment(keys []Keyframe, start, end int) (Segment, error) {
	if start < 0 || end >= len(keys) || start >= end {
		return Segment{}, fmt.Errorf("segment %d..%d of %d keys: %w", start, end, len(keys), ErrInvalidRange)
	}
	s, e := keys[start], keys[end]
	p1 := s.Position()
	p4 := e.Position()
	return Segment{
		P1: p1,
		P2: p1.Translate(s.Out.Mul(1.0 / 3.0)),
		P3: p4.Translate(e.In.Mul(-1.0 / 3.0)),
		P4: p4,
	}, nil
}

// Eval evaluates the Bezier polynomial at t. The polynomial form is used
// rather than subdivision so that t outside [0, 1] extrapolates.
func (s Segment) Eval(t float64) Point {
	mt := 1.0 - t
	a := mt * mt * mt
	b := 3.0 * mt * mt * t
	c := 3.0 * mt * t * t
	d := t * t * t
	return Point{
		X: a*s.P1.X + b*s.P2.X + c*s.P3.X + d*s.P4.X,
		Y: a*s.P1.Y + b*s.P2.Y + c*s.P3.Y + d*s.P4.Y,
	}
}

// Value returns the value component of Eval(t).
func (s Segment) Value(t float64) float64 {
	switch t {
	case 0:
		return s.P1.Y
	case 1:
		return s.P4.Y
	}
	return s.Eval(t).Y
}

func (s Segment) String() string {
	return fmt.Sprintf("Segment{%v %v %v %v}", s.P1, s.P2, s.P3, s.P4)
}
