// Package shape provides the easing functions that remap a raw tween factor
// before it is applied to a curve.
package shape

import (
	"math"
	"sort"
	"strings"
)

// Func remaps a blend factor. Every Func maps 0 to 0 and 1 to 1 and is
// defined for factors outside [0, 1] so that tweens can overshoot.
type Func func(t float64) float64

const (
	Linear    = "linear"
	EaseIn    = "ease-in"
	EaseOut   = "ease-out"
	EaseInOut = "ease-in-out"
	SineIn    = "sine-in"
	SineOut   = "sine-out"
	SineInOut = "sine-in-out"
	Smooth    = "smooth"
)

var registry = map[string]Func{
	Linear:    linear,
	EaseIn:    pinned(easeInCubic),
	EaseOut:   pinned(easeOutCubic),
	EaseInOut: pinned(easeInOutCubic),
	SineIn:    pinned(easeInSine),
	SineOut:   pinned(easeOutSine),
	SineInOut: pinned(easeInOutSine),
	Smooth:    pinned(smoothstep),
}

// Lookup returns the shape registered under name. Names are matched case
// insensitively and "_" is accepted for "-". Unknown names resolve to the
// linear shape and ok is false; a tween must never abort on a bad name.
func Lookup(name string) (f Func, ok bool) {
	f, ok = registry[Normalize(name)]
	if !ok {
		return linear, false
	}
	return f, true
}

// Get is Lookup without the ok flag.
func Get(name string) Func {
	f, _ := Lookup(name)
	return f
}

// Normalize returns the canonical spelling of a shape name.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", "-")
}

// Names lists the registered shapes in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// pinned makes the endpoints exact regardless of rounding inside f.
func pinned(f Func) Func {
	return func(t float64) float64 {
		switch t {
		case 0:
			return 0
		case 1:
			return 1
		}
		return f(t)
	}
}

func linear(t float64) float64 {
	return t
}

func easeInCubic(t float64) float64 {
	return t * t * t
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// easeInOutCubic joins the cubic in and out halves at t = 0.5.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2 - 2*t
	return 1 - u*u*u/2
}

func easeInSine(t float64) float64 {
	return 1 - math.Cos(t*math.Pi/2)
}

func easeOutSine(t float64) float64 {
	return math.Sin(t * math.Pi / 2)
}

func easeInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
