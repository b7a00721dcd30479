// Package changes records the key values touched by one tween gesture so the
// whole gesture can be undone and redone as a single action.
package changes

import (
	"errors"
	"fmt"

	"github.com/ivlev/tweener/internal/curve"
)

// Writer sets a key value on a host curve.
type Writer interface {
	SetValue(id curve.ID, index int, value float64) error
}

// Entry is the recorded state of one key.
type Entry struct {
	Curve    curve.ID `yaml:"curve"`
	Key      int      `yaml:"key"`
	Original float64  `yaml:"original"`
	Final    float64  `yaml:"final"`
}

type entryKey struct {
	curve curve.ID
	key   int
}

// Cache is the undo unit of one gesture. It owns no curve data, only the
// values needed to restore and reapply the keys it recorded.
type Cache struct {
	w       Writer
	entries []Entry
	index   map[entryKey]int
}

// New returns an empty cache writing through w.
func New(w Writer) *Cache {
	return &Cache{
		w:     w,
		index: make(map[entryKey]int),
	}
}

// Restore rebuilds a cache from previously exported entries.
func Restore(w Writer, entries []Entry) *Cache {
	c := New(w)
	for _, e := range entries {
		c.Record(e.Curve, e.Key, e.Original)
		c.Track(e.Curve, e.Key, e.Final)
	}
	return c
}

// Record stores the original value of a key. Only the first call for a
// given key has an effect.
func (c *Cache) Record(id curve.ID, key int, original float64) {
	k := entryKey{id, key}
	if _, ok := c.index[k]; ok {
		return
	}
	c.index[k] = len(c.entries)
	c.entries = append(c.entries, Entry{
		Curve:    id,
		Key:      key,
		Original: original,
		Final:    original,
	})
}

// Track stores the latest value written to a recorded key. It reports false
// if the key was never recorded.
func (c *Cache) Track(id curve.ID, key int, value float64) bool {
	i, ok := c.index[entryKey{id, key}]
	if !ok {
		return false
	}
	c.entries[i].Final = value
	return true
}

// Original returns the recorded original value of a key.
func (c *Cache) Original(id curve.ID, key int) (float64, bool) {
	i, ok := c.index[entryKey{id, key}]
	if !ok {
		return 0, false
	}
	return c.entries[i].Original, true
}

// Len returns the number of recorded keys.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the recorded entries in recording order.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Undo writes every recorded key back to its original value. All keys are
// attempted; failures are joined.
func (c *Cache) Undo() error {
	var errs []error
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		if err := c.w.SetValue(e.Curve, e.Key, e.Original); err != nil {
			errs = append(errs, fmt.Errorf("undo %s[%d]: %w", e.Curve, e.Key, err))
		}
	}
	return errors.Join(errs...)
}

// Redo writes every recorded key to the last value tracked for it.
func (c *Cache) Redo() error {
	var errs []error
	for _, e := range c.entries {
		if err := c.w.SetValue(e.Curve, e.Key, e.Final); err != nil {
			errs = append(errs, fmt.Errorf("redo %s[%d]: %w", e.Curve, e.Key, err))
		}
	}
	return errors.Join(errs...)
}
