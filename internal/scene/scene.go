// Package scene is a file-backed scene graph: animation curves, the node
// attributes they drive, the editor state and the user's selection. It
// provides the curve accessor, selection resolver and context query the
// tween engine consumes.
package scene

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"github.com/ivlev/tweener/internal/curve"
	"github.com/ivlev/tweener/internal/tween"
)

var ErrCurveNotFound = errors.New("curve not found")

const fileVersion = "1.0"

type attrRef struct {
	node *Node
	attr *Attribute
}

// Path returns the node/attribute path of the attribute.
func (r attrRef) Path() string {
	return r.node.Name + "/" + r.attr.Name
}

// Scene wraps a loaded File. It is not safe for concurrent use.
type Scene struct {
	file   File
	curves map[curve.ID]*Curve
	kinds  map[curve.ID]curve.Kind
	drives map[curve.ID]attrRef

	// UseChannelBox restricts object-based selection to the attributes
	// listed in the channel box, when any are listed.
	UseChannelBox bool
	// Tolerance is how close a key must be to the current time to count
	// as keyed at that time.
	Tolerance float64

	patterns []string
}

// Load reads and indexes a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene from YAML.
func Parse(data []byte) (*Scene, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return New(f)
}

// New indexes f and validates its curves and attribute connections.
func New(f File) (*Scene, error) {
	if f.Version == "" {
		f.Version = fileVersion
	}
	s := &Scene{
		file:          f,
		curves:        make(map[curve.ID]*Curve, len(f.Curves)),
		kinds:         make(map[curve.ID]curve.Kind, len(f.Curves)),
		drives:        make(map[curve.ID]attrRef),
		UseChannelBox: true,
		Tolerance:     1e-6,
	}

	for i := range s.file.Curves {
		c := &s.file.Curves[i]
		id := curve.ID(c.Name)
		if _, dup := s.curves[id]; dup {
			return nil, fmt.Errorf("duplicate curve %q", c.Name)
		}
		kind, err := curve.ParseKind(c.Kind)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", c.Name, err)
		}
		cv := curve.Curve{ID: id, Kind: kind, Keys: toKeyframes(c.Keys)}
		if err := cv.Validate(); err != nil {
			return nil, fmt.Errorf("curve %q: %w", c.Name, err)
		}
		s.curves[id] = c
		s.kinds[id] = kind
	}

	for i := range s.file.Nodes {
		n := &s.file.Nodes[i]
		for j := range n.Attributes {
			a := &n.Attributes[j]
			if a.Curve == "" {
				continue
			}
			id := curve.ID(a.Curve)
			if _, ok := s.curves[id]; !ok {
				return nil, fmt.Errorf("%s.%s: %w: %q", n.Name, a.Name, ErrCurveNotFound, a.Curve)
			}
			s.drives[id] = attrRef{node: n, attr: a}
		}
	}
	return s, nil
}

// Marshal encodes the scene as YAML.
func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(&s.file)
}

// Save writes the scene to path.
func (s *Scene) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Digest returns the BLAKE3 hash of the encoded scene as hex.
func (s *Scene) Digest() (string, error) {
	data, err := s.Marshal()
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:]), nil
}

// SetFilter narrows selection to curves whose name or driven
// node/attribute path matches one of the doublestar patterns.
func (s *Scene) SetFilter(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid curve pattern %q", p)
		}
	}
	s.patterns = patterns
	return nil
}

// CurveIDs returns the ids of all curves, sorted.
func (s *Scene) CurveIDs() []curve.ID {
	ids := make([]curve.ID, 0, len(s.curves))
	for id := range s.curves {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Curve returns a copy of the curve with the given id.
func (s *Scene) Curve(id curve.ID) (curve.Curve, error) {
	c, ok := s.curves[id]
	if !ok {
		return curve.Curve{}, fmt.Errorf("%w: %q", ErrCurveNotFound, id)
	}
	return curve.Curve{ID: id, Kind: s.kinds[id], Keys: toKeyframes(c.Keys)}, nil
}

// Samples implements tween.CurveAccessor.
func (s *Scene) Samples(id curve.ID) ([]curve.Keyframe, error) {
	c, err := s.Curve(id)
	if err != nil {
		return nil, err
	}
	return c.Keys, nil
}

// DefaultValue implements tween.CurveAccessor. It is the default of the
// attribute the curve drives.
func (s *Scene) DefaultValue(id curve.ID) (float64, bool) {
	ref, ok := s.drives[id]
	if !ok || ref.attr.Default == nil {
		return 0, false
	}
	return *ref.attr.Default, true
}

// SetValue implements tween.CurveAccessor.
func (s *Scene) SetValue(id curve.ID, index int, value float64) error {
	c, ok := s.curves[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCurveNotFound, id)
	}
	if index < 0 || index >= len(c.Keys) {
		return fmt.Errorf("key %d of %q: %w", index, id, curve.ErrInvalidRange)
	}
	c.Keys[index].Value = value
	return nil
}

// IsEditableContext implements tween.EditContext: a graph editor or dope
// sheet is visible and at least one key is selected.
func (s *Scene) IsEditableContext() bool {
	if !s.file.Editor.GraphEditor && !s.file.Editor.DopeSheet {
		return false
	}
	for name, keys := range s.file.Selection.Keys {
		if _, ok := s.curves[curve.ID(name)]; ok && len(keys) > 0 {
			return true
		}
	}
	return false
}

// SelectedKeys implements tween.Selector. In an editable context the
// selected keys are used directly. Otherwise every tweenable curve driving
// a selected object, filtered by the channel box, contributes its key at
// the current time. Driven-key curves never qualify.
func (s *Scene) SelectedKeys() ([]tween.KeyRef, error) {
	var refs []tween.KeyRef
	if s.IsEditableContext() {
		names := make([]string, 0, len(s.file.Selection.Keys))
		for name := range s.file.Selection.Keys {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			id := curve.ID(name)
			if !s.eligible(id) {
				continue
			}
			keys := append([]int(nil), s.file.Selection.Keys[name]...)
			sort.Ints(keys)
			for _, k := range keys {
				refs = append(refs, tween.KeyRef{Curve: id, Key: k})
			}
		}
		return refs, nil
	}

	channels := s.channelBox()
	for _, name := range s.file.Selection.Objects {
		node := s.node(name)
		if node == nil {
			continue
		}
		for _, a := range node.Attributes {
			if a.Curve == "" {
				continue
			}
			if channels != nil && !channels[a.Name] && !channels[a.Short] {
				continue
			}
			id := curve.ID(a.Curve)
			if !s.eligible(id) {
				continue
			}
			if k, ok := curve.IndexAt(toKeyframes(s.curves[id].Keys), s.file.Time, s.Tolerance); ok {
				refs = append(refs, tween.KeyRef{Curve: id, Key: k})
			}
		}
	}
	return refs, nil
}

func (s *Scene) eligible(id curve.ID) bool {
	kind, ok := s.kinds[id]
	if !ok || !kind.Tweenable() {
		return false
	}
	return s.matches(id)
}

func (s *Scene) matches(id curve.ID) bool {
	if len(s.patterns) == 0 {
		return true
	}
	candidates := []string{string(id)}
	if ref, ok := s.drives[id]; ok {
		candidates = append(candidates, ref.Path())
	}
	for _, p := range s.patterns {
		for _, c := range candidates {
			if ok, _ := doublestar.Match(p, c); ok {
				return true
			}
		}
	}
	return false
}

func (s *Scene) channelBox() map[string]bool {
	if !s.UseChannelBox || len(s.file.ChannelBox) == 0 {
		return nil
	}
	set := make(map[string]bool, len(s.file.ChannelBox))
	for _, name := range s.file.ChannelBox {
		set[name] = true
	}
	return set
}

func (s *Scene) node(name string) *Node {
	for i := range s.file.Nodes {
		if s.file.Nodes[i].Name == name {
			return &s.file.Nodes[i]
		}
	}
	return nil
}

func toKeyframes(keys []Key) []curve.Keyframe {
	out := make([]curve.Keyframe, len(keys))
	for i, k := range keys {
		out[i] = curve.Keyframe{
			Time:  k.Time,
			Value: k.Value,
			In:    curve.Vec(k.In[0], k.In[1]),
			Out:   curve.Vec(k.Out[0], k.Out[1]),
		}
	}
	return out
}
