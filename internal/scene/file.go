package scene

// File is the on-disk layout of a scene.
type File struct {
	Version    string    `yaml:"version"`
	Time       float64   `yaml:"time"` // current time in seconds
	Editor     Editor    `yaml:"editor"`
	ChannelBox []string  `yaml:"channel_box,omitempty"`
	Selection  Selection `yaml:"selection"`
	Nodes      []Node    `yaml:"nodes"`
	Curves     []Curve   `yaml:"curves"`
}

// Editor describes which curve editing views are visible.
type Editor struct {
	GraphEditor bool `yaml:"graph_editor"`
	DopeSheet   bool `yaml:"dope_sheet"`
}

// Selection holds selected objects and selected keys by curve name.
type Selection struct {
	Objects []string         `yaml:"objects,omitempty"`
	Keys    map[string][]int `yaml:"keys,omitempty"`
}

type Node struct {
	Name       string      `yaml:"name"`
	Attributes []Attribute `yaml:"attributes"`
}

// Attribute is a node attribute, optionally driven by a curve.
type Attribute struct {
	Name    string   `yaml:"name"`
	Short   string   `yaml:"short,omitempty"`
	Default *float64 `yaml:"default,omitempty"`
	Curve   string   `yaml:"curve,omitempty"`
}

type Curve struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Keys []Key  `yaml:"keys"`
}

// Key is a keyframe. In and Out are tangent handles in (seconds, value).
type Key struct {
	Time  float64    `yaml:"time"`
	Value float64    `yaml:"value"`
	In    [2]float64 `yaml:"in,flow"`
	Out   [2]float64 `yaml:"out,flow"`
}
