package scene

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ivlev/tweener/internal/curve"
	"github.com/ivlev/tweener/internal/tween"
)

func loadBounce(t *testing.T) *Scene {
	t.Helper()
	s, err := Load(filepath.Join("testdata", "bounce.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestLoad(t *testing.T) {
	s := loadBounce(t)
	want := []curve.ID{"ball_rotateZ", "ball_translateX", "ball_translateY", "driver_scale"}
	if d := cmp.Diff(want, s.CurveIDs()); d != "" {
		t.Errorf("CurveIDs (-want +got):\n%s", d)
	}

	c, err := s.Curve("ball_translateX")
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind != curve.TimeToDistance {
		t.Errorf("Kind = %v", c.Kind)
	}
	if c.Keys[1].Out != curve.Vec(1, 2) {
		t.Errorf("tangent = %v", c.Keys[1].Out)
	}
}

func TestParseRejectsBadScenes(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unordered", "curves:\n  - {name: a, kind: timeToTime, keys: [{time: 1, value: 0}, {time: 0, value: 0}]}\n", "strictly increasing"},
		{"kind", "curves:\n  - {name: a, kind: animCurveXY, keys: []}\n", "unknown curve kind"},
		{"duplicate", "curves:\n  - {name: a, kind: timeToTime}\n  - {name: a, kind: timeToTime}\n", "duplicate"},
		{"dangling", "nodes:\n  - {name: n, attributes: [{name: tx, curve: missing}]}\n", "curve not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDefaultValue(t *testing.T) {
	s := loadBounce(t)
	if v, ok := s.DefaultValue("driver_scale"); !ok || v != 1 {
		t.Errorf("DefaultValue(driver_scale) = %g, %v", v, ok)
	}

	s, err := Parse([]byte("curves:\n  - {name: loose, kind: timeToTime, keys: [{time: 0, value: 0}]}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.DefaultValue("loose"); ok {
		t.Error("unconnected curve reported a default")
	}
}

func TestSetValue(t *testing.T) {
	s := loadBounce(t)
	if err := s.SetValue("ball_translateY", 1, 42); err != nil {
		t.Fatal(err)
	}
	ks, _ := s.Samples("ball_translateY")
	if ks[1].Value != 42 {
		t.Errorf("value = %g, want 42", ks[1].Value)
	}
	if err := s.SetValue("ball_translateY", 3, 1); !errors.Is(err, curve.ErrInvalidRange) {
		t.Errorf("out of range: %v", err)
	}
	if err := s.SetValue("nope", 0, 1); !errors.Is(err, ErrCurveNotFound) {
		t.Errorf("missing curve: %v", err)
	}
}

func TestSelectedKeysEditableContext(t *testing.T) {
	s := loadBounce(t)
	if !s.IsEditableContext() {
		t.Fatal("expected editable context")
	}
	refs, err := s.SelectedKeys()
	if err != nil {
		t.Fatal(err)
	}
	// driver_scale is a driven-key curve and is left out
	want := []tween.KeyRef{
		{Curve: "ball_rotateZ", Key: 0},
		{Curve: "ball_translateY", Key: 1},
	}
	if d := cmp.Diff(want, refs); d != "" {
		t.Errorf("SelectedKeys (-want +got):\n%s", d)
	}
}

func TestSelectedKeysFromObjects(t *testing.T) {
	s := loadBounce(t)
	s.file.Editor.GraphEditor = false
	if s.IsEditableContext() {
		t.Fatal("expected non-editable context")
	}

	// channel box restricts to ty
	refs, _ := s.SelectedKeys()
	want := []tween.KeyRef{{Curve: "ball_translateY", Key: 1}}
	if d := cmp.Diff(want, refs); d != "" {
		t.Errorf("with channel box (-want +got):\n%s", d)
	}

	// rotateZ has no key at t=5
	s.UseChannelBox = false
	refs, _ = s.SelectedKeys()
	want = []tween.KeyRef{
		{Curve: "ball_translateX", Key: 1},
		{Curve: "ball_translateY", Key: 1},
	}
	if d := cmp.Diff(want, refs); d != "" {
		t.Errorf("without channel box (-want +got):\n%s", d)
	}
}

func TestSetFilter(t *testing.T) {
	s := loadBounce(t)
	s.file.Editor.GraphEditor = false
	s.UseChannelBox = false

	if err := s.SetFilter([]string{"ball/translate{X,Z}"}); err != nil {
		t.Fatal(err)
	}
	refs, _ := s.SelectedKeys()
	want := []tween.KeyRef{{Curve: "ball_translateX", Key: 1}}
	if d := cmp.Diff(want, refs); d != "" {
		t.Errorf("filtered (-want +got):\n%s", d)
	}

	if err := s.SetFilter([]string{"ball/[translate"}); err == nil {
		t.Error("expected invalid pattern error")
	}
}

func TestSaveRoundTripAndDigest(t *testing.T) {
	s := loadBounce(t)
	before, err := s.Digest()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetValue("ball_translateY", 1, 50); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Digest()
	if before == after {
		t.Error("digest unchanged after edit")
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := reloaded.Digest()
	if got != after {
		t.Errorf("digest after reload = %s, want %s", got, after)
	}
}

func TestSceneDrivesEngine(t *testing.T) {
	s := loadBounce(t)
	e := tween.NewEngine(s, tween.Options{})
	sess, err := e.PressSelection(s, s, "")
	if err == nil && !sess.FromEditor() {
		t.Error("bounce scene selects keys in the graph editor")
	}
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Drag(sess, 0.5, ""); err != nil {
		t.Fatal(err)
	}
	cache, _ := e.Release(sess)

	ty, _ := s.Samples("ball_translateY")
	if ty[1].Value != 50 {
		t.Errorf("translateY = %g, want 50", ty[1].Value)
	}
	// first key of rotateZ blends toward the attribute default 0
	rz, _ := s.Samples("ball_rotateZ")
	if rz[0].Value != 0.75 {
		t.Errorf("rotateZ = %g, want 0.75", rz[0].Value)
	}

	if err := cache.Undo(); err != nil {
		t.Fatal(err)
	}
	ty, _ = s.Samples("ball_translateY")
	rz, _ = s.Samples("ball_rotateZ")
	if ty[1].Value != 20 || rz[0].Value != 1.5 {
		t.Errorf("after undo: ty=%g rz=%g", ty[1].Value, rz[0].Value)
	}
}
