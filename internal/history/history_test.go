package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ivlev/tweener/internal/changes"
	"github.com/ivlev/tweener/internal/curve"
)

// doc is a flat in-memory document; its digest is its sorted contents.
type doc map[string]float64

func (d doc) SetValue(id curve.ID, index int, value float64) error {
	d[fmt.Sprintf("%s[%d]", id, index)] = value
	return nil
}

func (d doc) Digest() (string, error) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%g;", k, d[k])
	}
	return b.String(), nil
}

// edit writes value to tx[1] and returns the cache of that edit.
func edit(d doc, value float64) *changes.Cache {
	c := changes.New(d)
	c.Record("tx", 1, d["tx[1]"])
	d.SetValue("tx", 1, value)
	c.Track("tx", 1, value)
	return c
}

func TestStack(t *testing.T) {
	d := doc{"tx[1]": 0}
	s := NewStack(0)

	if err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo on empty = %v", err)
	}
	s.Push(edit(d, 1))
	s.Push(edit(d, 2))
	s.Push(changes.New(d)) // empty caches are ignored

	if u, r := s.Depth(); u != 2 || r != 0 {
		t.Fatalf("Depth = %d, %d", u, r)
	}
	s.Undo()
	s.Undo()
	if d["tx[1]"] != 0 {
		t.Errorf("after two undos = %g, want 0", d["tx[1]"])
	}
	s.Redo()
	if d["tx[1]"] != 1 {
		t.Errorf("after redo = %g, want 1", d["tx[1]"])
	}

	s.Push(edit(d, 5))
	if err := s.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo after push = %v, want ErrNothingToRedo", err)
	}
}

func TestStackLimit(t *testing.T) {
	d := doc{"tx[1]": 0}
	s := NewStack(2)
	for i := 1; i <= 4; i++ {
		s.Push(edit(d, float64(i)))
	}
	if u, _ := s.Depth(); u != 2 {
		t.Errorf("Depth = %d, want 2", u)
	}
	s.Undo()
	s.Undo()
	if d["tx[1]"] != 2 {
		t.Errorf("oldest reachable value = %g, want 2", d["tx[1]"])
	}
}

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "sub", "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// appendEdit performs an edit on d and journals it.
func appendEdit(t *testing.T, j *Journal, d doc, value float64) string {
	t.Helper()
	before, _ := d.Digest()
	c := edit(d, value)
	after, _ := d.Digest()
	id, err := j.Append(Record{
		Scene:   "shot.yaml",
		Shape:   "linear",
		Factor:  value,
		Before:  before,
		After:   after,
		Entries: c.Entries(),
	}, nil)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	return id
}

func TestJournalUndoRedo(t *testing.T) {
	j := openJournal(t)
	d := doc{"tx[1]": 0}
	first := appendEdit(t, j, d, 1)
	second := appendEdit(t, j, d, 2)

	rec, err := j.Undo("shot.yaml", d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != second || d["tx[1]"] != 1 {
		t.Errorf("first undo: id=%s value=%g", rec.ID, d["tx[1]"])
	}
	rec, err = j.Undo("shot.yaml", d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != first || d["tx[1]"] != 0 {
		t.Errorf("second undo: id=%s value=%g", rec.ID, d["tx[1]"])
	}
	if _, err := j.Undo("shot.yaml", d, nil); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("third undo = %v", err)
	}

	rec, err = j.Redo("shot.yaml", d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != first || d["tx[1]"] != 1 {
		t.Errorf("first redo: id=%s value=%g", rec.ID, d["tx[1]"])
	}
	rec, err = j.Redo("shot.yaml", d, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != second || d["tx[1]"] != 2 {
		t.Errorf("second redo: id=%s value=%g", rec.ID, d["tx[1]"])
	}
	if _, err := j.Redo("shot.yaml", d, nil); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("third redo = %v", err)
	}
}

func TestJournalAppendDropsRedoBranch(t *testing.T) {
	j := openJournal(t)
	d := doc{"tx[1]": 0}
	appendEdit(t, j, d, 1)
	appendEdit(t, j, d, 2)
	if _, err := j.Undo("shot.yaml", d, nil); err != nil {
		t.Fatal(err)
	}
	appendEdit(t, j, d, 3)

	recs, err := j.List("shot.yaml", 0)
	if err != nil {
		t.Fatal(err)
	}
	var factors []float64
	for _, r := range recs {
		factors = append(factors, r.Factor)
	}
	if d := cmp.Diff([]float64{3, 1}, factors); d != "" {
		t.Errorf("journal factors (-want +got):\n%s", d)
	}
	want := []changes.Entry{{Curve: "tx", Key: 1, Original: 1, Final: 3}}
	if d := cmp.Diff(want, recs[0].Entries); d != "" {
		t.Errorf("entries (-want +got):\n%s", d)
	}
	if _, err := j.Redo("shot.yaml", d, nil); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("redo after new edit = %v", err)
	}
}

func TestJournalRefusesChangedScene(t *testing.T) {
	j := openJournal(t)
	d := doc{"tx[1]": 0}
	appendEdit(t, j, d, 1)

	d["tx[1]"] = 7 // edited outside the journal
	if _, err := j.Undo("shot.yaml", d, nil); !errors.Is(err, ErrSceneChanged) {
		t.Errorf("Undo = %v, want ErrSceneChanged", err)
	}
	if d["tx[1]"] != 7 {
		t.Errorf("refused undo still wrote: %g", d["tx[1]"])
	}
}

func TestJournalScopesByScene(t *testing.T) {
	j := openJournal(t)
	d := doc{"tx[1]": 0}
	appendEdit(t, j, d, 1)
	if _, err := j.Undo("other.yaml", d, nil); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo on other scene = %v", err)
	}
}

func TestJournalPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	d := doc{"tx[1]": 0}
	appendEdit(t, j, d, 4)
	j.Close()

	j, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	if _, err := j.Undo("shot.yaml", d, nil); err != nil {
		t.Fatalf("Undo after reopen: %v", err)
	}
	if d["tx[1]"] != 0 {
		t.Errorf("value = %g, want 0", d["tx[1]"])
	}
}

func TestJournalCommitFailure(t *testing.T) {
	j := openJournal(t)
	d := doc{"tx[1]": 0}
	appendEdit(t, j, d, 1)

	failed := errors.New("disk full")
	fail := func() error { return failed }

	// a failed append leaves neither the record nor the dropped redo branch
	if _, err := j.Undo("shot.yaml", d, nil); err != nil {
		t.Fatal(err)
	}
	before, _ := d.Digest()
	c := edit(d, 5)
	after, _ := d.Digest()
	_, err := j.Append(Record{Scene: "shot.yaml", Factor: 5, Before: before, After: after, Entries: c.Entries()}, fail)
	if !errors.Is(err, failed) {
		t.Fatalf("Append = %v, want commit error", err)
	}
	c.Undo()
	recs, _ := j.List("shot.yaml", 0)
	if len(recs) != 1 || !recs[0].Undone || recs[0].Factor != 1 {
		t.Fatalf("journal after failed append: %+v", recs)
	}

	// a failed redo keeps the record undone and the document untouched
	if _, err := j.Redo("shot.yaml", d, fail); !errors.Is(err, failed) {
		t.Fatalf("Redo = %v, want commit error", err)
	}
	if d["tx[1]"] != 0 {
		t.Errorf("value after failed redo = %g, want 0", d["tx[1]"])
	}
	if _, err := j.Redo("shot.yaml", d, nil); err != nil {
		t.Fatalf("Redo after failure: %v", err)
	}

	// a failed undo keeps the record live and the document untouched
	if _, err := j.Undo("shot.yaml", d, fail); !errors.Is(err, failed) {
		t.Fatalf("Undo = %v, want commit error", err)
	}
	if d["tx[1]"] != 1 {
		t.Errorf("value after failed undo = %g, want 1", d["tx[1]"])
	}
	recs, _ = j.List("shot.yaml", 0)
	if recs[0].Undone {
		t.Error("record marked undone after failed undo")
	}
	if _, err := j.Undo("shot.yaml", d, nil); err != nil {
		t.Fatalf("Undo after failure: %v", err)
	}
}
