package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWorkers(t *testing.T) {
	if n := Workers(0); n < 1 {
		t.Errorf("Workers(0) = %d, want >= 1", n)
	}
	if n := Workers(1); n != 1 {
		t.Errorf("Workers(1) = %d, want 1", n)
	}
}

func TestFindLatestScene(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	files := []struct {
		name string
		age  time.Duration
	}{
		{"old.yaml", 2 * time.Hour},
		{"new.yml", time.Minute},
		{"newest.txt", 0},
	}
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		if err := os.WriteFile(p, []byte("version: \"1.0\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		mt := now.Add(-f.age)
		if err := os.Chtimes(p, mt, mt); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindLatestScene(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "new.yml"); got != want {
		t.Errorf("FindLatestScene = %s, want %s", got, want)
	}

	resolved, err := ResolveScene(dir)
	if err != nil || resolved != got {
		t.Errorf("ResolveScene(dir) = %s, %v", resolved, err)
	}
	file := filepath.Join(dir, "old.yaml")
	if resolved, _ := ResolveScene(file); resolved != file {
		t.Errorf("ResolveScene(file) = %s", resolved)
	}

	if _, err := FindLatestScene(t.TempDir()); err == nil {
		t.Error("expected error for a directory without scenes")
	}
}
