package scripts

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestListDemos(t *testing.T) {
	list, err := List("")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	want := []string{"bounce.lua", "fireworks.lua", "sprites.lua"}
	if len(list) != len(want) {
		t.Fatalf("Expected %d demos, got %d", len(want), len(list))
	}
	for i, name := range want {
		if list[i].Name != name || !list[i].Embedded {
			t.Errorf("list[%d] = %+v, expected embedded %s", i, list[i], name)
		}
		if list[i].Title == "" || list[i].Summary == "" {
			t.Errorf("demo %s has no description", name)
		}
	}
	if list[0].Title != "Bounce" {
		t.Errorf("bounce title = %q", list[0].Title)
	}
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "b.lua"), []byte("-- Beta\nprint(1)\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "a.lua"), []byte("print(2)\n"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	list, err := List(dir)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	local := list[len(list)-2:]
	if local[0].Name != "a.lua" || local[1].Name != "b.lua" {
		t.Fatalf("local scripts = %+v", local)
	}
	if local[0].Title != "a" {
		t.Errorf("Title without comment = %q, expected a", local[0].Title)
	}
	if local[1].Title != "Beta" || local[1].Summary != "" {
		t.Errorf("Title/Summary = %q/%q", local[1].Title, local[1].Summary)
	}
	if local[0].Embedded || !filepath.IsAbs(local[0].Path) {
		t.Errorf("local script = %+v", local[0])
	}
}

func TestResolve(t *testing.T) {
	for _, name := range []string{"bounce", "bounce.lua"} {
		s, err := Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", name, err)
		}
		if !s.Embedded || s.Name != "bounce.lua" || s.ID() != "demo:bounce.lua" {
			t.Errorf("Resolve(%q) = %+v", name, s)
		}
		r, err := s.Open()
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		src, _ := io.ReadAll(r)
		r.Close()
		if !strings.Contains(string(src), "fw.inject") {
			t.Error("demo source does not inject callbacks")
		}
	}

	path := filepath.Join(t.TempDir(), "mine.lua")
	_ = os.WriteFile(path, []byte("-- Mine\n"), 0o644)
	s, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if s.Embedded || s.Path != path || s.Title != "Mine" || s.ID() != path {
		t.Errorf("Resolve(path) = %+v", s)
	}

	if _, err := Resolve("no-such-script"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() error = %v, expected ErrNotFound", err)
	}
}

func TestAssets(t *testing.T) {
	s, err := Resolve("sprites")
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	f, err := s.Assets().Open("logo.ppm")
	if err != nil {
		t.Fatalf("demo assets missing logo.ppm: %v", err)
	}
	f.Close()
}
