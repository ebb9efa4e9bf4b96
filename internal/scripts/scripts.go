// Package scripts locates embedding scripts: the demos compiled into the
// binary and any *.lua files in a user directory.
package scripts

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed demos/*.lua demos/*.ppm
var demoFiles embed.FS

// ErrNotFound is returned by Resolve when no script matches.
var ErrNotFound = errors.New("scripts: script not found")

// Script is a runnable embedding script.
type Script struct {
	Name     string // file name, e.g. "bounce.lua"
	Title    string // first comment line, or the name without extension
	Summary  string // second comment line, may be empty
	Path     string // absolute path on disk; empty for demos
	Embedded bool
}

// Demos returns the embedded demo directory as a file system.
func Demos() fs.FS {
	sub, err := fs.Sub(demoFiles, "demos")
	if err != nil {
		panic(err) // embedded layout is fixed at compile time
	}
	return sub
}

// List returns the embedded demos followed by the scripts found in dir.
// An empty dir lists only the demos.
func List(dir string) ([]Script, error) {
	demos, err := listFS(Demos(), "", true)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return demos, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("scripts: %w", err)
	}
	local, err := listFS(os.DirFS(abs), abs, false)
	if err != nil {
		return nil, err
	}
	return append(demos, local...), nil
}

func listFS(fsys fs.FS, root string, embedded bool) ([]Script, error) {
	matches, err := fs.Glob(fsys, "*.lua")
	if err != nil {
		return nil, fmt.Errorf("scripts: %w", err)
	}
	sort.Strings(matches)

	list := make([]Script, 0, len(matches))
	for _, name := range matches {
		s := Script{Name: name, Embedded: embedded}
		if !embedded {
			s.Path = filepath.Join(root, name)
		}
		s.Title, s.Summary = describe(fsys, name)
		list = append(list, s)
	}
	return list, nil
}

// describe reads the leading "-- " comment lines of a script.
func describe(fsys fs.FS, name string) (title, summary string) {
	title = strings.TrimSuffix(name, filepath.Ext(name))
	f, err := fsys.Open(name)
	if err != nil {
		return title, ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	var lines []string
	for len(lines) < 2 && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "--") {
			break
		}
		lines = append(lines, strings.TrimSpace(strings.TrimPrefix(line, "--")))
	}
	if len(lines) > 0 && lines[0] != "" {
		title = lines[0]
	}
	if len(lines) > 1 {
		summary = lines[1]
	}
	return title, summary
}

// Resolve finds a script by path or by demo name. A name that exists on
// disk wins over a demo with the same name; "bounce" and "bounce.lua"
// both name the bounce demo.
func Resolve(name string) (Script, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		abs, err := filepath.Abs(name)
		if err != nil {
			return Script{}, fmt.Errorf("scripts: %w", err)
		}
		s := Script{Name: filepath.Base(abs), Path: abs}
		s.Title, s.Summary = describe(os.DirFS(filepath.Dir(abs)), s.Name)
		return s, nil
	}

	demo := name
	if filepath.Ext(demo) == "" {
		demo += ".lua"
	}
	if _, err := fs.Stat(Demos(), demo); err == nil {
		s := Script{Name: demo, Embedded: true}
		s.Title, s.Summary = describe(Demos(), demo)
		return s, nil
	}
	return Script{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Open returns the script source.
func (s Script) Open() (io.ReadCloser, error) {
	if s.Embedded {
		return Demos().Open(s.Name)
	}
	return os.Open(s.Path)
}

// Assets returns the file system the script's images are loaded from:
// the demo directory for demos, the script's own directory otherwise.
func (s Script) Assets() fs.FS {
	if s.Embedded {
		return Demos()
	}
	return os.DirFS(filepath.Dir(s.Path))
}

// ID is the name session history is recorded under.
func (s Script) ID() string {
	if s.Embedded {
		return "demo:" + s.Name
	}
	return s.Path
}
