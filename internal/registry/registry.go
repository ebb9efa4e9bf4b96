// Package registry provides a global registry for native capability modules.
// Modules register themselves in init() functions, allowing a session to
// install them into its scripting runtime without hardcoded dependencies.
package registry

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/vovakirdan/luaframe/internal/render"
)

// Env is what a session hands to a module when it is opened.
type Env struct {
	// Render is the session's render context. Modules draw through it.
	Render *render.Context

	// Logger receives module diagnostics.
	Logger *log.Logger

	// Inject stores the lifecycle callbacks found in tbl.
	// The error message is raised as a script error at the call site.
	Inject func(L *lua.LState, tbl *lua.LTable) error

	// FS resolves asset paths (images) passed by scripts. Nil disables asset loading.
	FS fs.FS

	// Seed makes randomized modules (particles) reproducible.
	Seed uint64
}

// Module is a native feature surface exposed to scripts as a requirable table.
type Module interface {
	// Name returns the dotted require name (e.g., "ejoy2d.shader.c").
	Name() string

	// Title returns a short description for listings.
	Title() string

	// Open returns the loader installed into package.preload.
	// The loader must push exactly one value: the module table.
	Open(env *Env) lua.LGFunction
}

// ModuleInfo contains metadata about a registered module.
type ModuleInfo struct {
	Name  string
	Title string
}

// Factory is a function that creates a module instance.
type Factory func() Module

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a module factory to the registry.
// Typically called from a module's init() function.
// Panics if a module with the same name is already registered.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("registry: module %q already registered", name))
	}

	factories[name] = f
	titles[name] = f().Title()
}

// List returns information about all registered modules, sorted by name.
func List() []ModuleInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ModuleInfo, 0, len(factories))
	for name := range factories {
		result = append(result, ModuleInfo{
			Name:  name,
			Title: titles[name],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Create instantiates a module by name.
func Create(name string) (Module, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("registry: unknown module %q", name)
	}

	return f(), nil
}

// Exists checks if a module with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}
