package plugin

import (
	"fmt"

	plua "github.com/hookline/hookline/internal/plugin/lua"
)

// Handler is a resolved plugin hook callable. It receives the event
// type and the event payload. A non-nil error marks the invocation as
// failed; dispatch logs it and moves on.
type Handler func(hookType string, payload map[string]any) error

// Module is a loaded plugin code module from which handlers are
// resolved.
type Module interface {
	// Callable resolves a named handler, reporting false when the
	// symbol is missing or not callable.
	Callable(name string) (Handler, bool)

	// Close releases the module's interpreter resources.
	Close() error
}

// Runtime turns plugin source files into Modules. Implementations
// must give every Load call its own isolated namespace so plugins
// cannot observe each other's globals.
type Runtime interface {
	// Ext is the source file extension for this runtime, dot included.
	Ext() string

	// Load executes the file at mainPath as a fresh module. pluginDir
	// is made resolvable for the module's own requires; name
	// identifies the owning plugin in errors.
	Load(mainPath, pluginDir, name string) (Module, error)
}

// LuaRuntime is the default Runtime. It executes .lua sources in an
// embedded interpreter, one fresh state per plugin.
type LuaRuntime struct{}

// NewLuaRuntime returns the embedded Lua runtime.
func NewLuaRuntime() *LuaRuntime {
	return &LuaRuntime{}
}

// Ext returns ".lua".
func (r *LuaRuntime) Ext() string {
	return ".lua"
}

// Load creates an isolated state, makes pluginDir requirable and runs
// the entry file in it.
func (r *LuaRuntime) Load(mainPath, pluginDir, name string) (Module, error) {
	state := plua.NewState()
	if err := state.AddSearchPath(pluginDir); err != nil {
		_ = state.Close()
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	if err := state.DoFile(mainPath); err != nil {
		_ = state.Close()
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	return &luaModule{state: state}, nil
}

// luaModule adapts a Lua state to the Module interface.
type luaModule struct {
	state *plua.State
}

func (m *luaModule) Callable(name string) (Handler, bool) {
	if !m.state.HasFunction(name) {
		return nil, false
	}
	return func(hookType string, payload map[string]any) error {
		return m.state.Call(name, hookType, payload)
	}, true
}

func (m *luaModule) Close() error {
	return m.state.Close()
}
