package lua

import (
	"fmt"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a gopher-lua LState for plugin execution.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes all
// access from Go; hook dispatch is sequential, so in practice the lock
// is uncontended.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool
}

// NewState creates a Lua state with the full standard library open.
func NewState() *State {
	return &State{L: lua.NewState()}
}

// AddSearchPath prepends dir to the module search path so that
// `require` resolves modules inside the plugin directory first.
func (s *State) AddSearchPath(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	pkg, ok := s.L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return fmt.Errorf("package library unavailable")
	}

	patterns := filepath.Join(dir, "?.lua") + ";" + filepath.Join(dir, "?", "init.lua")
	current := lua.LVAsString(pkg.RawGetString("path"))
	if current != "" {
		patterns += ";" + current
	}
	pkg.RawSetString("path", lua.LString(patterns))
	return nil
}

// DoFile executes a Lua source file in this state.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua chunk in this state.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// HasFunction reports whether a global with the given name exists and
// is callable.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call invokes a global Lua function with the given Go arguments,
// converted through the Bridge. Return values from the function are
// discarded.
func (s *State) Call(name string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	fn := s.L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return fmt.Errorf("%w: %s", ErrNotAFunction, name)
	}

	bridge := NewBridge(s.L)
	return s.doWithRecovery(func() error {
		s.L.Push(fn)
		for _, arg := range args {
			s.L.Push(bridge.ToLua(arg))
		}
		return s.L.PCall(len(args), 0, nil)
	})
}

// Global returns the Go rendering of a global value, or nil when the
// global is unset. Useful for inspecting plugin state in tests.
func (s *State) Global(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	v := s.L.GetGlobal(name)
	if v == lua.LNil {
		return nil
	}
	return NewBridge(s.L).ToGo(v)
}

// doWithRecovery executes fn, converting panics from the interpreter
// into errors.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the interpreter. After Close, all other methods
// return ErrStateClosed or zero values.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
