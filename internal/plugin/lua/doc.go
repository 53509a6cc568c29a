// Package lua provides the Lua runtime used to execute plugin hook
// handlers.
//
// Each plugin gets its own State, a wrapper around a gopher-lua LState
// that executes the plugin's entry module and invokes its handler
// functions. States are fully isolated from one another: globals defined
// by one plugin are never visible to another.
//
// # State
//
//	state := lua.NewState()
//	defer state.Close()
//
//	if err := state.AddSearchPath(pluginDir); err != nil {
//	    return err
//	}
//	if err := state.DoFile(mainPath); err != nil {
//	    return err
//	}
//	err := state.Call("handle_hook", "PreToolUse", payload)
//
// The full Lua standard library is open; plugins are trusted code the
// same way shell hook scripts are. AddSearchPath pins the plugin's own
// directory ahead of the default package.path so `require "lib"`
// resolves inside the plugin tree first.
//
// All interpreter entry points recover panics and return them as
// errors; a misbehaving handler can fail its own call but cannot take
// the process down.
//
// # Bridge
//
// The Bridge converts between the JSON data model and Lua values:
// maps become tables, slices become arrays, and on the way back
// contiguous integer-keyed tables become slices. Circular tables are
// broken to nil rather than recursing forever.
package lua
