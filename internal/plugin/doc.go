// Package plugin discovers, validates and dispatches hook plugins.
//
// Coding-agent sessions emit lifecycle events (session start, tool
// use, notifications, stop). This package routes each event to every
// plugin installed under a plugins root, so behavior can be extended
// by dropping a directory into place rather than editing hook
// scripts.
//
// # Quick Start
//
// Hook scripts use the package facade:
//
//	handled := plugin.Dispatch(string(hook.PreToolUse), map[string]any{
//	    "session_id": sid,
//	    "tool_name":  "Bash",
//	})
//
// Dispatch builds a shared Manager on first use and never panics into
// the caller. Embedders that need control construct their own:
//
//	m := plugin.NewManager(
//	    plugin.WithRoot(dir),
//	    plugin.WithLogger(log),
//	)
//	defer m.Close()
//	m.ExecuteHook(string(hook.SessionStart), payload)
//
// # Plugin Structure
//
// A plugin is a directory under the plugins root:
//
//	.hookline/plugins/my_notifier/
//	├── plugin.json      # Manifest (required)
//	├── src/
//	│   └── plugin.lua   # Entry module
//	└── lib/
//	    └── helper.lua   # require'able by the plugin
//
// Directories without a plugin.json are ignored; hidden directories
// and __pycache__ are never considered.
//
// # Manifest
//
// plugin.json names the plugin and its entry point:
//
//	{
//	  "name": "my_notifier",
//	  "version": "1.0.0",
//	  "entry_point": "src.plugin:handle_hook",
//	  "priority": 20,
//	  "hooks": ["PreToolUse", "PostToolUse"],
//	  "min_manager_version": "1.0.0"
//	}
//
// The entry point is "module.path:callable": dots become path
// separators under the plugin directory, and the callable is a global
// function the entry module must define. An omitted hooks list
// subscribes the plugin to every event. Lower priority runs earlier;
// ties are broken by name.
//
// # Dispatch
//
// Each event sweeps the registry sequentially in priority order. A
// handler that errors or panics is logged and skipped; the sweep
// always finishes and returns the count of handlers that succeeded.
// Broken plugin directories are reported as LoadIssues at scan time
// and excluded from the registry.
//
// # Example Plugin
//
//	-- src/plugin.lua
//	function handle_hook(hook_type, payload)
//	    if hook_type == "PreToolUse" then
//	        print("about to run " .. (payload.tool_name or "?"))
//	    end
//	end
//
// Handlers receive the event type and the event payload as a table.
// Raising an error marks the invocation failed without affecting
// other plugins.
package plugin
