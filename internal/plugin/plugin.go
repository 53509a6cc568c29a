package plugin

import (
	"go.uber.org/zap"
)

// Plugin pairs a validated manifest with its resolved hook handler.
// Instances are built by the loader and live in the manager's
// registry until the next reload.
type Plugin struct {
	manifest *Manifest
	handler  Handler
	module   Module
	log      *zap.Logger
}

func newPlugin(manifest *Manifest, handler Handler, module Module, log *zap.Logger) *Plugin {
	if log == nil {
		log = zap.NewNop()
	}
	return &Plugin{
		manifest: manifest,
		handler:  handler,
		module:   module,
		log:      log,
	}
}

// Name returns the manifest name, which is also the registry key.
func (p *Plugin) Name() string {
	return p.manifest.Name
}

// Version returns the manifest version string.
func (p *Plugin) Version() string {
	return p.manifest.Version
}

// Description returns the manifest description.
func (p *Plugin) Description() string {
	return p.manifest.Description
}

// Priority returns the dispatch priority; lower runs earlier.
func (p *Plugin) Priority() int {
	return p.manifest.Priority
}

// Enabled reports whether the plugin participates in dispatch.
func (p *Plugin) Enabled() bool {
	return p.manifest.Enabled
}

// Hooks returns a copy of the subscribed hook types; empty means all.
func (p *Plugin) Hooks() []string {
	return p.manifest.HookList()
}

// Manifest returns the plugin's manifest.
func (p *Plugin) Manifest() *Manifest {
	return p.manifest
}

// SupportsHook reports whether the plugin subscribes to the event
// type. An empty hook list is a wildcard; matching is exact and
// case-sensitive, so a typoed subscription simply never fires.
func (p *Plugin) SupportsHook(hookType string) bool {
	hooks := p.manifest.Hooks
	if len(hooks) == 0 {
		return true
	}
	for _, h := range hooks {
		if h == hookType {
			return true
		}
	}
	return false
}

// Execute runs the plugin's handler for one event and reports whether
// it ran successfully. Disabled plugins and unsubscribed events are
// no-ops. Handler errors and panics are contained here: they are
// logged with the plugin name and event type and never reach the
// dispatch loop.
func (p *Plugin) Execute(hookType string, payload map[string]any) (ok bool) {
	if !p.manifest.Enabled || !p.SupportsHook(hookType) {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("plugin handler panicked",
				zap.String("plugin", p.Name()),
				zap.String("hook", hookType),
				zap.Any("panic", r))
			ok = false
		}
	}()
	if err := p.handler(hookType, payload); err != nil {
		p.log.Error("plugin handler failed",
			zap.String("plugin", p.Name()),
			zap.String("hook", hookType),
			zap.Error(err))
		return false
	}
	return true
}

// Close releases the plugin's module resources. Plugins built without
// a module (tests, in-process handlers) close as a no-op.
func (p *Plugin) Close() error {
	if p.module == nil {
		return nil
	}
	return p.module.Close()
}
