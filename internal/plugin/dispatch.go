package plugin

import (
	"sync"

	"go.uber.org/zap"
)

// defaultHolder guards the process-wide manager used by Dispatch.
// Hook scripts are short-lived processes that fire a handful of
// events; they share one lazily built manager instead of rescanning
// the plugins root per call.
var defaultHolder struct {
	mu  sync.Mutex
	mgr *Manager
}

// DefaultManager returns the shared manager, building it with default
// options and the global logger on first use.
func DefaultManager() *Manager {
	defaultHolder.mu.Lock()
	defer defaultHolder.mu.Unlock()
	if defaultHolder.mgr == nil {
		defaultHolder.mgr = NewManager(WithLogger(zap.L()))
	}
	return defaultHolder.mgr
}

// SetDefault replaces the shared manager and returns the previous
// one, which may be nil. Embedders use it to install a configured
// manager before the first Dispatch; tests use it to restore state.
func SetDefault(m *Manager) *Manager {
	defaultHolder.mu.Lock()
	defer defaultHolder.mu.Unlock()
	prev := defaultHolder.mgr
	defaultHolder.mgr = m
	return prev
}

// ResetDefault drops the shared manager so the next Dispatch rebuilds
// it from defaults.
func ResetDefault() {
	SetDefault(nil)
}

// Dispatch sends one hook event through the shared manager and
// returns the number of handlers that ran successfully. It never
// panics into the caller: any internal failure is logged and reported
// as zero handled, because a broken plugin layer must not break the
// hook script driving it.
func Dispatch(hookType string, payload map[string]any) (handled int) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("hook dispatch recovered",
				zap.String("hook", hookType),
				zap.Any("panic", r))
			handled = 0
		}
	}()
	return DefaultManager().ExecuteHook(hookType, payload)
}
