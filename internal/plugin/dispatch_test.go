package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestDispatchUsesInstalledManager(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "test_plugin", pluginManifest("test_plugin", 50), map[string]string{
		"src/plugin.lua": markerSource,
	})

	m := NewManager(WithRoot(root), WithLogger(zap.NewNop()))
	prev := SetDefault(m)
	t.Cleanup(func() {
		SetDefault(prev)
		_ = m.Close()
	})

	marker := filepath.Join(root, "marker.txt")
	if handled := Dispatch("Stop", map[string]any{"marker": marker}); handled != 1 {
		t.Fatalf("Dispatch() = %d, want 1", handled)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("plugin did not run through the facade: %v", err)
	}
}

func TestDispatchEmptyManagerReturnsZero(t *testing.T) {
	m := NewManager(WithRoot(t.TempDir()), WithLogger(zap.NewNop()))
	prev := SetDefault(m)
	t.Cleanup(func() {
		SetDefault(prev)
		_ = m.Close()
	})

	if handled := Dispatch("SessionStart", nil); handled != 0 {
		t.Errorf("Dispatch() = %d, want 0", handled)
	}
}

func TestDispatchRecoversFromPoisonedManager(t *testing.T) {
	// Nil registry entries panic inside the dispatch-order sort; the
	// facade reports zero instead of propagating.
	m := &Manager{
		log:     zap.NewNop(),
		plugins: map[string]*Plugin{"a": nil, "b": nil},
	}
	prev := SetDefault(m)
	t.Cleanup(func() { SetDefault(prev) })

	if handled := Dispatch("PreToolUse", nil); handled != 0 {
		t.Errorf("Dispatch() = %d, want 0", handled)
	}
}

func TestSetDefaultReturnsPrevious(t *testing.T) {
	a := NewManager(WithRoot(t.TempDir()), WithLogger(zap.NewNop()))
	b := NewManager(WithRoot(t.TempDir()), WithLogger(zap.NewNop()))
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})

	orig := SetDefault(a)
	t.Cleanup(func() { SetDefault(orig) })

	if got := SetDefault(b); got != a {
		t.Errorf("SetDefault() returned %p, want the previously installed manager", got)
	}
	if got := DefaultManager(); got != b {
		t.Error("DefaultManager() did not return the installed manager")
	}
}

func TestResetDefaultForcesRebuild(t *testing.T) {
	m := NewManager(WithRoot(t.TempDir()), WithLogger(zap.NewNop()))
	orig := SetDefault(m)
	t.Cleanup(func() {
		SetDefault(orig)
		_ = m.Close()
	})

	ResetDefault()
	rebuilt := DefaultManager()
	if rebuilt == m {
		t.Error("DefaultManager() returned the dropped manager after ResetDefault()")
	}
	SetDefault(orig)
	_ = rebuilt.Close()
}
