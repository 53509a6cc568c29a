package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hookline/hookline/internal/hook"
	"github.com/hookline/hookline/internal/plugin"
)

var flagTestHook string

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect and manage installed plugins",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins in dispatch order",
	RunE:  runPluginsList,
}

var pluginsTestCmd = &cobra.Command{
	Use:   "test [event]",
	Short: "Fire a synthetic hook event at the installed plugins",
	Long: `Fire a synthetic event so plugin handlers can be exercised without
waiting for a real agent session.

Examples:
  hookline plugins test
  hookline plugins test SessionStart
  hookline plugins test --hook PostToolUse`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPluginsTest,
}

var pluginsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rescan the plugins directory and report the result",
	RunE:  runPluginsReload,
}

var pluginsValidateCmd = &cobra.Command{
	Use:   "validate <dir>",
	Short: "Run the full load pipeline on one plugin directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginsValidate,
}

var pluginsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload plugins whenever the plugins directory changes",
	RunE:  runPluginsWatch,
}

func init() {
	pluginsTestCmd.Flags().StringVar(&flagTestHook, "hook", string(hook.PreToolUse), "hook event to fire")
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsTestCmd)
	pluginsCmd.AddCommand(pluginsReloadCmd)
	pluginsCmd.AddCommand(pluginsValidateCmd)
	pluginsCmd.AddCommand(pluginsWatchCmd)
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	m := newManager()
	defer m.Close()

	plugins := m.Plugins()
	if len(plugins) == 0 {
		fmt.Printf("no plugins in %s\n", m.Root())
	}
	for _, p := range plugins {
		state := "enabled"
		if !p.Enabled() {
			state = "disabled"
		}
		hooks := "all hooks"
		if hs := p.Hooks(); len(hs) > 0 {
			hooks = strings.Join(hs, ",")
		}
		fmt.Printf("%-24s v%-10s priority %3d  %-8s  %s\n",
			p.Name(), p.Version(), p.Priority(), state, hooks)
		if flagVerbose && p.Description() != "" {
			fmt.Printf("    %s\n", p.Description())
		}
	}
	printIssues(m.Issues())
	return nil
}

func runPluginsTest(cmd *cobra.Command, args []string) error {
	m := newManager()
	defer m.Close()

	hookType := flagTestHook
	if len(args) == 1 {
		hookType = args[0]
	}
	payload := testPayload(hookType)
	handled := m.ExecuteHook(hookType, payload)
	fmt.Printf("%s: %d of %d plugins handled\n", hookType, handled, m.Count())
	return nil
}

// testPayload builds a synthetic event payload that looks like a real
// agent emission, with a unique session id so test runs do not pile
// into one session log.
func testPayload(hookType string) map[string]any {
	return map[string]any{
		hook.KeySessionID: "hookline-test-" + uuid.NewString(),
		hook.KeySourceApp: "hookline",
		hook.KeyEventName: hookType,
		hook.KeyToolName:  "TestTool",
	}
}

func runPluginsReload(cmd *cobra.Command, args []string) error {
	m := newManager()
	defer m.Close()

	n := m.Reload()
	fmt.Printf("%d plugins loaded from %s\n", n, m.Root())
	printIssues(m.Issues())
	return nil
}

func runPluginsValidate(cmd *cobra.Command, args []string) error {
	m := newManager()
	defer m.Close()

	p, issue := m.Loader().Load(args[0])
	if issue != nil {
		fmt.Printf("invalid [%s]: %v\n", issue.Stage, issue.Err)
		return errors.New("plugin failed validation")
	}
	defer p.Close()

	hooks := "all hooks"
	if hs := p.Hooks(); len(hs) > 0 {
		hooks = strings.Join(hs, ",")
	}
	fmt.Printf("ok: %s, priority %d, %s\n", p.Manifest(), p.Priority(), hooks)
	return nil
}

func runPluginsWatch(cmd *cobra.Command, args []string) error {
	m := newManager()
	defer m.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	root := m.Root()
	if err := watchTree(watcher, root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	fmt.Printf("watching %s (%d plugins)\n", root, m.Count())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Editors fire bursts of events per save; coalesce them into one
	// rescan.
	const settle = 250 * time.Millisecond
	debounce := time.NewTimer(settle)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
				!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = watcher.Add(ev.Name)
				}
			}
			debounce.Reset(settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			zap.L().Warn("watch error", zap.Error(err))

		case <-debounce.C:
			n := m.Reload()
			fmt.Printf("reloaded: %d plugins\n", n)
			printIssues(m.Issues())
			_ = watchTree(watcher, root)
		}
	}
}

// watchTree registers the root and its immediate plugin directories.
// fsnotify is not recursive, and manifest edits happen one level down.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	if err := watcher.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		// Re-adding an already watched directory is a no-op.
		_ = watcher.Add(filepath.Join(root, entry.Name()))
	}
	return nil
}

func printIssues(issues []plugin.LoadIssue) {
	for _, issue := range issues {
		fmt.Printf("skipped: %s\n", issue)
	}
}
