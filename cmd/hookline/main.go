// Package main implements the hookline CLI, the glue between
// coding-agent hook scripts and the plugin registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hookline/hookline/internal/logging"
	"github.com/hookline/hookline/internal/plugin"
	"github.com/hookline/hookline/internal/settings"
)

// Build information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	flagPluginsDir string
	flagConfig     string
	flagVerbose    bool
	flagQuiet      bool

	cfg *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hookline",
	Short: "Dispatch coding-agent hook events to plugins",
	Long: `hookline routes agent lifecycle events (SessionStart, PreToolUse,
Stop, ...) to plugins installed under a plugins directory. Hook
scripts pipe their JSON payload to "hookline dispatch"; the other
commands inspect and exercise the installed plugins.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPluginsDir, "plugins-dir", "", "plugins root directory")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "errors only")
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(dispatchCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads settings and installs the global logger before any
// command runs. dispatch is the hook-script path and must exit 0 no
// matter what, so there a broken configuration degrades to defaults
// instead of failing the command.
func setup(cmd *cobra.Command, args []string) error {
	err := configure()
	if err == nil {
		return nil
	}
	if cmd != dispatchCmd {
		return err
	}
	if cfg == nil {
		cfg = settings.Default()
	}
	log, lerr := logging.New(logLevel("info"), "console")
	if lerr != nil {
		log = logging.Nop()
	}
	zap.ReplaceGlobals(log)
	zap.L().Warn("broken configuration, dispatching with defaults", zap.Error(err))
	return nil
}

// configure loads settings and builds the configured logger. cfg
// stays nil when the settings themselves fail to load.
func configure() error {
	loaded, err := settings.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	log, err := logging.New(logLevel(cfg.Logging.Level), cfg.Logging.Format)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log)
	return nil
}

// logLevel applies the verbosity flags over the configured level.
func logLevel(base string) string {
	if flagVerbose {
		return "debug"
	}
	if flagQuiet {
		return "error"
	}
	return base
}

// pluginsRoot resolves the plugins directory: flag, then config, then
// the manager's built-in default.
func pluginsRoot() string {
	if flagPluginsDir != "" {
		return flagPluginsDir
	}
	return cfg.Plugins.Dir
}

func newManager() *plugin.Manager {
	return plugin.NewManager(
		plugin.WithRoot(pluginsRoot()),
		plugin.WithLogger(zap.L()),
	)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hookline %s (commit %s, built %s)\n", version, commit, date)
		fmt.Printf("manager version %s\n", plugin.ManagerVersion)
	},
}
