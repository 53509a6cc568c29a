package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/hookline/hookline/internal/hook"
	"github.com/hookline/hookline/internal/plugin"
	"github.com/hookline/hookline/internal/session"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch [hook-type]",
	Short: "Dispatch one hook event read from stdin",
	Long: `Read a JSON event payload from stdin and dispatch it to the installed
plugins. The hook type comes from the argument, or from the payload's
hook_event_name field when the argument is omitted.

Wired into an agent's hook configuration:

  { "command": "hookline dispatch PreToolUse" }

dispatch always exits 0: a malformed payload or a failing plugin must
never break the agent session driving it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDispatch,
}

var flagNoLog bool

func init() {
	dispatchCmd.Flags().BoolVar(&flagNoLog, "no-log", false, "skip the session log append")
}

func runDispatch(cmd *cobra.Command, args []string) error {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		zap.L().Warn("failed to read stdin", zap.Error(err))
		raw = nil
	}

	hookType := ""
	if len(args) == 1 {
		hookType = args[0]
	} else if gjson.ValidBytes(raw) {
		hookType = gjson.GetBytes(raw, hook.KeyEventName).String()
	}
	if hookType == "" {
		zap.L().Warn("no hook type in argument or payload, nothing to dispatch")
		return nil
	}
	if !hook.IsKnown(hookType) {
		// Unknown events still dispatch: wildcard plugins may want them.
		zap.L().Debug("unrecognized hook type", zap.String("hook", hookType))
	}

	payload := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			zap.L().Warn("malformed event payload, dispatching empty payload", zap.Error(err))
			payload = map[string]any{}
			raw = nil
		}
	}

	logSessionEvent(raw, hookType)

	m := newManager()
	defer m.Close()
	prev := plugin.SetDefault(m)
	defer plugin.SetDefault(prev)

	handled := plugin.Dispatch(hookType, payload)
	zap.L().Info("dispatched hook",
		zap.String("hook", hookType),
		zap.Int("handled", handled),
		zap.Int("plugins", m.Count()))
	return nil
}

// logSessionEvent appends the raw event to the per-session log,
// stamping the hook type into the document when the payload did not
// carry one. Logging failures are warnings, never dispatch failures.
func logSessionEvent(raw []byte, hookType string) {
	if flagNoLog || cfg.Session.Disabled || len(raw) == 0 {
		return
	}
	if !gjson.GetBytes(raw, hook.KeyEventName).Exists() {
		enriched, err := sjson.SetBytes(raw, hook.KeyEventName, hookType)
		if err == nil {
			raw = enriched
		}
	}
	if _, err := session.NewLog(cfg.Session.Dir, zap.L()).Append(raw); err != nil {
		zap.L().Warn("failed to log session event", zap.Error(err))
	}
}
