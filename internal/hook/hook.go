// Package hook defines the lifecycle hook event types emitted by the
// coding-agent runtime and the payload key conventions their JSON
// payloads follow.
package hook

// Type identifies a lifecycle hook event. Matching is case-sensitive
// and verbatim; unknown types still dispatch (wildcard plugins see
// every event), only manifest schema validation constrains hook lists
// to the known set.
type Type string

const (
	SessionStart     Type = "SessionStart"
	SessionEnd       Type = "SessionEnd"
	PreToolUse       Type = "PreToolUse"
	PostToolUse      Type = "PostToolUse"
	Stop             Type = "Stop"
	SubagentStop     Type = "SubagentStop"
	Notification     Type = "Notification"
	PreCompact       Type = "PreCompact"
	UserPromptSubmit Type = "UserPromptSubmit"
)

// Conventional payload keys. Payloads are open JSON objects; none of
// these keys is required by the dispatcher.
const (
	KeySessionID = "session_id"
	KeySourceApp = "source_app"
	KeyEventName = "hook_event_name"
	KeyToolName  = "tool_name"
)

var known = []Type{
	SessionStart,
	SessionEnd,
	PreToolUse,
	PostToolUse,
	Stop,
	SubagentStop,
	Notification,
	PreCompact,
	UserPromptSubmit,
}

// Known returns the recognized event types in declaration order.
func Known() []Type {
	out := make([]Type, len(known))
	copy(out, known)
	return out
}

// IsKnown reports whether s names a recognized event type.
func IsKnown(s string) bool {
	for _, t := range known {
		if string(t) == s {
			return true
		}
	}
	return false
}
