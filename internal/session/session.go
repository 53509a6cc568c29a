// Package session persists hook events as per-session JSON logs.
//
// Every dispatched event is appended to an array in
// <dir>/<session_id>.json, so a session's full hook history can be
// replayed or inspected after the fact.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// ErrInvalidEvent is returned when an event document is not valid JSON.
var ErrInvalidEvent = errors.New("event is not valid JSON")

// unknownSession names the log file for events that carry no
// session_id.
const unknownSession = "unknown"

// DefaultDir resolves the session log directory: .hookline/sessions
// when the project carries a .hookline directory, otherwise the
// user-level location.
func DefaultDir() string {
	if info, err := os.Stat(".hookline"); err == nil && info.IsDir() {
		return filepath.Join(".hookline", "sessions")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".hookline", "sessions")
	}
	return filepath.Join(home, ".config", "hookline", "sessions")
}

// Log appends hook events to per-session files.
type Log struct {
	dir string
	log *zap.Logger
}

// NewLog creates a session log rooted at dir. An empty dir uses the
// default location; a nil logger discards diagnostics.
func NewLog(dir string, log *zap.Logger) *Log {
	if dir == "" {
		dir = DefaultDir()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{dir: dir, log: log}
}

// Dir returns the directory session files are written to.
func (l *Log) Dir() string {
	return l.dir
}

// Append adds one raw event document to the session file named by the
// event's session_id field. Events without a session_id land in the
// "unknown" session. A session file that has been corrupted is reset
// rather than poisoning every later append. Returns the file the
// event was written to.
func (l *Log) Append(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEvent, truncate(raw, 80))
	}

	sid := gjson.GetBytes(raw, "session_id").String()
	path := filepath.Join(l.dir, SanitizeID(sid)+".json")

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session dir: %w", err)
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read session file: %w", err)
		}
		existing = []byte("[]")
	}
	if !gjson.ValidBytes(existing) || !gjson.ParseBytes(existing).IsArray() {
		l.log.Warn("resetting corrupt session file", zap.String("path", path))
		existing = []byte("[]")
	}

	updated, err := sjson.SetRawBytes(existing, "-1", raw)
	if err != nil {
		return "", fmt.Errorf("failed to append event: %w", err)
	}
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return "", fmt.Errorf("failed to write session file: %w", err)
	}
	return path, nil
}

// Events returns the number of events recorded for a session.
func (l *Log) Events(sessionID string) (int, error) {
	path := filepath.Join(l.dir, SanitizeID(sessionID)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return len(gjson.ParseBytes(data).Array()), nil
}

// SanitizeID maps a session id onto a safe file name: letters, digits,
// dot, underscore and hyphen survive, everything else becomes an
// underscore. Empty ids and ids that would hide the file get the
// "unknown" name.
func SanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return unknownSession
	}
	return out
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
