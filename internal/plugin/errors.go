package plugin

import "errors"

// Plugin system errors.
var (
	// ErrMissingFields is returned when a manifest omits required
	// fields; the wrapped message names them.
	ErrMissingFields = errors.New("manifest missing required fields")

	// ErrInvalidName is returned when a plugin name is not lowercase
	// alphanumeric/underscore starting with a letter.
	ErrInvalidName = errors.New("invalid plugin name")

	// ErrInvalidVersion is returned when a manifest version is not a
	// dotted triple of non-negative integers.
	ErrInvalidVersion = errors.New("invalid plugin version")

	// ErrInvalidEntryPoint is returned when entry_point is not of the
	// form "module.path:callable".
	ErrInvalidEntryPoint = errors.New("invalid entry_point")

	// ErrMalformedVersion is returned by the version parser for
	// anything that is not a dotted triple.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrIncompatibleVersion is returned when a plugin demands a newer
	// manager than the one running.
	ErrIncompatibleVersion = errors.New("plugin requires newer manager")

	// ErrModuleNotFound is returned when the entry point's module file
	// does not exist in the plugin directory.
	ErrModuleNotFound = errors.New("entry module not found")

	// ErrCallableNotFound is returned when the loaded module does not
	// define the named handler.
	ErrCallableNotFound = errors.New("entry callable not found")

	// ErrSchemaViolation is returned when a manifest fails structural
	// schema validation.
	ErrSchemaViolation = errors.New("manifest schema violation")
)
