package plugin

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/hookline/hookline/internal/hook"
)

// manifestSchemaTemplate is the structural schema applied to raw
// manifest documents on top of the field checks in Validate. It
// covers what Validate cannot see after decoding: wrong value types,
// priorities outside 0..100 and unknown hook names. The hooks enum is
// filled in from the known event types at compile time.
const manifestSchemaTemplate = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "version", "entry_point"],
  "properties": {
    "name": {"type": "string", "pattern": "^[a-z][a-z0-9_]*$"},
    "version": {"type": "string", "pattern": "^\\d+\\.\\d+\\.\\d+$"},
    "entry_point": {"type": "string"},
    "description": {"type": "string"},
    "author": {"type": "string"},
    "enabled": {"type": "boolean"},
    "priority": {"type": "integer", "minimum": 0, "maximum": 100},
    "hooks": {"type": "array", "items": {"enum": [%s]}},
    "min_manager_version": {"type": "string"},
    "config_file": {"type": "string"},
    "dependencies": {"type": "array", "items": {"type": "string"}}
  }
}`

var (
	schemaOnce     sync.Once
	manifestSchema *jsonschema.Schema
	schemaErr      error
)

// compiledManifestSchema compiles the manifest schema on first use.
// The compiled schema is shared; compilation failure is remembered
// and reported to every caller.
func compiledManifestSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		known := hook.Known()
		quoted := make([]string, len(known))
		for i, h := range known {
			quoted[i] = strconv.Quote(string(h))
		}
		text := fmt.Sprintf(manifestSchemaTemplate, strings.Join(quoted, ", "))

		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal manifest schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("plugin-manifest.json", doc); err != nil {
			schemaErr = fmt.Errorf("add manifest schema: %w", err)
			return
		}
		manifestSchema, schemaErr = compiler.Compile("plugin-manifest.json")
	})
	return manifestSchema, schemaErr
}

// validateManifestSchema applies the structural schema to the
// manifest's raw document. Validation is advisory hardening: if the
// schema cannot be compiled or the manifest has no raw document (it
// was built in code rather than parsed), the check passes so that the
// authoritative checks in Validate remain the gate.
func validateManifestSchema(m *Manifest) error {
	sch, err := compiledManifestSchema()
	if err != nil || len(m.raw) == 0 {
		return nil
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(m.raw))
	if err != nil {
		// Validate already rejected documents json.Unmarshal cannot read.
		return nil
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}
