package validation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// executeSchema is the JSON Schema for the subsidy execute payload. It
// enforces shape only; cryptographic checks stay in the orchestrator.
const executeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["beneficiary", "operation", "requested_units", "approval", "consumption"],
  "additionalProperties": false,
  "properties": {
    "beneficiary": {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
    "operation": {"type": "string", "pattern": "^0x[0-9a-fA-F]{64}$"},
    "requested_units": {"type": "integer", "minimum": 1},
    "timestamp": {"type": "string", "format": "date-time"},
    "approval": {"$ref": "#/$defs/signature"},
    "consumption": {"$ref": "#/$defs/signature"}
  },
  "$defs": {
    "signature": {
      "type": "object",
      "required": ["v", "r", "s"],
      "additionalProperties": false,
      "properties": {
        "v": {"type": "integer", "minimum": 27, "maximum": 28},
        "r": {"type": "string", "pattern": "^0x[0-9a-fA-F]{64}$"},
        "s": {"type": "string", "pattern": "^0x[0-9a-fA-F]{64}$"}
      }
    }
  }
}`

var compiledExecuteSchema = jsonschema.MustCompileString("subsidy/execute.json", executeSchema)

// ValidateExecutePayload checks a raw execute request body against the
// schema. Returns nil when the payload is well-shaped.
func ValidateExecutePayload(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("validation: invalid JSON: %w", err)
	}
	if err := compiledExecuteSchema.Validate(doc); err != nil {
		return fmt.Errorf("validation: payload rejected: %w", err)
	}
	return nil
}
