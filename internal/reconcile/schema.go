package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ReportSchema returns the JSON schema of the report, derived from the Go
// types. Consumers of archived reports validate against this instead of
// guessing the shape.
func ReportSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[Report](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to derive report schema: %w", err)
	}
	return schema, nil
}

// ValidateReport checks a serialized report against the schema. verify
// runs this before writing its output file.
func ValidateReport(data []byte) error {
	schema, err := ReportSchema()
	if err != nil {
		return err
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("failed to resolve report schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("report is not valid JSON: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("report does not match its schema: %w", err)
	}
	return nil
}
