package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse decodes a workflow definition, rejecting unknown top-level fields.
func Parse(data []byte) (Definition, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	var def Definition
	if err := decoder.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("parse workflow: %w", err)
	}
	if def.ID == "" {
		return Definition{}, fmt.Errorf("parse workflow: missing id")
	}
	if def.Name == "" {
		def.Name = "Untitled Workflow"
	}
	if def.Version == "" {
		def.Version = "1.0.0"
	}
	return def, nil
}
