package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema is deliberately loose: only the envelope shape is pinned
// down, since the per-item data map is adaptive by design.
var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"extractedItems": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"itemName": map[string]any{"type": "string"},
				},
			},
		},
		"summary": map[string]any{"type": "object"},
	},
	"required": []any{"extractedItems"},
}

// validateResponse validates the extracted JSON span against the envelope
// schema before item processing.
func validateResponse(data []byte) error {
	b, err := json.Marshal(responseSchema)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("response.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
