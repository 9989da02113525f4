package llms

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/invopop/jsonschema"
)

// SchemaFor reflects a JSON schema for T suitable for strict structured
// output. Required fields come from jsonschema tags on the struct.
func SchemaFor[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}

	var zero T
	schema := reflector.Reflect(&zero)

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to convert schema: %w", err)
	}

	return out, nil
}

// DecodeStructured unmarshals a model response into v, repairing common
// JSON defects (trailing commas, unquoted keys, truncated documents) first.
func DecodeStructured(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return fmt.Errorf("failed to repair model output: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("failed to decode model output: %w", err)
	}
	return nil
}
