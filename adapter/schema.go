package adapter

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// NormalizeSchema converts a schema given as JSON text, raw bytes, a map, a
// *jsonschema.Schema or any JSON-marshalable value into a generic map.
func NormalizeSchema(schema interface{}) (map[string]interface{}, error) {
	switch value := schema.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return value, nil
	case string:
		return decodeSchema([]byte(value))
	case []byte:
		return decodeSchema(value)
	case json.RawMessage:
		return decodeSchema(value)
	default:
		schemaBytes, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal schema: %w", err)
		}
		return decodeSchema(schemaBytes)
	}
}

// ReflectSchema builds an inline JSON schema from a Go value's type.
func ReflectSchema(v interface{}) (map[string]interface{}, error) {
	reflector := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: false,
	}
	schema := reflector.Reflect(v)
	schema.Version = ""
	schema.ID = ""
	return NormalizeSchema(schema)
}

func decodeSchema(data []byte) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return result, nil
}
