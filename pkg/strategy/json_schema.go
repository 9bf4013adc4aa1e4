// Package strategy exports the JSON schema of strategy and engine configs.
package strategy

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
)

// DurationPattern matches the strings accepted by time.ParseDuration.
const DurationPattern = `^-?([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`

// TypeMapper returns the schema of t, or nil to let the reflector handle it.
type TypeMapper func(t reflect.Type) *jsonschema.Schema

var durationType = reflect.TypeOf(time.Duration(0))

// NewReflector returns a reflector that inlines every type. Durations are
// described as strings like "30s"; mappers are tried in order for the rest.
func NewReflector(mappers ...TypeMapper) *jsonschema.Reflector {
	return &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == durationType {
				return &jsonschema.Schema{Type: "string", Pattern: DurationPattern}
			}

			for _, mapper := range mappers {
				if schema := mapper(t); schema != nil {
					return schema
				}
			}

			return nil
		},
	}
}

// ToJSONSchema converts a struct to a JSON schema
func ToJSONSchema[T any](t T, mappers ...TypeMapper) (string, error) {
	schema := NewReflector(mappers...).Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
