package openapi

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

var schemaTypeType = reflect.TypeOf(SchemaType{})

// Decode converts a loosely typed operation description, such as merged
// documentation options, into an Operation. Keys follow the JSON field
// names of the OpenAPI objects. Values already holding the target type,
// such as *Schema, are used as they are. Unknown keys are ignored.
func Decode(m map[string]any) (*Operation, error) {
	op := &Operation{}
	if err := DecodeInto(m, op); err != nil {
		return nil, err
	}
	return op, nil
}

// DecodeInto decodes a loosely typed map into any OpenAPI object.
func DecodeInto(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		DecodeHook: mapstructure.DecodeHookFuncType(schemaTypeHook),
		Result:     out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("openapi: decode %T: %w", out, err)
	}
	return nil
}

// schemaTypeHook decodes "type" values given as a string or list of
// strings into SchemaType.
func schemaTypeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != schemaTypeType {
		return data, nil
	}

	switch v := data.(type) {
	case SchemaType:
		return v, nil
	case string:
		return TypeString(v), nil
	case []string:
		return TypeArray(v...), nil
	case []any:
		types := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("openapi: invalid schema type %v", item)
			}
			types = append(types, s)
		}
		return TypeArray(types...), nil
	}
	return data, nil
}
