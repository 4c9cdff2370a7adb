// Package schema provides the request and response schemas used by view
// annotations: field maps for ad-hoc arguments and struct schemas for typed
// payloads. Schemas load incoming data into plain maps for keyword argument
// injection and dump handler results into serializable values.
package schema

import (
	"fmt"
	"net/http"
)

// Schema loads request data and dumps response values.
type Schema interface {
	// Dump serializes v for the response body.
	Dump(v any) (any, error)
	// Load deserializes and validates request data. Schemas that are not
	// Many return a map[string]any.
	Load(data any) (any, error)
	// Many reports whether the schema handles lists of items.
	Many() bool
}

// Keyed is implemented by schemas that know their field names. Argument
// parsers use it to pick values from multi-valued sources.
type Keyed interface {
	Names() []string
	// Multiple reports whether the field collects repeated values.
	Multiple(name string) bool
}

// Factory builds a schema per request. The request is nil when the schema
// is built for documentation.
type Factory func(r *http.Request) Schema

// Resolve turns an annotation value into a schema. It accepts a Schema, a
// Factory or plain factory function, or Fields. A nil value resolves to nil.
func Resolve(v any, r *http.Request) (Schema, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case Schema:
		return s, nil
	case Factory:
		return s(r), nil
	case func(*http.Request) Schema:
		return s(r), nil
	case map[string]Field:
		return Fields(s), nil
	default:
		return nil, fmt.Errorf("schema: unsupported schema value %T", v)
	}
}

// NoContent marks a response without a body. Dump always yields nil.
var NoContent Schema = noContent{}

type noContent struct{}

func (noContent) Dump(any) (any, error) { return nil, nil }

func (noContent) Load(any) (any, error) { return map[string]any{}, nil }

func (noContent) Many() bool { return false }

// IsNoContent reports whether v describes an empty response body.
func IsNoContent(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(noContent)
	return ok
}
