package docs

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/openapi"
)

// PathFromTemplate converts a route template such as "/bands/{id:int}/"
// to the OpenAPI form "/bands/{id}/".
func PathFromTemplate(tpl string) string {
	path, _ := openapi.ParsePath(tpl)
	return path
}

// RouteParams returns the path parameters of a route, typed from the
// variable macros, followed by header and query parameters declared in
// overrides. An override keyed by a path variable is merged into that
// parameter. Route defaults become the schema default.
func RouteParams(route *mux.Route, overrides map[string]any) ([]*openapi.Parameter, error) {
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return nil, err
	}

	_, params := openapi.ParsePath(tpl)
	defaults := route.GetDefaults()

	for _, p := range params {
		if d, ok := defaults[p.Name]; ok {
			p.Schema.Default = typedDefault(p.Schema, d)
		}
		if o, ok := overrides[p.Name].(map[string]any); ok {
			if err := openapi.DecodeInto(normalizeParam(o), p); err != nil {
				return nil, fmt.Errorf("docs: param %q: %w", p.Name, err)
			}
		}
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		o, ok := overrides[key].(map[string]any)
		if !ok {
			continue
		}
		if in, _ := o["in"].(string); in != "header" && in != "query" {
			continue
		}

		p := &openapi.Parameter{Name: key}
		if err := openapi.DecodeInto(normalizeParam(o), p); err != nil {
			return nil, fmt.Errorf("docs: param %q: %w", key, err)
		}
		params = append(params, p)
	}

	return params, nil
}

// normalizeParam moves shorthand schema keys such as "type" into the
// parameter schema.
func normalizeParam(o map[string]any) map[string]any {
	out := make(map[string]any, len(o))
	var short map[string]any
	for k, v := range o {
		switch k {
		case "type", "format", "default", "enum":
			if short == nil {
				short = make(map[string]any)
			}
			short[k] = v
		default:
			out[k] = v
		}
	}
	if short == nil {
		return out
	}

	if s, ok := out["schema"].(map[string]any); ok {
		for k, v := range s {
			short[k] = v
		}
	}
	out["schema"] = short
	return out
}

// typedDefault converts a route default to the parameter's schema type.
// Values that do not convert stay strings.
func typedDefault(s *openapi.Schema, v string) any {
	types := s.Type.Values()
	if len(types) == 0 {
		return v
	}
	switch types[0] {
	case "integer":
		if n, err := cast.ToIntE(v); err == nil {
			return n
		}
	case "number":
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	return v
}
