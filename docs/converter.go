package docs

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/vitalvas/apispec/annotation"
	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/openapi"
	"github.com/vitalvas/apispec/schema"
	"github.com/vitalvas/apispec/view"
	"github.com/vitalvas/apispec/webargs"
)

// ErrNoRoutes is returned when an endpoint has no registered routes.
var ErrNoRoutes = errors.New("docs: endpoint has no routes")

// OperationPath documents one route of a target.
type OperationPath struct {
	Target Target
	Path   string
	// Operations are keyed by lower-case HTTP method.
	Operations map[string]*openapi.Operation
}

// Converter turns routes and view annotations into OpenAPI operations.
type Converter struct {
	Router          *mux.Router
	ExcludeOptions  bool
	DefaultLocation webargs.Location
}

// NewConverter creates a converter reading routes from r.
func NewConverter(r *mux.Router, cfg Config) *Converter {
	loc := cfg.DefaultLocation
	if loc == "" {
		loc = webargs.DefaultLocation
	}
	return &Converter{
		Router:          r,
		ExcludeOptions:  cfg.excludeOptions(),
		DefaultLocation: loc,
	}
}

// EndpointFor returns the endpoint a target is registered under: endpoint,
// or the lowercase target name, prefixed with "<blueprint>." when set.
func EndpointFor(t Target, endpoint, blueprint string) string {
	if endpoint == "" {
		endpoint = strings.ToLower(t.EndpointName())
	}
	if blueprint != "" {
		endpoint = blueprint + "." + endpoint
	}
	return endpoint
}

// Convert documents every route of the target's endpoint. Component
// schemas are collected in g.
func (c *Converter) Convert(g *openapi.SchemaGenerator, t Target, endpoint, blueprint string) ([]OperationPath, error) {
	name := EndpointFor(t, endpoint, blueprint)
	routes := c.Router.Endpoint(name)
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoRoutes, name)
	}

	p, err := parent(t)
	if err != nil {
		return nil, err
	}

	paths := make([]OperationPath, 0, len(routes))
	for _, route := range routes {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil, err
		}

		ops := make(map[string]*openapi.Operation)
		for method, v := range operations(t, route) {
			if method == http.MethodHead || (method == http.MethodOptions && c.ExcludeOptions) {
				continue
			}

			op, err := c.operation(g, route, v, p)
			if err != nil {
				return nil, fmt.Errorf("docs: %s %s: %w", method, tpl, err)
			}
			ops[strings.ToLower(method)] = op
		}

		paths = append(paths, OperationPath{
			Target:     t,
			Path:       PathFromTemplate(tpl),
			Operations: ops,
		})
	}
	return paths, nil
}

// operation merges responses, parameters and request body derived from the
// view annotations with its documentation options. Derived values win over
// documentation options with the same key. Route parameters already
// declared by an argument schema are not repeated.
func (c *Converter) operation(g *openapi.SchemaGenerator, route *mux.Route, v *view.View, p any) (*openapi.Operation, error) {
	docs := annotation.MergeOptions(annotation.Resolve(v.Annotations(), annotation.Docs, p).Options)
	overrides, _ := docs["params"].(map[string]any)
	delete(docs, "params")

	responses, err := c.responses(g, v, p)
	if err != nil {
		return nil, err
	}

	params, body, err := c.arguments(g, v, p)
	if err != nil {
		return nil, err
	}

	pathParams, err := RouteParams(route, overrides)
	if err != nil {
		return nil, err
	}
	for _, pp := range pathParams {
		if !slices.ContainsFunc(params, func(p *openapi.Parameter) bool {
			return p.Name == pp.Name && p.In == pp.In
		}) {
			params = append(params, pp)
		}
	}

	op := map[string]any{"responses": responses}
	if len(params) > 0 {
		op["parameters"] = params
	}
	if body != nil {
		op["requestBody"] = body
	}

	return openapi.Decode(annotation.MergeRecursive(op, docs))
}

func (c *Converter) responses(g *openapi.SchemaGenerator, v *view.View, p any) (map[string]any, error) {
	ann := annotation.Resolve(v.Annotations(), annotation.Schemas, p)
	merged := annotation.MergeOptions(ann.Options)

	out := make(map[string]any, len(merged))
	for code, raw := range merged {
		entry, _ := raw.(map[string]any)

		desc, _ := entry["description"].(string)
		if desc == "" {
			desc = statusDescription(code)
		}
		resp := map[string]any{"description": desc}

		s, err := schema.Resolve(entry["schema"], nil)
		if err != nil {
			return nil, err
		}
		if s != nil && !schema.IsNoContent(s) {
			resp["content"] = map[string]any{
				"application/json": map[string]any{"schema": generate(g, s)},
			}
		}
		out[code] = resp
	}

	if len(out) == 0 {
		out["default"] = map[string]any{"description": statusDescription("default")}
	}
	return out, nil
}

// arguments converts argument annotations into parameters and a request
// body, in precedence order. Body locations share one request body.
func (c *Converter) arguments(g *openapi.SchemaGenerator, v *view.View, p any) ([]*openapi.Parameter, map[string]any, error) {
	ann := annotation.Resolve(v.Annotations(), annotation.Args, p)

	var (
		params  []*openapi.Parameter
		body    map[string]any
		content map[string]any
	)
	for _, opt := range ann.Options {
		s, err := schema.Resolve(opt["args"], nil)
		if err != nil {
			return nil, nil, err
		}
		if s == nil {
			continue
		}

		loc := webargs.OptionLocation(opt)
		if loc == "" {
			loc = c.DefaultLocation
		}
		if !loc.Valid() {
			return nil, nil, fmt.Errorf("%w: %q", webargs.ErrUnknownLocation, loc)
		}

		if !loc.IsBody() {
			params = append(params, fieldParams(g, s, loc)...)
			continue
		}

		if body == nil {
			content = map[string]any{}
			body = map[string]any{"content": content}
		}
		mt := mediaType(loc)
		if _, ok := content[mt]; ok {
			continue
		}
		content[mt] = map[string]any{"schema": generate(g, s)}
		if obj := objectSchema(g, s); obj != nil && len(obj.Required) > 0 {
			body["required"] = true
		}
	}
	return params, body, nil
}

func mediaType(loc webargs.Location) string {
	if loc == webargs.Form {
		return "application/x-www-form-urlencoded"
	}
	return "application/json"
}

func statusDescription(code string) string {
	if n, err := strconv.Atoi(code); err == nil {
		if text := http.StatusText(n); text != "" {
			return text
		}
	}
	return "Default response"
}

// generate describes a schema. Schemas that cannot describe themselves
// are documented as any value.
func generate(g *openapi.SchemaGenerator, s schema.Schema) *openapi.Schema {
	if _, ok := s.(openapi.SchemaProvider); ok {
		return g.Generate(s)
	}
	return &openapi.Schema{}
}

// objectSchema returns the object schema of s, or of its items when s is
// a list schema.
func objectSchema(g *openapi.SchemaGenerator, s schema.Schema) *openapi.Schema {
	provider, ok := s.(openapi.SchemaProvider)
	if !ok {
		return nil
	}

	obj := g.Deref(provider.OpenAPISchema(g))
	if obj != nil && slices.Contains(obj.Type.Values(), "array") && obj.Items != nil {
		obj = g.Deref(obj.Items)
	}
	return obj
}

// fieldParams documents each field of s as a parameter in loc.
func fieldParams(g *openapi.SchemaGenerator, s schema.Schema, loc webargs.Location) []*openapi.Parameter {
	obj := objectSchema(g, s)
	if obj == nil {
		return nil
	}

	names := make([]string, 0, len(obj.Properties))
	for name := range obj.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]*openapi.Parameter, 0, len(names))
	for _, name := range names {
		prop := obj.Properties[name]
		params = append(params, &openapi.Parameter{
			Name:        name,
			In:          loc.OpenAPI(),
			Description: prop.Description,
			Required:    loc == webargs.Path || slices.Contains(obj.Required, name),
			Schema:      prop,
		})
	}
	return params
}
