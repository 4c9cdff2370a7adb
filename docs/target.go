package docs

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/vitalvas/apispec/mux"
	"github.com/vitalvas/apispec/view"
)

// Target is a documented handler: a Function or a ResourceTarget.
type Target interface {
	// EndpointName is the default endpoint, before lowercasing.
	EndpointName() string

	isTarget()
}

// FunctionTarget documents a view function.
type FunctionTarget struct {
	View *view.View
}

// Function returns the target for a view function.
func Function(v *view.View) Target {
	return FunctionTarget{View: v}
}

// EndpointName implements Target.
func (t FunctionTarget) EndpointName() string {
	return t.View.EndpointName()
}

func (FunctionTarget) isTarget() {}

// ResourceTargetOf documents a resource. Args and Kwargs construct the
// instance class-level Refs are resolved against.
type ResourceTargetOf struct {
	Resource *view.Resource
	Args     []any
	Kwargs   map[string]any
}

// ResourceTarget returns the target for a resource and its construction
// arguments.
func ResourceTarget(r *view.Resource, args []any, kwargs map[string]any) Target {
	return ResourceTargetOf{Resource: r, Args: args, Kwargs: kwargs}
}

// EndpointName implements Target.
func (t ResourceTargetOf) EndpointName() string {
	return t.Resource.EndpointName()
}

func (ResourceTargetOf) isTarget() {}

// TargetOf converts a registered value into a Target. It accepts targets,
// views, resources and resource views.
func TargetOf(v any) (Target, error) {
	switch t := v.(type) {
	case Target:
		return t, nil
	case *view.View:
		if t != nil {
			return Function(t), nil
		}
	case *view.Resource:
		if t != nil {
			return ResourceTarget(t, nil, nil), nil
		}
	case *view.ResourceView:
		if t != nil {
			args, kwargs := t.Args()
			return ResourceTarget(t.Resource(), args, kwargs), nil
		}
	}
	return nil, fmt.Errorf("%w: cannot document %T", view.ErrConfiguration, v)
}

// operations maps the upper-case methods a route serves to the view
// handling each of them.
func operations(t Target, route *mux.Route) map[string]*view.View {
	methods, err := route.GetMethods()

	out := make(map[string]*view.View)
	switch t := t.(type) {
	case FunctionTarget:
		if err != nil {
			methods = []string{http.MethodGet}
		}
		for _, m := range methods {
			out[m] = t.View
		}

	case ResourceTargetOf:
		names := t.Resource.HandlerNames()
		if err != nil {
			methods = methods[:0]
			for _, verb := range t.Resource.Verbs() {
				methods = append(methods, strings.ToUpper(verb))
			}
		}
		for _, m := range methods {
			name := strings.ToLower(m)
			if !slices.Contains(names, name) {
				continue
			}
			if v, ok := t.Resource.Lookup(name); ok {
				out[m] = v
			}
		}
	}
	return out
}

// parent returns the object annotations are resolved against: nil for
// functions and a fresh instance for resources.
func parent(t Target) (any, error) {
	rt, ok := t.(ResourceTargetOf)
	if !ok {
		return nil, nil
	}
	return rt.Resource.New(rt.Args, rt.Kwargs)
}
