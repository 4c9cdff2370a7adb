package mux

import (
	"net/http"
	"strings"
)

// Blueprint groups routes under a path prefix and an endpoint namespace.
// Endpoints of routes added through a blueprint are "<name>.<endpoint>".
type Blueprint struct {
	name   string
	prefix string
	router *Router
	hooks  []RuleFunc
}

// Blueprint returns the blueprint with the given name, creating it with the
// given path prefix on first use.
func (r *Router) Blueprint(name, prefix string) *Blueprint {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bp, ok := r.blueprints[name]; ok {
		return bp
	}

	bp := &Blueprint{
		name:   name,
		prefix: strings.TrimRight(prefix, "/"),
		router: r,
	}
	r.blueprints[name] = bp
	return bp
}

// Name returns the blueprint name.
func (b *Blueprint) Name() string {
	return b.name
}

// Prefix returns the blueprint path prefix.
func (b *Blueprint) Prefix() string {
	return b.prefix
}

// Router returns the router the blueprint adds routes to.
func (b *Blueprint) Router() *Router {
	return b.router
}

// NewRoute creates an empty route owned by the blueprint.
func (b *Blueprint) NewRoute() *Route {
	route := b.router.NewRoute()
	route.blueprint = b
	return route
}

// Handle registers a new route under the blueprint prefix.
func (b *Blueprint) Handle(path string, handler http.Handler) *Route {
	return b.NewRoute().Path(path).Handler(handler)
}

// OnRule registers a hook called for every rule added with AddRule,
// including rules added before the hook was registered.
func (b *Blueprint) OnRule(fn RuleFunc) {
	b.hooks = append(b.hooks, fn)

	for _, route := range b.router.snapshot() {
		if route.blueprint == b && route.endpoint != "" {
			fn(route, route.handler)
		}
	}
}

// AddRule registers a fully configured route and notifies the blueprint
// hooks. An empty endpoint falls back to the handler's endpoint name when
// it implements EndpointNamer.
func (b *Blueprint) AddRule(path, endpoint string, handler http.Handler, methods ...string) *Route {
	if endpoint == "" {
		if n, ok := handler.(EndpointNamer); ok {
			endpoint = strings.ToLower(n.EndpointName())
		}
	}

	route := b.Handle(path, handler)
	if len(methods) > 0 {
		route.Methods(methods...)
	}
	route.Endpoint(endpoint)
	if route.err != nil {
		return route
	}

	for _, fn := range b.hooks {
		fn(route, handler)
	}
	return route
}

// EndpointNamer is implemented by handlers that carry their own endpoint
// name.
type EndpointNamer interface {
	EndpointName() string
}
