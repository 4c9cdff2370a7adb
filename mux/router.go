package mux

import (
	"net/http"
	"strings"
	"sync"
)

var (
	defaultNotFoundHandler         = http.NotFoundHandler()
	defaultMethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
)

// Router registers routes to be matched and dispatches a handler.
//
// It implements the http.Handler interface, so it can be registered to serve
// requests:
//
//	r := mux.NewRouter()
//	r.HandleFunc("/", handler)
//	http.ListenAndServe(":8080", r)
type Router struct {
	// NotFoundHandler is called when no route matches.
	// If nil, http.NotFoundHandler() is used.
	NotFoundHandler http.Handler

	// MethodNotAllowedHandler is called when a route matches the path
	// but not the method. If nil, a default 405 handler is used.
	// Per RFC 9110 Section 15.5.6, the Allow header is always set before
	// this handler is invoked.
	MethodNotAllowedHandler http.Handler

	mu          sync.RWMutex
	routes      []*Route
	endpoints   map[string][]*Route
	blueprints  map[string]*Blueprint
	middlewares []MiddlewareFunc

	// handlerCache caches the middleware-wrapped handler per route
	// to avoid re-wrapping on every request.
	handlerCache sync.Map // map[*Route]http.Handler

	strictSlash bool
}

// NewRouter returns a new router instance.
func NewRouter() *Router {
	return &Router{
		endpoints:  make(map[string][]*Route),
		blueprints: make(map[string]*Blueprint),
	}
}

// ServeHTTP dispatches the handler registered in the matched route.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Dot segments are removed per RFC 3986 Section 5.2.4.
	if cleaned := cleanPath(req.URL.Path); cleaned != req.URL.Path {
		u := *req.URL
		u.Path = cleaned
		u.RawPath = ""
		req = req.Clone(req.Context())
		req.URL = &u
	}

	var match RouteMatch
	var handler http.Handler

	switch {
	case r.Match(req, &match):
		if redirect, ok := match.Route.slashRedirect(req); ok {
			// RFC 7538 Section 3: 308 preserves the request method.
			http.Redirect(w, req, redirect, http.StatusPermanentRedirect)
			return
		}
		handler = match.Handler
		if handler == nil {
			handler = defaultNotFoundHandler
		}
		req = setRouteContext(req, match.Route, match.Vars)
	case match.MatchErr == ErrMethodMismatch:
		// RFC 9110 Section 15.5.6: the origin server MUST generate an
		// Allow header field in a 405 response.
		w.Header().Set("Allow", strings.Join(allowedMethods(r, req), ", "))
		handler = r.MethodNotAllowedHandler
		if handler == nil {
			handler = defaultMethodNotAllowedHandler
		}
	default:
		handler = r.NotFoundHandler
		if handler == nil {
			handler = defaultNotFoundHandler
		}
	}

	handler.ServeHTTP(w, req)
}

// Match attempts to match the given request against the router's routes.
// A route whose path matches but whose methods do not is recorded as
// ErrMethodMismatch so the caller can answer 405 instead of 404.
func (r *Router) Match(req *http.Request, match *RouteMatch) bool {
	var methodMismatch bool

	for _, route := range r.snapshot() {
		if route.Match(req, match) {
			if match.Handler != nil && len(r.middlewares) > 0 {
				if cached, ok := r.handlerCache.Load(match.Route); ok {
					match.Handler = cached.(http.Handler)
				} else {
					wrapped := r.applyMiddleware(match.Handler)
					r.handlerCache.Store(match.Route, wrapped)
					match.Handler = wrapped
				}
			}
			return true
		}
		if match.MatchErr == ErrMethodMismatch {
			methodMismatch = true
		}
	}

	if methodMismatch {
		match.MatchErr = ErrMethodMismatch
		return false
	}

	match.MatchErr = ErrNotFound
	return false
}

// StrictSlash defines the trailing slash behavior for new routes.
// When true, if the route path is "/path/", accessing "/path" will redirect
// to "/path/" and vice versa.
func (r *Router) StrictSlash(value bool) *Router {
	r.strictSlash = value
	return r
}

// NewRoute creates an empty route for configuration.
func (r *Router) NewRoute() *Route {
	route := &Route{
		router:      r,
		strictSlash: r.strictSlash,
	}

	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()

	return route
}

// Handle registers a new route with a matcher for the URL path and handler.
func (r *Router) Handle(path string, handler http.Handler) *Route {
	return r.NewRoute().Path(path).Handler(handler)
}

// HandleFunc registers a new route with a matcher for the URL path and
// handler function.
func (r *Router) HandleFunc(path string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.NewRoute().Path(path).HandlerFunc(f)
}

// Path registers a new route with a matcher for the URL path.
func (r *Router) Path(tpl string) *Route {
	return r.NewRoute().Path(tpl)
}

// Methods registers a new route with a matcher for HTTP methods.
func (r *Router) Methods(methods ...string) *Route {
	return r.NewRoute().Methods(methods...)
}

// Endpoint returns the routes registered under the given endpoint name,
// in registration order. It returns nil when the endpoint is unknown.
func (r *Router) Endpoint(name string) []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := r.endpoints[name]
	if len(routes) == 0 {
		return nil
	}

	out := make([]*Route, len(routes))
	copy(out, routes)
	return out
}

// Use appends a MiddlewareFunc to the chain. Middleware is applied to
// matched handlers only.
func (r *Router) Use(mwf ...MiddlewareFunc) {
	r.middlewares = append(r.middlewares, mwf...)
	r.handlerCache.Clear()
}

// applyMiddleware wraps the handler with all registered middleware.
func (r *Router) applyMiddleware(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i].Middleware(handler)
	}
	return handler
}

func (r *Router) snapshot() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes
}

// addEndpoint indexes a route under an endpoint name.
func (r *Router) addEndpoint(name string, route *Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints[name] = append(r.endpoints[name], route)
}

// removeEndpoint drops a route from an endpoint index, used when a route is
// renamed.
func (r *Router) removeEndpoint(name string, route *Route) {
	r.mu.Lock()
	defer r.mu.Unlock()

	routes := r.endpoints[name]
	for i, rt := range routes {
		if rt == route {
			r.endpoints[name] = append(routes[:i:i], routes[i+1:]...)
			break
		}
	}
	if len(r.endpoints[name]) == 0 {
		delete(r.endpoints, name)
	}
}
