package mux

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Route stores information to match a request and describe it.
type Route struct {
	router    *Router
	blueprint *Blueprint
	handler   http.Handler
	regexp    *routeRegexp
	methods   methodMatcher
	endpoint  string
	defaults  map[string]string
	err       error

	strictSlash bool
}

// Match matches this route against the request.
func (r *Route) Match(req *http.Request, match *RouteMatch) bool {
	if r.err != nil || r.regexp == nil {
		return false
	}

	if !r.regexp.Match(req) {
		return false
	}

	if r.methods != nil && !r.methods.Match(req) {
		match.MatchErr = ErrMethodMismatch
		return false
	}

	match.Route = r
	match.Handler = r.handler
	match.MatchErr = nil
	match.Vars = r.regexp.vars(req.URL.Path)

	for name, value := range r.defaults {
		if _, ok := match.Vars[name]; !ok {
			if match.Vars == nil {
				match.Vars = make(map[string]string, len(r.defaults))
			}
			match.Vars[name] = value
		}
	}

	return true
}

// Handler sets a handler for the route.
func (r *Route) Handler(handler http.Handler) *Route {
	if r.err == nil {
		r.handler = handler
	}
	return r
}

// HandlerFunc sets a handler function for the route.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	return r.Handler(http.HandlerFunc(f))
}

// Path adds a path matcher to the route per RFC 3986 Section 3.3.
// Routes created through a Blueprint get the blueprint prefix prepended.
func (r *Route) Path(tpl string) *Route {
	if r.err != nil {
		return r
	}

	if r.blueprint != nil {
		tpl = r.blueprint.prefix + tpl
	}

	rr, err := newRouteRegexp(tpl, r.strictSlash)
	if err != nil {
		r.err = err
		return r
	}
	r.regexp = rr
	return r
}

// Methods adds a method matcher to the route. Methods are matched against
// the request method token defined in RFC 9110 Section 9.
// Calling Methods multiple times replaces the previous method matcher.
func (r *Route) Methods(methods ...string) *Route {
	normalized := make(methodMatcher, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(m)
		if !slices.Contains(normalized, m) {
			normalized = append(normalized, m)
		}
	}
	r.methods = normalized
	return r
}

// Endpoint assigns the route to a named endpoint. Several routes may share
// an endpoint. Routes created through a Blueprint are registered as
// "<blueprint>.<name>". Calling Endpoint again moves the route.
func (r *Route) Endpoint(name string) *Route {
	if r.err != nil {
		return r
	}
	if name == "" {
		r.err = errors.New("mux: empty endpoint name")
		return r
	}

	if r.blueprint != nil {
		name = r.blueprint.name + "." + name
	}

	if r.endpoint != "" {
		r.router.removeEndpoint(r.endpoint, r)
	}
	r.endpoint = name
	r.router.addEndpoint(name, r)
	return r
}

// GetEndpoint returns the endpoint name of the route, if any.
func (r *Route) GetEndpoint() string {
	return r.endpoint
}

// Defaults sets values for route variables that the path does not bind.
// It accepts key/value pairs.
func (r *Route) Defaults(pairs ...string) *Route {
	if r.err != nil {
		return r
	}

	m, err := mapFromPairs(pairs...)
	if err != nil {
		r.err = err
		return r
	}

	if r.defaults == nil {
		r.defaults = make(map[string]string, len(m))
	}
	for k, v := range m {
		r.defaults[k] = v
	}
	return r
}

// GetDefaults returns a copy of the route defaults.
func (r *Route) GetDefaults() map[string]string {
	if len(r.defaults) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.defaults))
	for k, v := range r.defaults {
		out[k] = v
	}
	return out
}

// GetPathTemplate returns the template for the route path, if defined.
func (r *Route) GetPathTemplate() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.regexp == nil {
		return "", errors.New("mux: route doesn't have a path")
	}
	return r.regexp.template, nil
}

// GetMethods returns the methods the route matches against.
func (r *Route) GetMethods() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.methods == nil {
		return nil, errors.New("mux: route doesn't have methods")
	}
	out := make([]string, len(r.methods))
	copy(out, r.methods)
	return out, nil
}

// GetError returns any error that was set on the route.
func (r *Route) GetError() error {
	return r.err
}

// String describes the route for logs.
func (r *Route) String() string {
	tpl := "<nopath>"
	if r.regexp != nil {
		tpl = r.regexp.template
	}
	return fmt.Sprintf("%s %s (%s)", strings.Join(r.methods, ","), tpl, r.endpoint)
}

// slashRedirect returns the redirect target when strict slash handling
// matched a request whose trailing slash differs from the template.
func (r *Route) slashRedirect(req *http.Request) (string, bool) {
	if !r.strictSlash || r.regexp == nil {
		return "", false
	}

	tplHasSlash := strings.HasSuffix(r.regexp.template, "/")
	urlHasSlash := strings.HasSuffix(req.URL.Path, "/")
	if tplHasSlash == urlHasSlash || strings.TrimSuffix(req.URL.Path, "/") == "" {
		return "", false
	}

	u := *req.URL
	if tplHasSlash {
		u.Path += "/"
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String(), true
}

// methodMatcher matches the request method token (RFC 9110 Section 9)
// against a list of allowed methods.
type methodMatcher []string

func (m methodMatcher) Match(r *http.Request) bool {
	return slices.Contains(m, r.Method)
}
