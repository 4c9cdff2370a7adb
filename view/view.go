package view

import (
	"net/http"

	"github.com/vitalvas/apispec/annotation"
	"github.com/vitalvas/apispec/mux"
)

// Call holds the arguments a handler is invoked with. Path variables are
// preloaded into Kwargs; wrappers add parsed arguments on top.
type Call struct {
	Request *http.Request
	Args    []any
	Kwargs  map[string]any
}

// NewCall creates a call for r with the route variables as keyword
// arguments and args as positional arguments.
func NewCall(r *http.Request, args ...any) *Call {
	vars := mux.Vars(r)
	kwargs := make(map[string]any, len(vars))
	for k, v := range vars {
		kwargs[k] = v
	}
	return &Call{
		Request: r,
		Args:    args,
		Kwargs:  kwargs,
	}
}

// Self returns the resource instance a method is bound to, or nil.
func (c *Call) Self() *Instance {
	if len(c.Args) == 0 {
		return nil
	}
	inst, _ := c.Args[0].(*Instance)
	return inst
}

// HandlerFunc is the signature of annotated handlers. The result may be a
// bare body, a Result carrying status and headers, or an http.Handler that
// is served as is.
type HandlerFunc func(c *Call) (any, error)

// View is an annotated handler function.
type View struct {
	name string
	fn   HandlerFunc
	reg  *annotation.Registry
}

// Func creates a view and applies decorators to it. Decorators are listed
// outermost first, so the first one ends up with the highest precedence.
func Func(name string, fn HandlerFunc, decorators ...Decorator) *View {
	v := &View{
		name: name,
		fn:   fn,
		reg:  annotation.NewRegistry(),
	}
	return Decorate(v, decorators...)
}

// Annotations implements annotation.Annotated.
func (v *View) Annotations() *annotation.Registry {
	return v.reg
}

// Name returns the view name.
func (v *View) Name() string {
	return v.name
}

// EndpointName implements mux.EndpointNamer.
func (v *View) EndpointName() string {
	return v.name
}

// Handler returns the undecorated handler function.
func (v *View) Handler() HandlerFunc {
	return v.fn
}

// Invoke runs the call through the wrapper selected by the view's wrapper
// annotations. A view that was never activated calls its handler directly
// and only formats the result.
func (v *View) Invoke(c *Call) (http.Handler, error) {
	if !v.reg.Wrapped() {
		out, err := v.fn(c)
		if err != nil {
			return nil, err
		}
		if h, ok := out.(http.Handler); ok {
			return h, nil
		}
		return respond(c, out, nil)
	}

	var instance any
	if v.reg.IsMethod() && len(c.Args) > 0 {
		instance = c.Args[0]
	}

	ann := annotation.Resolve(v.reg, annotation.Wrapper, instance)
	factory := NewStandard
	if f, ok := annotation.MergeOptions(ann.Options)["wrapper"].(WrapperFactory); ok && f != nil {
		factory = f
	}

	return factory(v, instance).Call(c)
}

// ServeHTTP invokes the view with the route variables as keyword arguments.
func (v *View) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func() (http.Handler, error) {
		return v.Invoke(NewCall(r))
	})
}

func serve(w http.ResponseWriter, r *http.Request, fn func() (http.Handler, error)) {
	h, err := fn()
	if err != nil {
		SettingsFrom(r.Context()).ErrorHandler(w, r, err)
		return
	}
	h.ServeHTTP(w, r)
}
