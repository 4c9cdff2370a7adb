package view

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/vitalvas/apispec/annotation"
)

// Verbs lists the method names a resource dispatches by default.
var Verbs = []string{"get", "head", "post", "put", "patch", "delete", "options", "trace"}

// Constructor initializes a resource instance from construction arguments.
type Constructor func(inst *Instance, args []any, kwargs map[string]any) error

// ResourceOption configures a resource definition.
type ResourceOption func(*Resource) error

type method struct {
	view   *View
	static bool
}

// Resource is a class-like group of verb handlers sharing attributes and
// annotations. Resources extend other resources: annotations are copied
// down the hierarchy when the resource is built, and methods and
// attributes are looked up in method resolution order.
type Resource struct {
	name       string
	bases      []*Resource
	mro        []*Resource
	reg        *annotation.Registry
	attrs      map[string]any
	methods    map[string]*method
	order      []string
	allowed    []string
	ctor       Constructor
	decorators []Decorator
}

// Extends sets the base resources, highest precedence first.
func Extends(bases ...*Resource) ResourceOption {
	return func(r *Resource) error {
		for _, b := range bases {
			if b == nil {
				return fmt.Errorf("%w: nil base for resource %q", ErrConfiguration, r.name)
			}
		}
		r.bases = append(r.bases, bases...)
		return nil
	}
}

// Attr sets a class-level attribute, visible to annotation Refs.
func Attr(name string, value any) ResourceOption {
	return func(r *Resource) error {
		r.attrs[name] = value
		return nil
	}
}

// Method defines a handler bound to the resource instance, which is passed
// as the first positional argument.
func Method(name string, fn HandlerFunc, decorators ...Decorator) ResourceOption {
	return func(r *Resource) error {
		return r.addMethod(name, fn, false, decorators)
	}
}

// StaticMethod defines a handler that is not bound to an instance.
func StaticMethod(name string, fn HandlerFunc, decorators ...Decorator) ResourceOption {
	return func(r *Resource) error {
		return r.addMethod(name, fn, true, decorators)
	}
}

// AllowedMethods restricts the method names treated as verb handlers.
func AllowedMethods(names ...string) ResourceOption {
	return func(r *Resource) error {
		r.allowed = make([]string, len(names))
		for i, n := range names {
			r.allowed[i] = strings.ToLower(n)
		}
		return nil
	}
}

// WithConstructor sets the instance constructor.
func WithConstructor(fn Constructor) ResourceOption {
	return func(r *Resource) error {
		r.ctor = fn
		return nil
	}
}

// Decorators applies class-level decorators once the resource is built.
func Decorators(decorators ...Decorator) ResourceOption {
	return func(r *Resource) error {
		r.decorators = append(r.decorators, decorators...)
		return nil
	}
}

func (r *Resource) addMethod(name string, fn HandlerFunc, static bool, decorators []Decorator) error {
	key := strings.ToLower(name)
	if fn == nil {
		return fmt.Errorf("%w: nil method %q on resource %q", ErrConfiguration, name, r.name)
	}
	if _, ok := r.methods[key]; ok {
		return fmt.Errorf("%w: duplicate method %q on resource %q", ErrConfiguration, name, r.name)
	}

	r.methods[key] = &method{
		view:   Func(r.name+"."+key, fn, decorators...),
		static: static,
	}
	r.order = append(r.order, key)
	return nil
}

// NewResource builds a resource. Ancestor annotations are copied into the
// resource registry, and each verb method receives the annotations of
// every same-named method up the hierarchy, is bound to the instance
// unless static and is activated.
func NewResource(name string, opts ...ResourceOption) (*Resource, error) {
	r := &Resource{
		name:    name,
		reg:     annotation.NewRegistry(),
		attrs:   make(map[string]any),
		methods: make(map[string]*method),
	}

	var errs []error
	for _, opt := range opts {
		if err := opt(r); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	mro, err := linearize(r)
	if err != nil {
		return nil, err
	}
	r.mro = mro

	parents := make([]*annotation.Registry, 0, len(mro)-1)
	for _, p := range mro[1:] {
		parents = append(parents, p.reg)
	}
	r.reg.Inherit(parents...)

	names := r.HandlerNames()
	for _, key := range r.order {
		if !slices.Contains(names, key) {
			continue
		}

		own := r.methods[key]
		var regs []*annotation.Registry
		for _, p := range mro {
			if v, ok := p.Lookup(key); ok {
				regs = append(regs, v.reg)
			}
		}
		own.view.reg.Inherit(regs...)

		if !own.static {
			own.view.reg.SetMethod(true)
		}
		Activate(own.view)
	}

	Decorate(r, r.decorators...)
	return r, nil
}

// MustResource is like NewResource but panics on error.
func MustResource(name string, opts ...ResourceOption) *Resource {
	r, err := NewResource(name, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Annotations implements annotation.Annotated.
func (r *Resource) Annotations() *annotation.Registry {
	return r.reg
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return r.name
}

// EndpointName implements mux.EndpointNamer.
func (r *Resource) EndpointName() string {
	return r.name
}

// MRO returns the method resolution order, starting with r.
func (r *Resource) MRO() []*Resource {
	return slices.Clone(r.mro)
}

// HandlerNames returns the method names dispatched as verbs: the nearest
// AllowedMethods in the hierarchy, or Verbs.
func (r *Resource) HandlerNames() []string {
	for _, p := range r.mro {
		if p.allowed != nil {
			return slices.Clone(p.allowed)
		}
	}
	return slices.Clone(Verbs)
}

// Lookup returns the nearest definition of the named method.
func (r *Resource) Lookup(name string) (*View, bool) {
	key := strings.ToLower(name)
	for _, p := range r.mro {
		if m, ok := p.methods[key]; ok {
			return m.view, true
		}
	}
	return nil, false
}

// Attr returns the nearest definition of a class-level attribute.
func (r *Resource) Attr(name string) (any, bool) {
	for _, p := range r.mro {
		if v, ok := p.attrs[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Verbs returns the verb handlers the resource defines, in Verbs order.
func (r *Resource) Verbs() []string {
	var out []string
	names := r.HandlerNames()
	for _, verb := range Verbs {
		if !slices.Contains(names, verb) {
			continue
		}
		if _, ok := r.Lookup(verb); ok {
			out = append(out, verb)
		}
	}
	return out
}

// New creates an instance with the nearest constructor in the hierarchy.
func (r *Resource) New(args []any, kwargs map[string]any) (*Instance, error) {
	inst := &Instance{res: r, attrs: make(map[string]any)}
	for _, p := range r.mro {
		if p.ctor != nil {
			if err := p.ctor(inst, args, kwargs); err != nil {
				return nil, fmt.Errorf("view: construct %s: %w", r.name, err)
			}
			break
		}
	}
	return inst, nil
}

// AsView returns a handler that creates an instance per request and
// dispatches on the request method. HEAD falls back to GET; undefined
// verbs answer 405.
func (r *Resource) AsView(args []any, kwargs map[string]any) *ResourceView {
	return &ResourceView{res: r, args: args, kwargs: kwargs}
}

// ResourceView serves a resource.
type ResourceView struct {
	res    *Resource
	args   []any
	kwargs map[string]any
}

// Resource returns the served resource.
func (v *ResourceView) Resource() *Resource {
	return v.res
}

// Args returns the construction arguments.
func (v *ResourceView) Args() ([]any, map[string]any) {
	return v.args, v.kwargs
}

// Annotations implements annotation.Annotated.
func (v *ResourceView) Annotations() *annotation.Registry {
	return v.res.reg
}

// EndpointName implements mux.EndpointNamer.
func (v *ResourceView) EndpointName() string {
	return v.res.name
}

func (v *ResourceView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serve(w, r, func() (http.Handler, error) {
		m, ok := v.handler(r.Method)
		if !ok && r.Method == http.MethodHead {
			m, ok = v.handler(http.MethodGet)
		}
		if !ok {
			return v.methodNotAllowed(), nil
		}

		inst, err := v.res.New(v.args, v.kwargs)
		if err != nil {
			return nil, err
		}

		var args []any
		if m.reg.IsMethod() {
			args = append(args, inst)
		}
		return m.Invoke(NewCall(r, args...))
	})
}

func (v *ResourceView) handler(httpMethod string) (*View, bool) {
	name := strings.ToLower(httpMethod)
	if !slices.Contains(v.res.HandlerNames(), name) {
		return nil, false
	}
	return v.res.Lookup(name)
}

func (v *ResourceView) methodNotAllowed() http.Handler {
	verbs := v.res.Verbs()
	allow := make([]string, len(verbs))
	for i, verb := range verbs {
		allow[i] = strings.ToUpper(verb)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", strings.Join(allow, ", "))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

// Instance is a resource instance. It resolves annotation Refs against its
// own attributes first and the resource attributes second.
type Instance struct {
	res   *Resource
	attrs map[string]any
}

// Resource returns the instance's resource.
func (i *Instance) Resource() *Resource {
	return i.res
}

// Set stores an instance attribute.
func (i *Instance) Set(name string, value any) {
	i.attrs[name] = value
}

// Attr implements annotation.AttrSource.
func (i *Instance) Attr(name string) (any, bool) {
	if v, ok := i.attrs[name]; ok {
		return v, true
	}
	return i.res.Attr(name)
}

// Annotations implements annotation.Annotated with the resource registry,
// so calls bound to the instance also see class-level annotations.
func (i *Instance) Annotations() *annotation.Registry {
	return i.res.reg
}
