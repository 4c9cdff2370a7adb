package view

import (
	"maps"
	"strconv"

	"github.com/vitalvas/apispec/annotation"
	"github.com/vitalvas/apispec/schema"
	"github.com/vitalvas/apispec/webargs"
)

// Decorator attaches annotations to a view or a resource.
type Decorator func(target annotation.Annotated)

// Decorate applies decorators to target, last listed first, and returns
// target. Since each decorator prepends its annotation, the first listed
// decorator takes precedence.
func Decorate[T annotation.Annotated](target T, decorators ...Decorator) T {
	for i := len(decorators) - 1; i >= 0; i-- {
		decorators[i](target)
	}
	return target
}

// Option tunes a decorator.
type Option func(*options)

type options struct {
	location    webargs.Location
	code        int
	description string
	inherit     annotation.Flag
	apply       annotation.Flag
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Location sets where UseKwargs reads arguments from.
func Location(loc webargs.Location) Option {
	return func(o *options) { o.location = loc }
}

// Code sets the status code MarshalWith applies to.
func Code(code int) Option {
	return func(o *options) { o.code = code }
}

// Description sets the MarshalWith response description.
func Description(text string) Option {
	return func(o *options) { o.description = text }
}

// Inherit controls whether annotations from ancestors are kept.
func Inherit(v bool) Option {
	return func(o *options) { o.inherit = annotation.FlagOf(v) }
}

// Apply controls whether the annotation takes effect when called.
// Disabled annotations are still documented.
func Apply(v bool) Option {
	return func(o *options) { o.apply = annotation.FlagOf(v) }
}

// UseKwargs parses arguments with args and merges them into the call's
// keyword arguments. args is a schema.Schema, a schema.Factory, a
// schema.Fields map or an annotation.Ref to one of those.
func UseKwargs(args any, opts ...Option) Decorator {
	o := newOptions(opts)
	kwargs := map[string]any{}
	if o.location != "" {
		kwargs["location"] = o.location
	}

	return func(target annotation.Annotated) {
		Annotate(target, annotation.Args, []annotation.Option{{
			"args":   args,
			"kwargs": kwargs,
		}}, o.inherit, o.apply)
		Activate(target)
	}
}

// MarshalWith dumps results through s. Without Code the schema applies to
// every status without its own schema. A nil schema marks an empty body.
func MarshalWith(s any, opts ...Option) Decorator {
	o := newOptions(opts)
	if s == nil {
		s = schema.NoContent
	}

	key := "default"
	if o.code != 0 {
		key = strconv.Itoa(o.code)
	}

	return func(target annotation.Annotated) {
		Annotate(target, annotation.Schemas, []annotation.Option{{
			key: map[string]any{
				"schema":      s,
				"description": o.description,
			},
		}}, o.inherit, o.apply)
		Activate(target)
	}
}

// Doc attaches operation documentation such as tags, summary, description
// and params overrides. Only the Inherit option is honored.
func Doc(values map[string]any, opts ...Option) Decorator {
	o := newOptions(opts)
	doc := maps.Clone(values)
	if doc == nil {
		doc = map[string]any{}
	}

	return func(target annotation.Annotated) {
		Annotate(target, annotation.Docs, []annotation.Option{doc}, o.inherit, annotation.Unset)
		Activate(target)
	}
}

// WrapWith replaces the Standard wrapper for the decorated view.
func WrapWith(factory WrapperFactory) Decorator {
	return func(target annotation.Annotated) {
		Annotate(target, annotation.Wrapper, []annotation.Option{{
			"wrapper": factory,
		}}, annotation.Unset, annotation.Unset)
		Activate(target)
	}
}

// Annotate prepends an annotation to the target's category list.
func Annotate(target annotation.Annotated, c annotation.Category, opts []annotation.Option, inherit, apply annotation.Flag) {
	target.Annotations().Annotate(c, annotation.New(opts, inherit, apply))
}

// Activate marks a view as wrapped so calls go through its annotations.
// Resources are left unchanged. It reports whether the target was newly
// activated.
func Activate(target annotation.Annotated) bool {
	if _, ok := target.(*Resource); ok {
		return false
	}
	return target.Annotations().MarkWrapped()
}
