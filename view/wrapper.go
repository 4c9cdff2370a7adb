package view

import (
	"net/http"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/vitalvas/apispec/annotation"
	"github.com/vitalvas/apispec/schema"
	"github.com/vitalvas/apispec/webargs"
)

// Wrapper applies a view's annotations around one call.
type Wrapper interface {
	Call(c *Call) (http.Handler, error)
}

// WrapperFactory builds the wrapper for a view and the instance it is
// bound to. instance is nil for plain functions and static methods.
type WrapperFactory func(v *View, instance any) Wrapper

// Standard parses arguments, calls the handler and marshals its result.
// Custom wrappers can embed it and reuse CallView and MarshalResult.
type Standard struct {
	View     *View
	Instance any
}

// NewStandard is the default WrapperFactory.
func NewStandard(v *View, instance any) Wrapper {
	return &Standard{View: v, Instance: instance}
}

// Call implements Wrapper.
func (w *Standard) Call(c *Call) (http.Handler, error) {
	out, err := w.CallView(c)
	if err != nil {
		return nil, err
	}
	if h, ok := out.(http.Handler); ok {
		return h, nil
	}
	return w.MarshalResult(c, out)
}

// CallView parses every argument annotation in precedence order and calls
// the handler. Mappings are merged into the keyword arguments and lists
// loaded by Many schemas are appended to the positional arguments.
func (w *Standard) CallView(c *Call) (any, error) {
	if c.Kwargs == nil {
		c.Kwargs = make(map[string]any)
	}

	ann := annotation.Resolve(w.View.reg, annotation.Args, w.Instance)
	if ann.Apply.Enabled() {
		parser := SettingsFrom(c.Request.Context()).Parser

		for _, opt := range ann.Options {
			s, err := schema.Resolve(opt["args"], c.Request)
			if err != nil {
				return nil, usageError("%s: %v", w.View.name, err)
			}
			if s == nil {
				continue
			}

			parsed, err := parser.Parse(c.Request, s, webargs.OptionLocation(opt))
			if err != nil {
				return nil, err
			}
			if err := c.inject(s, parsed); err != nil {
				return nil, err
			}
		}
	}

	return w.View.fn(c)
}

// MarshalResult unpacks the handler result, dumps the body through the
// schema registered for the status code (or "default") and formats it.
func (w *Standard) MarshalResult(c *Call, out any) (http.Handler, error) {
	ann := annotation.Resolve(w.View.reg, annotation.Schemas, w.Instance)
	if !ann.Apply.Enabled() {
		return respond(c, out, nil)
	}
	return respond(c, out, annotation.MergeOptions(ann.Options))
}

func (c *Call) inject(s schema.Schema, parsed any) error {
	switch v := parsed.(type) {
	case map[string]any:
		for k, item := range v {
			c.Kwargs[k] = item
		}
		return nil
	case []any:
		if !s.Many() {
			return usageError("schema %T loaded a list without Many", s)
		}
		c.Args = append(c.Args, v...)
		return nil
	default:
		return usageError("schema %T loaded %T, expected a mapping", s, parsed)
	}
}

// respond builds the final response. schemas maps status codes to
// {"schema", "description"} entries; nil skips marshalling.
func respond(c *Call, out any, schemas map[string]any) (http.Handler, error) {
	body, status, header, err := Unpack(out)
	if err != nil {
		return nil, err
	}
	settings := SettingsFrom(c.Request.Context())
	if status == 0 {
		status = settings.DefaultStatus
	}

	entry, ok := schemas[strconv.Itoa(status)].(map[string]any)
	if !ok {
		entry, _ = schemas["default"].(map[string]any)
	}
	if entry != nil {
		s, err := schema.Resolve(entry["schema"], c.Request)
		if err != nil {
			return nil, usageError("%v", err)
		}
		if s != nil {
			if body, err = s.Dump(body); err != nil {
				return nil, err
			}
		}
	}

	resp, err := settings.Format(body)
	if err != nil {
		return nil, err
	}
	resp.Status = status

	for name, values := range header {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, usageError("invalid header name %q", name)
		}
		for _, value := range values {
			if !httpguts.ValidHeaderFieldValue(value) {
				return nil, usageError("invalid value for header %q", name)
			}
		}
		resp.Header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}

	return resp, nil
}
