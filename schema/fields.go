package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/vitalvas/apispec/openapi"
)

var (
	errNotString  = errors.New("not a valid string")
	errNotInteger = errors.New("not a valid integer")
	errNotNumber  = errors.New("not a valid number")
	errNotBoolean = errors.New("not a valid boolean")
	errNotList    = errors.New("not a valid list")
)

// Kind is the value type of a Field.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindList:
		return "array"
	case KindObject:
		return "object"
	default:
		return ""
	}
}

// Field describes a single named argument. Field values are immutable;
// modifiers return a copy.
type Field struct {
	kind        Kind
	item        *Field
	nested      Fields
	required    bool
	hasDefault  bool
	def         any
	rules       string
	description string
}

// Str returns a string field.
func Str() Field { return Field{kind: KindString} }

// Int returns an integer field.
func Int() Field { return Field{kind: KindInteger} }

// Float returns a number field.
func Float() Field { return Field{kind: KindNumber} }

// Bool returns a boolean field.
func Bool() Field { return Field{kind: KindBoolean} }

// Raw returns a field that accepts any value unchanged.
func Raw() Field { return Field{kind: KindAny} }

// List returns a field holding a list of item values. List fields collect
// every value of a repeated query parameter, header or form key.
func List(item Field) Field {
	return Field{kind: KindList, item: &item}
}

// Nested returns a field holding an object described by fields.
func Nested(fields Fields) Field {
	return Field{kind: KindObject, nested: fields}
}

// Required marks the field as mandatory.
func (f Field) Required() Field {
	f.required = true
	return f
}

// WithDefault sets the value used when the field is absent.
func (f Field) WithDefault(v any) Field {
	f.hasDefault = true
	f.def = v
	return f
}

// Validate sets validator rules checked against the loaded value, using
// the go-playground/validator tag syntax, for example "min=1,max=10".
func (f Field) Validate(rules string) Field {
	f.rules = rules
	return f
}

// Describe sets the field description.
func (f Field) Describe(text string) Field {
	f.description = text
	return f
}

// Kind returns the field value type.
func (f Field) Kind() Kind { return f.kind }

// IsRequired reports whether the field is mandatory.
func (f Field) IsRequired() bool { return f.required }

// Default returns the default value and whether one is set.
func (f Field) Default() (any, bool) { return f.def, f.hasDefault }

// Description returns the field description.
func (f Field) Description() string { return f.description }

// load coerces a raw value to the field kind and validates it.
func (f Field) load(name string, v any, errs *ValidationError) (any, bool) {
	out, err := f.coerce(name, v, errs)
	if err != nil {
		errs.Add(name, err.Error())
		return nil, false
	}
	if out == nil {
		return nil, false
	}

	if f.rules != "" {
		if err := validatorInstance().Var(out, f.rules); err != nil {
			for _, msgs := range fromValidator(err, "").Fields {
				for _, msg := range msgs {
					errs.Add(name, msg)
				}
			}
			return nil, false
		}
	}
	return out, true
}

func (f Field) coerce(name string, v any, errs *ValidationError) (any, error) {
	switch f.kind {
	case KindString:
		out, err := cast.ToStringE(first(v))
		if err != nil {
			return nil, errNotString
		}
		return out, nil
	case KindInteger:
		return toInt(first(v))
	case KindNumber:
		out, err := cast.ToFloat64E(first(v))
		if err != nil {
			return nil, errNotNumber
		}
		return out, nil
	case KindBoolean:
		out, err := cast.ToBoolE(first(v))
		if err != nil {
			return nil, errNotBoolean
		}
		return out, nil
	case KindList:
		items, err := toSlice(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			loaded, ok := f.item.load(name+"."+strconv.Itoa(i), item, errs)
			if ok {
				out = append(out, loaded)
			}
		}
		return out, nil
	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid input type %T, expected object", v)
		}
		loaded, nerrs := f.nested.load(m)
		for field, msgs := range nerrs.Fields {
			for _, msg := range msgs {
				errs.Add(name+"."+field, msg)
			}
		}
		return loaded, nil
	default:
		return v, nil
	}
}

func toInt(v any) (any, error) {
	if s, ok := v.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, errNotInteger
		}
		return int(n), nil
	}
	if f, ok := v.(float64); ok && f != float64(int64(f)) {
		return nil, errNotInteger
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return nil, errNotInteger
	}
	return n, nil
}

// first unwraps single-valued sources such as query strings, where a
// scalar field takes the first value.
func first(v any) any {
	switch s := v.(type) {
	case json.Number:
		return s.String()
	case []string:
		if len(s) > 0 {
			return s[0]
		}
		return nil
	case []any:
		if len(s) > 0 {
			return s[0]
		}
		return nil
	}
	return v
}

func toSlice(v any) ([]any, error) {
	switch s := v.(type) {
	case []any:
		return s, nil
	case string:
		return []any{s}, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errNotList
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// Fields is a schema built from named fields. It loads maps of raw values
// into maps of typed values and dumps the named keys of a map or struct.
// Unknown keys are dropped.
type Fields map[string]Field

// Load implements Schema.
func (fs Fields) Load(data any) (any, error) {
	var m map[string]any
	switch d := data.(type) {
	case nil:
		m = map[string]any{}
	case map[string]any:
		m = d
	case map[string][]string:
		m = make(map[string]any, len(d))
		for k, v := range d {
			m[k] = v
		}
	default:
		errs := &ValidationError{}
		errs.Add("_schema", fmt.Sprintf("invalid input type %T", data))
		return nil, errs
	}

	out, errs := fs.load(m)
	if err := errs.errOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func (fs Fields) load(m map[string]any) (map[string]any, *ValidationError) {
	errs := &ValidationError{}
	out := make(map[string]any, len(fs))

	for _, name := range fs.Names() {
		f := fs[name]
		raw, present := m[name]
		if !present || raw == nil {
			switch {
			case f.hasDefault:
				out[name] = f.def
			case f.required:
				errs.Add(name, "missing data for required field")
			}
			continue
		}

		if v, ok := f.load(name, raw, errs); ok {
			out[name] = v
		}
	}
	return out, errs
}

// Dump implements Schema. Values missing from v are omitted.
func (fs Fields) Dump(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	src, err := toMap(v)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(fs))
	for name, f := range fs {
		raw, ok := src[name]
		if !ok {
			continue
		}
		if f.kind == KindObject && raw != nil {
			nested, err := f.nested.Dump(raw)
			if err != nil {
				return nil, err
			}
			raw = nested
		}
		out[name] = raw
	}
	return out, nil
}

// Many implements Schema.
func (fs Fields) Many() bool { return false }

// Names returns the field names in sorted order.
func (fs Fields) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Multiple reports whether the named field collects repeated values.
func (fs Fields) Multiple(name string) bool {
	f, ok := fs[name]
	return ok && f.kind == KindList
}

// OpenAPISchema implements openapi.SchemaProvider.
func (fs Fields) OpenAPISchema(g *openapi.SchemaGenerator) *openapi.Schema {
	s := &openapi.Schema{
		Type:       openapi.TypeString("object"),
		Properties: make(map[string]*openapi.Schema, len(fs)),
	}
	for _, name := range fs.Names() {
		f := fs[name]
		s.Properties[name] = f.OpenAPISchema(g)
		if f.required {
			s.Required = append(s.Required, name)
		}
	}
	return s
}

// OpenAPISchema describes a single field.
func (f Field) OpenAPISchema(g *openapi.SchemaGenerator) *openapi.Schema {
	s := &openapi.Schema{Description: f.description}
	if t := f.kind.String(); t != "" {
		s.Type = openapi.TypeString(t)
	}
	if f.hasDefault {
		s.Default = f.def
	}

	switch f.kind {
	case KindList:
		s.Items = f.item.OpenAPISchema(g)
	case KindObject:
		nested := f.nested.OpenAPISchema(g)
		s.Properties = nested.Properties
		s.Required = nested.Required
	}

	openapi.ApplyValidateTag(s, f.rules)
	return s
}
