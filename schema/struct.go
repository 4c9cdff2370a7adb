package schema

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/vitalvas/apispec/openapi"
)

// Option configures a struct schema.
type Option func(*structConfig)

type structConfig struct {
	only []string
	many bool
}

// Only restricts the schema to the named fields.
func Only(names ...string) Option {
	return func(c *structConfig) {
		c.only = append(c.only, names...)
	}
}

// Many makes the schema handle lists of T.
func Many() Option {
	return func(c *structConfig) {
		c.many = true
	}
}

// Struct is a schema backed by the struct type T. Field names follow json
// tags, values are decoded with weak typing and checked against validate
// tags.
type Struct[T any] struct {
	fields []structField
	many   bool
	subset bool
}

type structField struct {
	name     string
	index    []int
	multiple bool
	rules    string
}

// Of returns a schema for T.
func Of[T any](opts ...Option) *Struct[T] {
	var cfg structConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	fields := collectStructFields(reflect.TypeFor[T]())
	all := len(fields)
	if len(cfg.only) > 0 {
		fields = slices.DeleteFunc(fields, func(f structField) bool {
			return !slices.Contains(cfg.only, f.name)
		})
	}

	return &Struct[T]{fields: fields, many: cfg.many, subset: len(fields) != all}
}

// Many implements Schema.
func (s *Struct[T]) Many() bool { return s.many }

// Names returns the schema field names in declaration order.
func (s *Struct[T]) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Multiple reports whether the named field is a list.
func (s *Struct[T]) Multiple(name string) bool {
	for _, f := range s.fields {
		if f.name == name {
			return f.multiple
		}
	}
	return false
}

// Decode loads a single item into a T and validates it.
func (s *Struct[T]) Decode(data any) (T, error) {
	var out T

	m, ok := data.(map[string]any)
	if !ok {
		if data != nil {
			errs := &ValidationError{}
			errs.Add("_schema", fmt.Sprintf("invalid input type %T", data))
			return out, errs
		}
		m = map[string]any{}
	}

	if err := decode(s.filter(m), &out); err != nil {
		errs := &ValidationError{}
		errs.Add("_schema", err.Error())
		return out, errs
	}

	if s.subset {
		return out, s.validateFields(out)
	}
	if err := validateStruct(out); err != nil {
		return out, err
	}
	return out, nil
}

// validateFields checks the validate tags of the selected fields only.
func (s *Struct[T]) validateFields(v T) error {
	rv, ok := structValue(reflect.ValueOf(&v))
	if !ok {
		return nil
	}

	errs := &ValidationError{}
	for _, f := range s.fields {
		if f.rules == "" {
			continue
		}
		fv, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			continue
		}
		if err := validatorInstance().Var(fv.Interface(), f.rules); err != nil {
			for _, msgs := range fromValidator(err, "").Fields {
				for _, msg := range msgs {
					errs.Add(f.name, msg)
				}
			}
		}
	}
	return errs.errOrNil()
}

// Load implements Schema. A single item loads to a map holding the typed
// values of the keys present in data.
func (s *Struct[T]) Load(data any) (any, error) {
	if !s.many {
		return s.loadOne(data)
	}

	items, ok := data.([]any)
	if !ok {
		errs := &ValidationError{}
		errs.Add("_schema", fmt.Sprintf("invalid input type %T, expected list", data))
		return nil, errs
	}

	out := make([]any, 0, len(items))
	errs := &ValidationError{}
	for i, item := range items {
		loaded, err := s.loadOne(item)
		if err != nil {
			mergeErrors(errs, fmt.Sprintf("%d.", i), err)
			continue
		}
		out = append(out, loaded)
	}
	if err := errs.errOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Struct[T]) loadOne(data any) (map[string]any, error) {
	v, err := s.Decode(data)
	if err != nil {
		return nil, err
	}

	m, _ := data.(map[string]any)
	out := make(map[string]any, len(m))
	rv, ok := structValue(reflect.ValueOf(&v))
	if !ok {
		return out, nil
	}

	for _, f := range s.fields {
		if _, ok := m[f.name]; !ok {
			continue
		}
		fv, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			continue
		}
		out[f.name] = fv.Interface()
	}
	return out, nil
}

// Dump implements Schema. Structs and maps are reduced to the schema
// fields. A Many schema dumps each element of a slice.
func (s *Struct[T]) Dump(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if !s.many {
		return s.dumpOne(v)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("schema: cannot dump %T as a list", v)
	}

	out := make([]any, rv.Len())
	for i := range out {
		item, err := s.dumpOne(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

func (s *Struct[T]) dumpOne(v any) (map[string]any, error) {
	src, err := toMap(v)
	if err != nil {
		return nil, err
	}
	return s.filter(src), nil
}

func (s *Struct[T]) filter(m map[string]any) map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if v, ok := m[f.name]; ok {
			out[f.name] = v
		}
	}
	return out
}

// OpenAPISchema implements openapi.SchemaProvider. The full struct is
// referenced as a component; a field subset is described inline.
func (s *Struct[T]) OpenAPISchema(g *openapi.SchemaGenerator) *openapi.Schema {
	var zero T
	item := g.Generate(zero)

	if s.subset {
		full := g.Deref(item)
		if full != nil {
			subset := &openapi.Schema{
				Type:       full.Type,
				Properties: make(map[string]*openapi.Schema, len(s.fields)),
			}
			for _, f := range s.fields {
				if p, ok := full.Properties[f.name]; ok {
					subset.Properties[f.name] = p
				}
				if slices.Contains(full.Required, f.name) {
					subset.Required = append(subset.Required, f.name)
				}
			}
			item = subset
		}
	}

	if s.many {
		return &openapi.Schema{Type: openapi.TypeString("array"), Items: item}
	}
	return item
}

// Bind decodes loaded keyword arguments into a T.
func Bind[T any](kwargs map[string]any) (T, error) {
	var out T
	if err := decode(kwargs, &out); err != nil {
		return out, err
	}
	return out, nil
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		Result: out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func validateStruct(v any) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	if err := validatorInstance().Struct(v); err != nil {
		return fromValidator(err, "")
	}
	return nil
}

func mergeErrors(dst *ValidationError, prefix string, err error) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		dst.Add(strings.TrimSuffix(prefix, "."), err.Error())
		return
	}
	for field, msgs := range verr.Fields {
		for _, msg := range msgs {
			dst.Add(prefix+field, msg)
		}
	}
}

// collectStructFields lists the json-named fields of t, flattening
// untagged embedded structs.
func collectStructFields(t reflect.Type) []structField {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var out []structField
	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		if sf.Anonymous && name == "" {
			for _, inner := range collectStructFields(sf.Type) {
				inner.index = append([]int{i}, inner.index...)
				out = append(out, inner)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		ft := sf.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		multiple := (ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array) && ft.Elem().Kind() != reflect.Uint8

		out = append(out, structField{
			name:     name,
			index:    []int{i},
			multiple: multiple,
			rules:    sf.Tag.Get("validate"),
		})
	}
	return out
}

// toMap converts a map or struct into a map keyed by json field names.
// Nested values are kept as they are.
func toMap(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		fields := collectStructFields(rv.Type())
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			fv, err := rv.FieldByIndexErr(f.index)
			if err != nil {
				continue
			}
			out[f.name] = fv.Interface()
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}

	return nil, fmt.Errorf("schema: cannot dump %T as an object", v)
}

// structValue dereferences v down to a struct value.
func structValue(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, v.Kind() == reflect.Struct
}
