package openapi

import (
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

const componentPrefix = "#/components/schemas/"

var timeType = reflect.TypeOf(time.Time{})

// Exampler is implemented by types that supply the "example" of their
// component schema.
//
//	func (p Pet) OpenAPIExample() any {
//	    return Pet{ID: 1, Name: "Rex", Species: "dog"}
//	}
type Exampler interface {
	OpenAPIExample() any
}

// SchemaProvider is implemented by values that describe their own schema,
// such as request and response schemas built from field maps. The
// generator calls it instead of reflecting over the value.
type SchemaProvider interface {
	OpenAPISchema(g *SchemaGenerator) *Schema
}

// SchemaGenerator turns Go values into schemas. Named struct types are
// stored once as component schemas and referenced with $ref.
type SchemaGenerator struct {
	version string

	schemas map[string]*Schema
	visited map[reflect.Type]bool
	names   map[reflect.Type]string
	owners  map[string]reflect.Type
}

// NewSchemaGenerator creates a generator writing Version31 schemas.
func NewSchemaGenerator() *SchemaGenerator {
	return &SchemaGenerator{
		version: Version31,
		schemas: make(map[string]*Schema),
		visited: make(map[reflect.Type]bool),
		names:   make(map[reflect.Type]string),
		owners:  make(map[string]reflect.Type),
	}
}

// Schemas returns the collected component schemas.
func (g *SchemaGenerator) Schemas() map[string]*Schema {
	return g.schemas
}

// Generate returns the schema of v, or nil for a nil value.
func (g *SchemaGenerator) Generate(v any) *Schema {
	if v == nil {
		return nil
	}
	if p, ok := v.(SchemaProvider); ok {
		return p.OpenAPISchema(g)
	}
	return g.generateType(reflect.TypeOf(v))
}

// Deref returns the component a local $ref points to. Other schemas,
// including unknown references, are returned as they are.
func (g *SchemaGenerator) Deref(s *Schema) *Schema {
	if s == nil || s.Ref == "" {
		return s
	}
	name, ok := strings.CutPrefix(s.Ref, componentPrefix)
	if !ok {
		return s
	}
	if target, ok := g.schemas[name]; ok {
		return target
	}
	return s
}

// Register stores a component schema under name and returns a $ref to it.
func (g *SchemaGenerator) Register(name string, s *Schema) *Schema {
	g.schemas[name] = s
	return &Schema{Ref: componentPrefix + name}
}

// nullableKeyword reports whether null is written with the 3.0 "nullable"
// keyword instead of a "null" type.
func (g *SchemaGenerator) nullableKeyword() bool {
	return g.version == Version30
}

func (g *SchemaGenerator) generateType(t reflect.Type) *Schema {
	nullable := t.Kind() == reflect.Pointer
	if nullable {
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct && t != timeType {
		if name := g.schemaName(t); name != "" {
			if !g.visited[t] {
				g.visited[t] = true
				s := g.structSchema(t)
				if ex, ok := reflect.New(t).Interface().(Exampler); ok {
					s.Example = ex.OpenAPIExample()
				}
				g.schemas[name] = s
			}

			ref := &Schema{Ref: componentPrefix + name}
			if nullable {
				return g.nullableRef(ref)
			}
			return ref
		}
	}

	s := g.inlineType(t)
	if nullable && s != nil {
		g.makeNullable(s)
	}
	return s
}

func (g *SchemaGenerator) inlineType(t reflect.Type) *Schema {
	if t == timeType {
		return &Schema{Type: TypeString("string"), Format: "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeString("boolean")}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeString("integer")}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeString("number")}
	case reflect.String:
		return &Schema{Type: TypeString("string")}
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString("string"), Format: "byte"}
		}
		return &Schema{Type: TypeString("array"), Items: g.generateType(t.Elem())}
	case reflect.Map:
		s := &Schema{Type: TypeString("object")}
		if t.Key().Kind() == reflect.String {
			s.AdditionalProperties = g.generateType(t.Elem())
		}
		return s
	case reflect.Struct:
		return g.structSchema(t)
	case reflect.Interface:
		return &Schema{}
	}
	return nil
}

func (g *SchemaGenerator) structSchema(t reflect.Type) *Schema {
	s := &Schema{
		Type:       TypeString("object"),
		Properties: make(map[string]*Schema),
	}
	g.collectFields(t, s, false)
	if len(s.Properties) == 0 {
		s.Properties = nil
	}
	return s
}

// collectFields adds the exported fields of t to s the way encoding/json
// sees them. Fields of an embedded pointer are never required.
func (g *SchemaGenerator) collectFields(t reflect.Type, s *Schema, optional bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts := parseJSONTag(tag)

		if field.Anonymous && name == "" {
			ft := field.Type
			ptr := ft.Kind() == reflect.Pointer
			if ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				g.collectFields(ft, s, optional || ptr)
				continue
			}
		}
		if name == "" {
			name = field.Name
		}

		fs := g.generateType(field.Type)
		if fs == nil {
			continue
		}
		applyOpenAPITag(fs, field.Tag.Get("openapi"))
		required := ApplyValidateTag(fs, field.Tag.Get("validate"))
		if opts.asString && fs.Ref == "" && len(fs.AnyOf) == 0 && len(fs.AllOf) == 0 {
			encodeAsString(fs)
		}

		s.Properties[name] = fs
		if required || (!opts.omitempty && !optional) {
			s.Required = append(s.Required, name)
		}
	}
}

type jsonTagOpts struct {
	omitempty bool
	asString  bool
}

func parseJSONTag(tag string) (string, jsonTagOpts) {
	name, rest, _ := strings.Cut(tag, ",")
	var opts jsonTagOpts
	for opt := range strings.SplitSeq(rest, ",") {
		switch opt {
		case "omitempty", "omitzero":
			opts.omitempty = true
		case "string":
			opts.asString = true
		}
	}
	return name, opts
}

// openAPITagSetters apply one key of the `openapi` struct tag. Values that
// do not convert to the keyword's type are ignored.
var openAPITagSetters = map[string]func(s *Schema, value string){
	"description": func(s *Schema, v string) { s.Description = v },
	"title":       func(s *Schema, v string) { s.Title = v },
	"format":      func(s *Schema, v string) { s.Format = v },
	"pattern":     func(s *Schema, v string) { s.Pattern = v },
	"example":     func(s *Schema, v string) { s.Example = typedValue(s, v) },
	"default":     func(s *Schema, v string) { s.Default = typedValue(s, v) },
	"const":       func(s *Schema, v string) { s.Const = typedValue(s, v) },
	"deprecated":  func(s *Schema, _ string) { s.Deprecated = true },
	"readOnly":    func(s *Schema, _ string) { s.ReadOnly = true },
	"writeOnly":   func(s *Schema, _ string) { s.WriteOnly = true },
	"uniqueItems": func(s *Schema, _ string) { s.UniqueItems = true },
	"enum": func(s *Schema, v string) {
		for item := range strings.SplitSeq(v, "|") {
			s.Enum = append(s.Enum, typedValue(s, item))
		}
	},
	"minimum":          floatSetter(func(s *Schema) **float64 { return &s.Minimum }),
	"maximum":          floatSetter(func(s *Schema) **float64 { return &s.Maximum }),
	"exclusiveMinimum": floatSetter(func(s *Schema) **float64 { return &s.ExclusiveMinimum }),
	"exclusiveMaximum": floatSetter(func(s *Schema) **float64 { return &s.ExclusiveMaximum }),
	"multipleOf":       floatSetter(func(s *Schema) **float64 { return &s.MultipleOf }),
	"minLength":        intSetter(func(s *Schema) **int { return &s.MinLength }),
	"maxLength":        intSetter(func(s *Schema) **int { return &s.MaxLength }),
	"minItems":         intSetter(func(s *Schema) **int { return &s.MinItems }),
	"maxItems":         intSetter(func(s *Schema) **int { return &s.MaxItems }),
	"minProperties":    intSetter(func(s *Schema) **int { return &s.MinProperties }),
	"maxProperties":    intSetter(func(s *Schema) **int { return &s.MaxProperties }),
}

func floatSetter(field func(*Schema) **float64) func(*Schema, string) {
	return func(s *Schema, v string) {
		if f, err := cast.ToFloat64E(v); err == nil {
			*field(s) = &f
		}
	}
}

func intSetter(field func(*Schema) **int) func(*Schema, string) {
	return func(s *Schema, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			*field(s) = &n
		}
	}
}

// applyOpenAPITag applies an `openapi:"key=value,flag"` struct tag.
func applyOpenAPITag(s *Schema, tag string) {
	if tag == "" {
		return
	}
	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		if set, ok := openAPITagSetters[strings.TrimSpace(key)]; ok {
			set(s, strings.TrimSpace(value))
		}
	}
}

// ApplyValidateTag documents go-playground/validator rules on s and reports
// whether they make the value required. Length rules apply to strings and
// arrays, range rules to numbers. Rules after "dive" describe elements and
// are skipped.
func ApplyValidateTag(s *Schema, tag string) bool {
	if tag == "" || s == nil {
		return false
	}

	var kind string
	if types := s.Type.Values(); len(types) > 0 {
		kind = types[0]
	}

	required := false
	for rule := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(rule), "=")
		switch key {
		case "dive":
			return required
		case "required":
			required = true
		case "oneof":
			for v := range strings.FieldsSeq(value) {
				s.Enum = append(s.Enum, typedValue(s, v))
			}
		case "min", "gte":
			setBound(s, kind, value, true)
		case "max", "lte":
			setBound(s, kind, value, false)
		case "len":
			setBound(s, kind, value, true)
			setBound(s, kind, value, false)
		case "email", "uuid", "uri", "hostname", "ipv4", "ipv6":
			s.Format = key
		case "url":
			s.Format = "uri"
		case "datetime":
			s.Format = "date-time"
		}
	}
	return required
}

func setBound(s *Schema, kind, value string, lower bool) {
	if kind == "integer" || kind == "number" {
		v, err := cast.ToFloat64E(value)
		if err != nil {
			return
		}
		if lower {
			s.Minimum = &v
		} else {
			s.Maximum = &v
		}
		return
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	var lo, hi **int
	switch kind {
	case "string":
		lo, hi = &s.MinLength, &s.MaxLength
	case "array":
		lo, hi = &s.MinItems, &s.MaxItems
	default:
		return
	}
	if lower {
		*lo = &n
	} else {
		*hi = &n
	}
}

// typedValue converts a tag value to the Go type matching the schema type.
// Values that do not convert stay strings.
func typedValue(s *Schema, value string) any {
	types := s.Type.Values()
	if len(types) == 0 {
		return value
	}

	var (
		v   any
		err error
	)
	switch types[0] {
	case "integer":
		v, err = cast.ToInt64E(value)
	case "number":
		v, err = cast.ToFloat64E(value)
	case "boolean":
		v, err = cast.ToBoolE(value)
	default:
		return value
	}
	if err != nil {
		return value
	}
	return v
}

// schemaName returns the component name of t, or "" for unnamed types.
// When two types share a name the later one is prefixed with its package
// name, and numbered if that is taken too.
func (g *SchemaGenerator) schemaName(t reflect.Type) string {
	base := cleanTypeName(t.Name())
	if base == "" || t.PkgPath() == "" {
		return ""
	}
	if name, ok := g.names[t]; ok {
		return name
	}

	name := base
	if owner, ok := g.owners[name]; ok && owner != t {
		name = pkgPrefix(t.PkgPath()) + base
		for i, prefixed := 2, name; ; i++ {
			owner, ok := g.owners[name]
			if !ok || owner == t {
				break
			}
			name = prefixed + strconv.Itoa(i)
		}
	}

	g.names[t] = name
	g.owners[name] = t
	return name
}

// pkgPrefix capitalizes the last element of a package path: "net/http"
// gives "Http".
func pkgPrefix(pkgPath string) string {
	if i := strings.LastIndexByte(pkgPath, '/'); i >= 0 {
		pkgPath = pkgPath[i+1:]
	}
	if pkgPath == "" {
		return ""
	}
	pkgPath = strings.NewReplacer("-", "_", ".", "_").Replace(pkgPath)
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}

// cleanTypeName flattens generic instantiations: "Page[pkg.Pet]" gives
// "PagePet" and "Page[[]pkg.Pet]" gives "PagePetList".
func cleanTypeName(name string) string {
	open := strings.IndexByte(name, '[')
	if open < 0 {
		return name
	}

	arg := name[open+1 : len(name)-1]
	list := strings.HasPrefix(arg, "[]")
	arg = strings.TrimPrefix(arg, "[]")
	if dot := strings.LastIndexByte(arg, '.'); dot >= 0 {
		arg = arg[dot+1:]
	}

	out := name[:open] + arg
	if list {
		out += "List"
	}
	return out
}

func (g *SchemaGenerator) nullableRef(ref *Schema) *Schema {
	if g.nullableKeyword() {
		return &Schema{AllOf: []*Schema{ref}, Nullable: true}
	}
	return &Schema{AnyOf: []*Schema{ref, {Type: TypeString("null")}}}
}

func (g *SchemaGenerator) makeNullable(s *Schema) {
	if s.Ref != "" || s.Type.IsEmpty() {
		return
	}
	if g.nullableKeyword() {
		s.Nullable = true
		return
	}
	s.Type = TypeArray(append(s.Type.Values(), "null")...)
}

// encodeAsString documents a field with the encoding/json ",string" option.
func encodeAsString(s *Schema) {
	if slices.Contains(s.Type.Values(), "null") {
		s.Type = TypeArray("string", "null")
		return
	}
	s.Type = TypeString("string")
}
