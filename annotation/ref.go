package annotation

import "reflect"

// AttrSource is implemented by values that expose named attributes for
// deferred reference resolution.
type AttrSource interface {
	Attr(name string) (any, bool)
}

// Attrs is a map-backed AttrSource.
type Attrs map[string]any

// Attr implements AttrSource.
func (a Attrs) Attr(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// Ref is a deferred reference to an attribute of the bound instance. It is
// replaced by the attribute value when an annotation is resolved.
type Ref struct {
	Key string
}

// NewRef creates a reference to the named attribute.
func NewRef(key string) Ref {
	return Ref{Key: key}
}

// Resolve returns the referenced attribute of obj, or nil when obj is nil or
// has no such attribute.
func (r Ref) Resolve(obj any) any {
	if obj == nil {
		return nil
	}

	if src, ok := obj.(AttrSource); ok {
		v, _ := src.Attr(r.Key)
		return v
	}

	return structField(obj, r.Key)
}

// structField looks up an exported field or a niladic method by name on
// plain Go values.
func structField(obj any, name string) any {
	v := reflect.ValueOf(obj)

	if m := v.MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
		return m.Call(nil)[0].Interface()
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String {
		if mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key())); mv.IsValid() {
			return mv.Interface()
		}
		return nil
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	f := v.FieldByName(name)
	if !f.IsValid() || !f.CanInterface() {
		return nil
	}
	return f.Interface()
}

// ResolveRefs returns a copy of v with every Ref reachable through maps and
// slices replaced by its resolution against obj. Other values are returned
// unchanged.
func ResolveRefs(obj any, v any) any {
	switch val := v.(type) {
	case Ref:
		return val.Resolve(obj)
	case *Ref:
		if val == nil {
			return nil
		}
		return val.Resolve(obj)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = ResolveRefs(obj, item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ResolveRefs(obj, item)
		}
		return out
	case []Option:
		out := make([]Option, len(val))
		for i, item := range val {
			out[i] = ResolveRefs(obj, item).(map[string]any)
		}
		return out
	default:
		return resolveContainer(obj, v)
	}
}

// resolveContainer walks maps and slices of any other element type. An
// element whose resolution no longer fits the element type is kept.
func resolveContainer(obj any, v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), resolveElem(obj, iter.Value(), rv.Type().Elem()))
		}
		return out.Interface()
	case reflect.Slice:
		if rv.IsNil() || rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := range rv.Len() {
			out.Index(i).Set(resolveElem(obj, rv.Index(i), rv.Type().Elem()))
		}
		return out.Interface()
	}
	return v
}

func resolveElem(obj any, item reflect.Value, typ reflect.Type) reflect.Value {
	resolved := ResolveRefs(obj, item.Interface())
	if resolved == nil {
		return reflect.Zero(typ)
	}
	rv := reflect.ValueOf(resolved)
	if !rv.Type().AssignableTo(typ) {
		return item
	}
	return rv
}
