package annotation

import "reflect"

// Option is one annotation payload, for example
// {"args": fields, "kwargs": {"location": "query"}}.
type Option = map[string]any

// Annotation is an ordered list of option payloads with inheritance and
// application flags. Index 0 holds the highest-precedence option.
type Annotation struct {
	Options []Option
	Inherit Flag
	Apply   Flag
}

// New creates an annotation from options.
func New(options []Option, inherit, apply Flag) *Annotation {
	return &Annotation{
		Options: options,
		Inherit: inherit,
		Apply:   apply,
	}
}

// Merge folds other into a. When a opts out of inheritance, a is returned
// as is. Otherwise the result holds a's options followed by other's, takes
// Inherit from other and keeps a's Apply when set.
func (a *Annotation) Merge(other *Annotation) *Annotation {
	if a.Inherit == False {
		return a
	}
	if other == nil {
		other = &Annotation{}
	}

	options := make([]Option, 0, len(a.Options)+len(other.Options))
	options = append(options, a.Options...)
	options = append(options, other.Options...)

	return &Annotation{
		Options: options,
		Inherit: other.Inherit,
		Apply:   a.Apply.Or(other.Apply),
	}
}

// Resolve returns a copy with every Ref in the options replaced by its
// value on obj.
func (a *Annotation) Resolve(obj any) *Annotation {
	return &Annotation{
		Options: ResolveRefs(obj, a.Options).([]Option),
		Inherit: a.Inherit,
		Apply:   a.Apply,
	}
}

// Equal reports structural equality: same flags and equal options.
// Functions, pointers and channels inside options compare by identity.
func (a *Annotation) Equal(other *Annotation) bool {
	if a == other {
		return true
	}
	if a == nil || other == nil {
		return false
	}
	if a.Inherit != other.Inherit || a.Apply != other.Apply {
		return false
	}
	if len(a.Options) != len(other.Options) {
		return false
	}
	for i := range a.Options {
		if !equalValue(a.Options[i], other.Options[i]) {
			return false
		}
	}
	return true
}

func equalValue(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	return equalReflect(reflect.ValueOf(x), reflect.ValueOf(y))
}

func equalReflect(x, y reflect.Value) bool {
	if x.Type() != y.Type() {
		return false
	}

	switch x.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return x.Pointer() == y.Pointer()

	case reflect.Interface:
		if x.IsNil() || y.IsNil() {
			return x.IsNil() == y.IsNil()
		}
		return equalValue(x.Elem().Interface(), y.Elem().Interface())

	case reflect.Map:
		if x.IsNil() != y.IsNil() || x.Len() != y.Len() {
			return false
		}
		iter := x.MapRange()
		for iter.Next() {
			yv := y.MapIndex(iter.Key())
			if !yv.IsValid() || !equalReflect(iter.Value(), yv) {
				return false
			}
		}
		return true

	case reflect.Slice, reflect.Array:
		if x.Len() != y.Len() {
			return false
		}
		for i := 0; i < x.Len(); i++ {
			if !equalReflect(x.Index(i), y.Index(i)) {
				return false
			}
		}
		return true

	default:
		if x.Type().Comparable() {
			return x.Interface() == y.Interface()
		}
		return reflect.DeepEqual(x.Interface(), y.Interface())
	}
}
