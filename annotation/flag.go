package annotation

// Flag is a tri-state boolean. Unset means "not specified here" and lets a
// merge fall through to the next annotation.
type Flag int8

const (
	Unset Flag = iota
	True
	False
)

// FlagOf converts a bool to a set Flag.
func FlagOf(v bool) Flag {
	if v {
		return True
	}
	return False
}

// IsSet reports whether the flag carries a value.
func (f Flag) IsSet() bool {
	return f == True || f == False
}

// Or returns f when set, otherwise other.
func (f Flag) Or(other Flag) Flag {
	if f.IsSet() {
		return f
	}
	return other
}

// Enabled reports the effective value, treating Unset as true.
func (f Flag) Enabled() bool {
	return f != False
}

func (f Flag) String() string {
	switch f {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}
