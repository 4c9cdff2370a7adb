package annotation

// MergePair merges a child value over a parent value. When either side is a
// map the result is the key union, merged recursively. Otherwise the child
// wins unless it is nil.
func MergePair(child, parent any) any {
	cm, childIsMap := asMap(child)
	pm, parentIsMap := asMap(parent)

	if childIsMap || parentIsMap {
		// A set scalar child replaces a parent mapping.
		if !childIsMap && child != nil {
			return child
		}

		out := make(map[string]any, len(cm)+len(pm))
		for k, v := range pm {
			out[k] = MergePair(cm[k], v)
		}
		for k, v := range cm {
			if _, ok := pm[k]; !ok {
				out[k] = MergePair(v, nil)
			}
		}
		return out
	}

	if child != nil {
		return child
	}
	return parent
}

// MergeRecursive folds values left to right with MergePair, starting from
// an empty map. Earlier values take precedence over later ones.
func MergeRecursive(values ...any) map[string]any {
	var acc any = map[string]any{}
	for _, v := range values {
		acc = MergePair(acc, v)
	}

	if m, ok := asMap(acc); ok {
		return m
	}
	return map[string]any{}
}

// MergeOptions merges annotation options into a single map.
func MergeOptions(options []Option) map[string]any {
	values := make([]any, len(options))
	for i, o := range options {
		values[i] = o
	}
	return MergeRecursive(values...)
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
