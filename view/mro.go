package view

import (
	"fmt"
	"slices"
)

// linearize computes the C3 method resolution order of r: r first, then
// its ancestors so that every resource precedes its bases and the order
// of bases is kept.
func linearize(r *Resource) ([]*Resource, error) {
	seqs := make([][]*Resource, 0, len(r.bases)+1)
	for _, base := range r.bases {
		seqs = append(seqs, slices.Clone(base.mro))
	}
	seqs = append(seqs, slices.Clone(r.bases))

	out := []*Resource{r}
	for {
		seqs = slices.DeleteFunc(seqs, func(seq []*Resource) bool {
			return len(seq) == 0
		})
		if len(seqs) == 0 {
			return out, nil
		}

		var head *Resource
		for _, seq := range seqs {
			if !inTail(seq[0], seqs) {
				head = seq[0]
				break
			}
		}
		if head == nil {
			return nil, fmt.Errorf("%w: inconsistent hierarchy for resource %q", ErrConfiguration, r.name)
		}

		out = append(out, head)
		for i, seq := range seqs {
			if seq[0] == head {
				seqs[i] = seq[1:]
			}
		}
	}
}

func inTail(r *Resource, seqs [][]*Resource) bool {
	for _, seq := range seqs {
		if slices.Contains(seq[1:], r) {
			return true
		}
	}
	return false
}
