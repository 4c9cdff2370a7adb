package annotation

import (
	"sync"

	"github.com/google/uuid"
)

// Category names an annotation list on a registry.
type Category string

const (
	Args    Category = "args"
	Schemas Category = "schemas"
	Docs    Category = "docs"
	Wrapper Category = "wrapper"
)

// Inheritable lists the categories copied down resource hierarchies.
var Inheritable = []Category{Args, Schemas, Docs}

// Annotated is implemented by handlers and resources that carry a registry.
type Annotated interface {
	Annotations() *Registry
}

// Registry holds the annotations attached to one handler or resource.
// Lists only grow; Annotate prepends so the most recent decorator is first.
type Registry struct {
	id uuid.UUID

	mu      sync.RWMutex
	entries map[Category][]*Annotation
	wrapped bool
	method  bool
}

// NewRegistry creates an empty registry with a fresh identity.
func NewRegistry() *Registry {
	return &Registry{
		id:      uuid.New(),
		entries: make(map[Category][]*Annotation),
	}
}

// ID returns the stable identity of the registry.
func (r *Registry) ID() uuid.UUID {
	return r.id
}

// Annotate inserts an annotation at the front of the category list.
func (r *Registry) Annotate(c Category, a *Annotation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*Annotation, 0, len(r.entries[c])+1)
	list = append(list, a)
	list = append(list, r.entries[c]...)
	r.entries[c] = list
}

// Get returns a copy of the category list.
func (r *Registry) Get(c Category) []*Annotation {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.entries[c]
	if len(list) == 0 {
		return nil
	}
	out := make([]*Annotation, len(list))
	copy(out, list)
	return out
}

// Inherit appends the inheritable annotations of parents, in order,
// skipping annotations equal to one already present.
func (r *Registry) Inherit(parents ...*Registry) {
	for _, c := range Inheritable {
		for _, p := range parents {
			if p == nil || p == r {
				continue
			}
			for _, a := range p.Get(c) {
				r.appendUnique(c, a)
			}
		}
	}
}

func (r *Registry) appendUnique(c Category, a *Annotation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.entries[c] {
		if existing.Equal(a) {
			return
		}
	}
	r.entries[c] = append(r.entries[c], a)
}

// MarkWrapped flags the registry as activated. It returns false when the
// registry was already wrapped.
func (r *Registry) MarkWrapped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.wrapped {
		return false
	}
	r.wrapped = true
	return true
}

// Wrapped reports whether the handler was activated.
func (r *Registry) Wrapped() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.wrapped
}

// SetMethod marks the handler as bound to an instance at call time.
func (r *Registry) SetMethod(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.method = v
}

// IsMethod reports whether the handler takes its instance as first argument.
func (r *Registry) IsMethod() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.method
}

// Resolve combines the handler's own annotations with the parent's
// class-level annotations, resolves each against parent and folds them with
// Merge starting from the empty annotation.
func Resolve(own *Registry, c Category, parent any) *Annotation {
	list := own.Get(c)
	if p, ok := parent.(Annotated); ok {
		if pr := p.Annotations(); pr != nil && pr != own {
			list = append(list, pr.Get(c)...)
		}
	}

	acc := &Annotation{}
	for _, a := range list {
		acc = acc.Merge(a.Resolve(parent))
	}
	return acc
}
