package model

import (
	"sort"
	"strings"
	"sync"
)

// Workspace is a named container owning every object registered into it.
// Names are unique within a workspace.
type Workspace struct {
	name string

	mu      sync.RWMutex
	objects map[string]Object
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(name string) (*Workspace, error) {
	if strings.TrimSpace(name) == "" {
		return nil, InvalidNameError{Kind: "workspace", Reason: "name is empty"}
	}
	return &Workspace{name: name, objects: make(map[string]Object)}, nil
}

// Name returns the workspace name.
func (w *Workspace) Name() string { return w.name }

// Register stores obj under name. The name must equal obj.Name() and must not
// already be taken.
func (w *Workspace) Register(name string, obj Object) error {
	if obj == nil {
		return InvalidNameError{Kind: "object", Name: name, Reason: "object is nil"}
	}
	if strings.TrimSpace(name) == "" {
		return InvalidNameError{Kind: obj.Kind(), Reason: "name is empty"}
	}
	if name != obj.Name() {
		return InvalidNameError{Kind: obj.Kind(), Name: name, Reason: "does not match object name " + obj.Name()}
	}
	if err := obj.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.objects[name]; exists {
		return DuplicateNameError{Workspace: w.name, Name: name}
	}
	w.objects[name] = obj
	return nil
}

// Import registers obj together with everything it depends on. Dependencies
// already registered with an equal value are reused. Nothing is registered
// when any step fails.
func (w *Workspace) Import(obj Object) error {
	if obj == nil {
		return InvalidNameError{Kind: "object", Reason: "object is nil"}
	}
	pending := make(map[string]Object)
	var order []string
	var collect func(Object) error
	collect = func(o Object) error {
		if d, ok := o.(Distribution); ok {
			for _, dep := range d.Dependencies() {
				if err := collect(dep); err != nil {
					return err
				}
			}
		}
		if err := o.Validate(); err != nil {
			return err
		}
		if prev, ok := pending[o.Name()]; ok {
			if !sameObject(prev, o) {
				return DuplicateNameError{Workspace: w.name, Name: o.Name()}
			}
			return nil
		}
		pending[o.Name()] = o
		order = append(order, o.Name())
		return nil
	}
	if err := collect(obj); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	var fresh []string
	for _, name := range order {
		existing, ok := w.objects[name]
		if !ok {
			fresh = append(fresh, name)
			continue
		}
		// the imported object itself may never collide; shared dependencies may
		if name == obj.Name() || !sameObject(existing, pending[name]) {
			return DuplicateNameError{Workspace: w.name, Name: name}
		}
	}
	for _, name := range fresh {
		w.objects[name] = pending[name]
	}
	return nil
}

// Lookup returns the object registered under name.
func (w *Workspace) Lookup(name string) (Object, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	obj, ok := w.objects[name]
	return obj, ok
}

// Len returns the number of registered objects.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}

// Objects returns every registered object sorted by name.
func (w *Workspace) Objects() []Object {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Object, 0, len(w.objects))
	for _, obj := range w.objects {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Variables returns the registered observables and parameters sorted by name.
func (w *Workspace) Variables() []Variable {
	var out []Variable
	for _, obj := range w.Objects() {
		if v, ok := obj.(Variable); ok && obj.Kind().IsVariable() {
			out = append(out, v)
		}
	}
	return out
}

// Observables returns the registered observables sorted by name.
func (w *Workspace) Observables() []Variable {
	var out []Variable
	for _, v := range w.Variables() {
		if v.Kind() == KindObservable {
			out = append(out, v)
		}
	}
	return out
}

// Parameters returns the registered parameters sorted by name.
func (w *Workspace) Parameters() []Variable {
	var out []Variable
	for _, v := range w.Variables() {
		if v.Kind() == KindParameter {
			out = append(out, v)
		}
	}
	return out
}

// Distributions returns the registered distributions sorted by name.
func (w *Workspace) Distributions() []Distribution {
	var out []Distribution
	for _, obj := range w.Objects() {
		if d, ok := obj.(Distribution); ok {
			out = append(out, d)
		}
	}
	return out
}

func sameObject(a, b Object) bool {
	if a.Kind() != b.Kind() || a.Name() != b.Name() || a.Title() != b.Title() {
		return false
	}
	va, aok := a.(Variable)
	vb, bok := b.(Variable)
	if aok != bok {
		return false
	}
	if aok {
		amin, amax := va.Bounds()
		bmin, bmax := vb.Bounds()
		if amin != bmin || amax != bmax {
			return false
		}
	}
	pa, aok := a.(Parameter)
	pb, bok := b.(Parameter)
	if aok && bok && pa.Value() != pb.Value() {
		return false
	}
	da, aok := a.(Distribution)
	db, bok := b.(Distribution)
	if aok != bok {
		return false
	}
	if aok {
		ra, rb := da.References(), db.References()
		if len(ra) != len(rb) {
			return false
		}
		for i := range ra {
			if ra[i] != rb[i] {
				return false
			}
		}
	}
	return true
}
