package hs3

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"statcore/pkg/model"
)

// DefaultWorkspace names a decoded workspace when the document carries none.
const DefaultWorkspace = "workspace"

// Unmarshal validates data against the embedded schema and parses it.
func Unmarshal(data []byte) (Document, error) {
	if err := ValidateJSON(data); err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// Decode rebuilds a workspace from doc. Axes with a value in the default
// parameter point become parameters, the remaining axes observables.
func Decode(doc Document) (*model.Workspace, error) {
	name := DefaultWorkspace
	var titles map[string]string
	if doc.Misc != nil && doc.Misc.Statcore != nil {
		if doc.Misc.Statcore.Workspace != "" {
			name = doc.Misc.Statcore.Workspace
		}
		titles = doc.Misc.Statcore.Titles
	}
	ws, err := model.NewWorkspace(name)
	if err != nil {
		return nil, err
	}

	values := nominalValues(doc)
	if err := checkPointNames(doc, values); err != nil {
		return nil, err
	}
	vars := make(map[string]model.Object)
	for _, dom := range doc.Domains {
		for _, ax := range dom.Axes {
			var obj model.Object
			if v, ok := values[ax.Name]; ok {
				obj, err = model.NewParameter(ax.Name, titles[ax.Name], v, ax.Min, ax.Max)
			} else {
				obj, err = model.NewObservable(ax.Name, titles[ax.Name], ax.Min, ax.Max)
			}
			if err != nil {
				return nil, fmt.Errorf("domain %s: %w", dom.Name, err)
			}
			if err := ws.Register(ax.Name, obj); err != nil {
				return nil, fmt.Errorf("domain %s: %w", dom.Name, err)
			}
			vars[ax.Name] = obj
		}
	}

	for _, entry := range doc.Distributions {
		spec, ok := specByType(entry.Type)
		if !ok {
			return nil, fmt.Errorf("distribution %s: unsupported type %q", entry.Name, entry.Type)
		}
		refs := make(map[string]model.Object, len(entry.Refs))
		for _, r := range entry.Refs {
			if !slices.Contains(spec.roles, r.Role) {
				return nil, fmt.Errorf("distribution %s: unknown field %q for %s (expected %v)", entry.Name, r.Role, entry.Type, spec.roles)
			}
			obj, ok := vars[r.Name]
			if !ok {
				return nil, fmt.Errorf("distribution %s: role %s references unknown variable %s", entry.Name, r.Role, r.Name)
			}
			refs[r.Role] = obj
		}
		dist, err := spec.build(entry.Name, titles[entry.Name], refs)
		if err != nil {
			return nil, err
		}
		if err := ws.Register(entry.Name, dist); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// checkPointNames rejects parameter values for names no domain declares.
func checkPointNames(doc Document, values map[string]float64) error {
	axes := make(map[string]struct{})
	for _, dom := range doc.Domains {
		for _, ax := range dom.Axes {
			axes[ax.Name] = struct{}{}
		}
	}
	for name := range values {
		if _, ok := axes[name]; !ok {
			return fmt.Errorf("parameter point: %s has no axis in any domain", name)
		}
	}
	return nil
}

func nominalValues(doc Document) map[string]float64 {
	values := make(map[string]float64)
	if len(doc.ParameterPoints) == 0 {
		return values
	}
	point := doc.ParameterPoints[0]
	for _, p := range doc.ParameterPoints {
		if p.Name == DefaultPoint {
			point = p
			break
		}
	}
	for _, pv := range point.Parameters {
		values[pv.Name] = pv.Value
	}
	return values
}

// ReadFile loads, validates and decodes the document at path.
func ReadFile(path string) (*model.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.IOError{Op: "read", Path: path, Err: err}
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return Decode(doc)
}
