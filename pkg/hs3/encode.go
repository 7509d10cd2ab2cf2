package hs3

import (
	"encoding/json"
	"fmt"

	"statcore/pkg/model"
)

// EncodeOptions tunes document metadata.
type EncodeOptions struct {
	HS3Version  string
	Packages    []Package
	Description string
}

func (o EncodeOptions) withDefaults() EncodeOptions {
	if o.HS3Version == "" {
		o.HS3Version = Version
	}
	if len(o.Packages) == 0 {
		o.Packages = []Package{{Name: PackageName, Version: PackageVersion}}
	}
	return o
}

// Encode walks the workspace and produces its document. Every distribution
// reference must resolve to a registered variable and every distribution kind
// must be supported; the first problem found is returned as model.ExportError.
func Encode(ws model.WorkspaceView, opts EncodeOptions) (Document, error) {
	opts = opts.withDefaults()
	doc := Document{
		Distributions: []DistributionEntry{},
		Metadata: Metadata{
			HS3Version:  opts.HS3Version,
			Packages:    append([]Package(nil), opts.Packages...),
			Description: opts.Description,
		},
	}
	titles := make(map[string]string)

	for _, dist := range ws.Distributions() {
		spec, ok := specByKind(dist.Kind())
		if !ok {
			return Document{}, model.ExportError{
				Workspace: ws.Name(),
				Object:    dist.Name(),
				Rule:      "supported_kind",
				Reason:    fmt.Sprintf("unsupported distribution kind %q", dist.Kind()),
			}
		}
		entry := DistributionEntry{Name: dist.Name(), Type: spec.typ}
		for _, ref := range dist.References() {
			obj, ok := ws.Lookup(ref.Name)
			if !ok {
				return Document{}, model.ExportError{
					Workspace: ws.Name(),
					Object:    dist.Name(),
					Rule:      "referential_integrity",
					Reason:    fmt.Sprintf("role %s references %s which is not in the workspace", ref.Role, ref.Name),
				}
			}
			if !obj.Kind().IsVariable() {
				return Document{}, model.ExportError{
					Workspace: ws.Name(),
					Object:    dist.Name(),
					Rule:      "referential_integrity",
					Reason:    fmt.Sprintf("role %s references %s which is a %s", ref.Role, ref.Name, obj.Kind()),
				}
			}
			entry.Refs = append(entry.Refs, Ref{Role: ref.Role, Name: ref.Name})
		}
		doc.Distributions = append(doc.Distributions, entry)
		titles[dist.Name()] = dist.Title()
	}

	domain := Domain{Name: DefaultDomain, Type: ProductDomain, Axes: []Axis{}}
	point := ParameterPoint{Name: DefaultPoint, Parameters: []ParameterValue{}}
	for _, v := range ws.Variables() {
		min, max := v.Bounds()
		domain.Axes = append(domain.Axes, Axis{Name: v.Name(), Min: min, Max: max})
		titles[v.Name()] = v.Title()
		if v.Kind() != model.KindParameter {
			continue
		}
		nominal, ok := v.(interface{ Value() float64 })
		if !ok {
			return Document{}, model.ExportError{
				Workspace: ws.Name(),
				Object:    v.Name(),
				Reason:    "parameter has no nominal value",
			}
		}
		point.Parameters = append(point.Parameters, ParameterValue{Name: v.Name(), Value: nominal.Value()})
	}
	doc.Domains = []Domain{domain}
	if len(point.Parameters) > 0 {
		doc.ParameterPoints = []ParameterPoint{point}
	}
	doc.Misc = &Misc{Statcore: &WorkspaceInfo{Workspace: ws.Name(), Titles: titles}}
	return doc, nil
}

// Marshal renders the document as indented JSON terminated by a newline.
func Marshal(doc Document) ([]byte, error) {
	b, err := jsonMarshalIndent(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(b, '\n'), nil
}

var jsonMarshalIndent = func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") }
