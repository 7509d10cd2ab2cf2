// Package hs3 encodes workspaces into the HEP Statistics Serialization
// Standard JSON layout and decodes such documents back into workspaces.
//
// Only the subset needed by statcore is produced: distributions, one product
// domain holding every variable's range, one parameter point holding nominal
// values, metadata, and a misc block carrying the workspace name and titles.
package hs3

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

const (
	// Version is the HS3 version written into document metadata.
	Version = "0.2"
	// DefaultDomain names the product domain holding variable ranges.
	DefaultDomain = "default_domain"
	// DefaultPoint names the parameter point holding nominal values.
	DefaultPoint = "default_values"
	// ProductDomain is the only domain type emitted.
	ProductDomain = "product_domain"
	// PackageName identifies this producer in metadata.
	PackageName = "statcore"
	// PackageVersion is the producer version reported in metadata.
	PackageVersion = "0.1.0"
)

// Document is the top-level HS3 structure.
type Document struct {
	Distributions   []DistributionEntry `json:"distributions"`
	Domains         []Domain            `json:"domains"`
	ParameterPoints []ParameterPoint    `json:"parameter_points,omitempty"`
	Metadata        Metadata            `json:"metadata"`
	Misc            *Misc               `json:"misc,omitempty"`
}

// Ref binds a distribution role to a variable name.
type Ref struct {
	Role string
	Name string
}

// DistributionEntry is one element of the distributions array. Roles are
// serialized as sibling string fields of name and type.
type DistributionEntry struct {
	Name string
	Type string
	Refs []Ref
}

// Ref returns the variable bound to role.
func (d DistributionEntry) Ref(role string) (string, bool) {
	for _, r := range d.Refs {
		if r.Role == role {
			return r.Name, true
		}
	}
	return "", false
}

// MarshalJSON writes name and type first, then refs in role order.
func (d DistributionEntry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField := func(key, value string, first bool) error {
		if !first {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}
	if err := writeField("name", d.Name, true); err != nil {
		return nil, err
	}
	if err := writeField("type", d.Type, false); err != nil {
		return nil, err
	}
	for _, r := range d.Refs {
		if r.Role == "name" || r.Role == "type" {
			return nil, fmt.Errorf("distribution %s: reserved role %q", d.Name, r.Role)
		}
		if err := writeField(r.Role, r.Name, false); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads name, type and every other string field as a ref.
// Refs follow the role order of the distribution type when it is known.
func (d *DistributionEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out DistributionEntry
	for key, msg := range raw {
		var value string
		if err := json.Unmarshal(msg, &value); err != nil {
			return fmt.Errorf("distribution field %q: expected string", key)
		}
		switch key {
		case "name":
			out.Name = value
		case "type":
			out.Type = value
		default:
			out.Refs = append(out.Refs, Ref{Role: key, Name: value})
		}
	}
	order := map[string]int{}
	if spec, ok := specByType(out.Type); ok {
		for i, role := range spec.roles {
			order[role] = i
		}
	}
	sort.Slice(out.Refs, func(i, j int) bool {
		oi, iok := order[out.Refs[i].Role]
		oj, jok := order[out.Refs[j].Role]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return out.Refs[i].Role < out.Refs[j].Role
		}
	})
	*d = out
	return nil
}

// Domain describes variable ranges.
type Domain struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Axes []Axis `json:"axes"`
}

// Axis is the range of one variable.
type Axis struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// ParameterPoint is a named assignment of values to parameters.
type ParameterPoint struct {
	Name       string           `json:"name"`
	Parameters []ParameterValue `json:"parameters"`
}

// ParameterValue is a single parameter assignment.
type ParameterValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Metadata identifies the standard version and the producing package.
type Metadata struct {
	HS3Version  string    `json:"hs3_version"`
	Packages    []Package `json:"packages,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Package names a producing tool.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Misc carries producer-specific data.
type Misc struct {
	Statcore *WorkspaceInfo `json:"statcore,omitempty"`
}

// WorkspaceInfo keeps what HS3 has no field for.
type WorkspaceInfo struct {
	Workspace string            `json:"workspace"`
	Titles    map[string]string `json:"titles,omitempty"`
}

// Names lists every distribution and axis name in the document, sorted.
func (d Document) Names() []string {
	seen := map[string]struct{}{}
	for _, dist := range d.Distributions {
		seen[dist.Name] = struct{}{}
	}
	for _, dom := range d.Domains {
		for _, ax := range dom.Axes {
			seen[ax.Name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
