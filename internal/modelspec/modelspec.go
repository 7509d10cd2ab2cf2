// Package modelspec reads model definitions from YAML and builds workspaces
// from them.
//
//	workspace: ws
//	observables:
//	  - {name: x, min: -10, max: 10}
//	parameters:
//	  - {name: mean, title: mean of gaussian, value: 1, min: -10, max: 10}
//	  - {name: sigma, title: width of gaussian, value: 1, min: 0.1, max: 10}
//	distributions:
//	  - {name: gauss, title: gaussian PDF, type: gaussian, x: x, mean: mean, sigma: sigma}
package modelspec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"statcore/pkg/hs3"
	"statcore/pkg/model"
)

// File is a parsed model definition.
type File struct {
	Workspace     string         `yaml:"workspace"`
	Observables   []Observable   `yaml:"observables"`
	Parameters    []Parameter    `yaml:"parameters"`
	Distributions []Distribution `yaml:"distributions"`
}

// Observable defines a bounded observable.
type Observable struct {
	Name  string  `yaml:"name"`
	Title string  `yaml:"title"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// Parameter defines a bounded parameter with its nominal value.
type Parameter struct {
	Name  string  `yaml:"name"`
	Title string  `yaml:"title"`
	Value float64 `yaml:"value"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// Distribution names its type and maps each role to a variable name. Every key
// other than name, title and type is a role.
type Distribution struct {
	Name  string
	Title string
	Type  string
	Roles map[string]string
	Line  int
}

// UnmarshalYAML collects role keys from the mapping node.
func (d *Distribution) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: distribution must be a mapping", node.Line)
	}
	d.Line = node.Line
	d.Roles = make(map[string]string)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: %s must be a scalar", value.Line, key.Value)
		}
		switch key.Value {
		case "name":
			d.Name = value.Value
		case "title":
			d.Title = value.Value
		case "type":
			d.Type = value.Value
		default:
			if _, dup := d.Roles[key.Value]; dup {
				return fmt.Errorf("line %d: role %s given twice", key.Line, key.Value)
			}
			d.Roles[key.Value] = value.Value
		}
	}
	return nil
}

// Load reads and parses a model file. Read failures are model.IOError.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.IOError{Op: "read", Path: path, Err: err}
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a single YAML document; unknown top-level keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("model file is empty")
		}
		return nil, fmt.Errorf("parse model: %w", err)
	}
	return &f, nil
}

var kinds = []model.Kind{model.KindGaussian, model.KindExponential, model.KindPoisson}

// kindOf accepts both the model kind ("gaussian") and the document type name
// ("gaussian_dist").
func kindOf(typ string) (model.Kind, bool) {
	for _, k := range kinds {
		if typ == string(k) {
			return k, true
		}
		if name, ok := hs3.TypeName(k); ok && name == typ {
			return k, true
		}
	}
	return "", false
}

// Build creates the workspace. Variables are registered first so unreferenced
// ones are kept; distributions are then imported in file order.
func (f *File) Build() (*model.Workspace, error) {
	ws, err := model.NewWorkspace(f.Workspace)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]model.Variable)
	for _, o := range f.Observables {
		obs, err := model.NewObservable(o.Name, o.Title, o.Min, o.Max)
		if err != nil {
			return nil, err
		}
		if err := ws.Register(obs.Name(), obs); err != nil {
			return nil, err
		}
		vars[obs.Name()] = obs
	}
	for _, p := range f.Parameters {
		par, err := model.NewParameter(p.Name, p.Title, p.Value, p.Min, p.Max)
		if err != nil {
			return nil, err
		}
		if err := ws.Register(par.Name(), par); err != nil {
			return nil, err
		}
		vars[par.Name()] = par
	}
	for _, d := range f.Distributions {
		dist, err := d.build(vars)
		if err != nil {
			return nil, fmt.Errorf("distribution %s (line %d): %w", d.Name, d.Line, err)
		}
		if err := ws.Import(dist); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

func (d Distribution) build(vars map[string]model.Variable) (model.Distribution, error) {
	kind, ok := kindOf(d.Type)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", d.Type)
	}
	roles, _ := hs3.Roles(kind)
	for role := range d.Roles {
		if !slices.Contains(roles, role) {
			return nil, fmt.Errorf("unknown role %s for %s (expected %v)", role, kind, roles)
		}
	}
	obs := func(role string) (model.Observable, error) {
		v, err := d.lookup(role, vars)
		if err != nil {
			return model.Observable{}, err
		}
		o, ok := v.(model.Observable)
		if !ok {
			return model.Observable{}, fmt.Errorf("role %s needs an observable, %s is a %s", role, v.Name(), v.Kind())
		}
		return o, nil
	}
	par := func(role string) (model.Parameter, error) {
		v, err := d.lookup(role, vars)
		if err != nil {
			return model.Parameter{}, err
		}
		p, ok := v.(model.Parameter)
		if !ok {
			return model.Parameter{}, fmt.Errorf("role %s needs a parameter, %s is a %s", role, v.Name(), v.Kind())
		}
		return p, nil
	}

	x, err := obs("x")
	if err != nil {
		return nil, err
	}
	switch kind {
	case model.KindGaussian:
		mean, err := par("mean")
		if err != nil {
			return nil, err
		}
		sigma, err := par("sigma")
		if err != nil {
			return nil, err
		}
		return model.NewGaussian(d.Name, d.Title, x, mean, sigma)
	case model.KindExponential:
		c, err := par("c")
		if err != nil {
			return nil, err
		}
		return model.NewExponential(d.Name, d.Title, x, c)
	default:
		mean, err := par("mean")
		if err != nil {
			return nil, err
		}
		return model.NewPoisson(d.Name, d.Title, x, mean)
	}
}

func (d Distribution) lookup(role string, vars map[string]model.Variable) (model.Variable, error) {
	name, ok := d.Roles[role]
	if !ok || name == "" {
		return nil, fmt.Errorf("missing role %s", role)
	}
	v, ok := vars[name]
	if !ok {
		return nil, fmt.Errorf("role %s references unknown variable %s", role, name)
	}
	return v, nil
}

// FromWorkspace describes ws as a model file, sorted by name.
func FromWorkspace(ws model.WorkspaceView) File {
	f := File{Workspace: ws.Name()}
	for _, v := range ws.Variables() {
		min, max := v.Bounds()
		switch tv := v.(type) {
		case model.Parameter:
			f.Parameters = append(f.Parameters, Parameter{Name: tv.Name(), Title: tv.Title(), Value: tv.Value(), Min: min, Max: max})
		default:
			f.Observables = append(f.Observables, Observable{Name: v.Name(), Title: v.Title(), Min: min, Max: max})
		}
	}
	for _, dist := range ws.Distributions() {
		d := Distribution{Name: dist.Name(), Title: dist.Title(), Type: string(dist.Kind()), Roles: make(map[string]string)}
		for _, ref := range dist.References() {
			d.Roles[ref.Role] = ref.Name
		}
		f.Distributions = append(f.Distributions, d)
	}
	return f
}

// MarshalYAML writes name, title and type before the roles in sorted order.
func (d Distribution) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	add := func(k, v string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}
	add("name", d.Name)
	if d.Title != "" {
		add("title", d.Title)
	}
	add("type", d.Type)
	roles := make([]string, 0, len(d.Roles))
	for r := range d.Roles {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	for _, r := range roles {
		add(r, d.Roles[r])
	}
	return node, nil
}

// Marshal renders f as YAML.
func Marshal(f File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("marshal model: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
