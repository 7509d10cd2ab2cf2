// Package model defines the statistical model objects, the workspace that
// owns them, and the rule evaluation primitives used by statcore.
package model

import (
	"math"
	"strings"
)

// Kind identifies the type of object held in a workspace.
type Kind string

// Supported object kinds used by the workspace, the rules engine and the codec.
const (
	// KindObservable identifies a bounded quantity that is not fitted.
	KindObservable Kind = "observable"
	// KindParameter identifies a bounded quantity with a nominal value.
	KindParameter Kind = "parameter"
	// KindGaussian identifies a normal density over one observable.
	KindGaussian Kind = "gaussian"
	// KindExponential identifies an exponential density exp(c*x).
	KindExponential Kind = "exponential"
	// KindPoisson identifies a Poisson density with a mean parameter.
	KindPoisson Kind = "poisson"
)

// IsVariable reports whether the kind names an observable or a parameter.
func (k Kind) IsVariable() bool {
	return k == KindObservable || k == KindParameter
}

// Object is anything a workspace can own.
type Object interface {
	Name() string
	Title() string
	Kind() Kind
	Validate() error
}

// Variable is a bounded real-valued object.
type Variable interface {
	Object
	Bounds() (min, max float64)
}

// Observable is a named, bounded real-valued quantity appearing in a distribution.
// The zero value is invalid; use NewObservable.
type Observable struct {
	name  string
	title string
	min   float64
	max   float64
}

// NewObservable validates the range and returns an observable.
// An empty title defaults to the name.
func NewObservable(name, title string, min, max float64) (Observable, error) {
	o := Observable{name: name, title: defaultTitle(name, title), min: min, max: max}
	if err := o.Validate(); err != nil {
		return Observable{}, err
	}
	return o, nil
}

func (o Observable) Name() string  { return o.name }
func (o Observable) Title() string { return o.title }
func (o Observable) Kind() Kind    { return KindObservable }

// Bounds returns the observable range.
func (o Observable) Bounds() (float64, float64) { return o.min, o.max }

// Validate checks the name and range.
func (o Observable) Validate() error {
	if err := validateName(o.name, KindObservable); err != nil {
		return err
	}
	return checkBounds(o.name, o.min, o.max, 0, false)
}

// Parameter is an Observable-shaped quantity carrying a nominal starting value.
type Parameter struct {
	name  string
	title string
	value float64
	min   float64
	max   float64
}

// NewParameter validates min <= value <= max with min < max and returns a parameter.
func NewParameter(name, title string, value, min, max float64) (Parameter, error) {
	p := Parameter{name: name, title: defaultTitle(name, title), value: value, min: min, max: max}
	if err := p.Validate(); err != nil {
		return Parameter{}, err
	}
	return p, nil
}

func (p Parameter) Name() string  { return p.name }
func (p Parameter) Title() string { return p.title }
func (p Parameter) Kind() Kind    { return KindParameter }

// Bounds returns the parameter range.
func (p Parameter) Bounds() (float64, float64) { return p.min, p.max }

// Value returns the nominal value.
func (p Parameter) Value() float64 { return p.value }

// Validate checks the name, range and nominal value.
func (p Parameter) Validate() error {
	if err := validateName(p.name, KindParameter); err != nil {
		return err
	}
	return checkBounds(p.name, p.min, p.max, p.value, true)
}

func defaultTitle(name, title string) string {
	if strings.TrimSpace(title) == "" {
		return name
	}
	return title
}

func validateName(name string, kind Kind) error {
	if strings.TrimSpace(name) == "" {
		return InvalidNameError{Kind: kind, Reason: "name is empty"}
	}
	return nil
}

func checkBounds(name string, min, max, value float64, hasValue bool) error {
	bad := math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) || !(min < max)
	if hasValue && !bad {
		bad = math.IsNaN(value) || value < min || value > max
	}
	if bad {
		return InvalidBoundsError{Name: name, Min: min, Max: max, Value: value, HasValue: hasValue}
	}
	return nil
}
