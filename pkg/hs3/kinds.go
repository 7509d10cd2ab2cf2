package hs3

import (
	"fmt"
	"slices"

	"statcore/pkg/model"
)

type kindSpec struct {
	kind  model.Kind
	typ   string
	roles []string
	build func(name, title string, refs map[string]model.Object) (model.Distribution, error)
}

var kindSpecs = []kindSpec{
	{
		kind:  model.KindGaussian,
		typ:   "gaussian_dist",
		roles: []string{"x", "mean", "sigma"},
		build: func(name, title string, refs map[string]model.Object) (model.Distribution, error) {
			x, err := observableRef(name, "x", refs)
			if err != nil {
				return nil, err
			}
			mean, err := parameterRef(name, "mean", refs)
			if err != nil {
				return nil, err
			}
			sigma, err := parameterRef(name, "sigma", refs)
			if err != nil {
				return nil, err
			}
			return model.NewGaussian(name, title, x, mean, sigma)
		},
	},
	{
		kind:  model.KindExponential,
		typ:   "exponential_dist",
		roles: []string{"x", "c"},
		build: func(name, title string, refs map[string]model.Object) (model.Distribution, error) {
			x, err := observableRef(name, "x", refs)
			if err != nil {
				return nil, err
			}
			c, err := parameterRef(name, "c", refs)
			if err != nil {
				return nil, err
			}
			return model.NewExponential(name, title, x, c)
		},
	},
	{
		kind:  model.KindPoisson,
		typ:   "poisson_dist",
		roles: []string{"x", "mean"},
		build: func(name, title string, refs map[string]model.Object) (model.Distribution, error) {
			x, err := observableRef(name, "x", refs)
			if err != nil {
				return nil, err
			}
			mean, err := parameterRef(name, "mean", refs)
			if err != nil {
				return nil, err
			}
			return model.NewPoisson(name, title, x, mean)
		},
	},
}

// Supports reports whether distributions of kind can be encoded.
func Supports(kind model.Kind) bool {
	_, ok := specByKind(kind)
	return ok
}

// TypeName returns the HS3 type string for kind.
func TypeName(kind model.Kind) (string, bool) {
	spec, ok := specByKind(kind)
	return spec.typ, ok
}

// Roles returns the fields a distribution of kind carries, in document
// order. The slice is a copy.
func Roles(kind model.Kind) ([]string, bool) {
	spec, ok := specByKind(kind)
	if !ok {
		return nil, false
	}
	return slices.Clone(spec.roles), true
}

func specByKind(kind model.Kind) (kindSpec, bool) {
	for _, s := range kindSpecs {
		if s.kind == kind {
			return s, true
		}
	}
	return kindSpec{}, false
}

func specByType(typ string) (kindSpec, bool) {
	for _, s := range kindSpecs {
		if s.typ == typ {
			return s, true
		}
	}
	return kindSpec{}, false
}

func observableRef(dist, role string, refs map[string]model.Object) (model.Observable, error) {
	obj, ok := refs[role]
	if !ok {
		return model.Observable{}, fmt.Errorf("distribution %s: missing role %s", dist, role)
	}
	o, ok := obj.(model.Observable)
	if !ok {
		return model.Observable{}, fmt.Errorf("distribution %s: role %s needs an observable, %s is a %s", dist, role, obj.Name(), obj.Kind())
	}
	return o, nil
}

func parameterRef(dist, role string, refs map[string]model.Object) (model.Parameter, error) {
	obj, ok := refs[role]
	if !ok {
		return model.Parameter{}, fmt.Errorf("distribution %s: missing role %s", dist, role)
	}
	p, ok := obj.(model.Parameter)
	if !ok {
		return model.Parameter{}, fmt.Errorf("distribution %s: role %s needs a parameter, %s is a %s", dist, role, obj.Name(), obj.Kind())
	}
	return p, nil
}
