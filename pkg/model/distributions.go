package model

import (
	"fmt"
	"math"
)

// Reference binds a distribution role to a variable by name.
type Reference struct {
	Role string
	Name string
	Kind Kind
}

// Distribution is a named functional form over observables and parameters.
type Distribution interface {
	Object
	// References lists the variables the distribution reads, in role order.
	References() []Reference
	// Dependencies returns the referenced objects themselves, in role order.
	Dependencies() []Object
}

// Gaussian is a normal density over X with the given mean and width.
type Gaussian struct {
	name  string
	title string
	x     Observable
	mean  Parameter
	sigma Parameter
}

// NewGaussian builds a Gaussian density. All three inputs must be valid.
func NewGaussian(name, title string, x Observable, mean, sigma Parameter) (Gaussian, error) {
	g := Gaussian{name: name, title: defaultTitle(name, title), x: x, mean: mean, sigma: sigma}
	if err := g.Validate(); err != nil {
		return Gaussian{}, err
	}
	return g, nil
}

func (g Gaussian) Name() string  { return g.name }
func (g Gaussian) Title() string { return g.title }
func (g Gaussian) Kind() Kind    { return KindGaussian }

func (g Gaussian) X() Observable    { return g.x }
func (g Gaussian) Mean() Parameter  { return g.mean }
func (g Gaussian) Sigma() Parameter { return g.sigma }

func (g Gaussian) References() []Reference {
	return []Reference{
		{Role: "x", Name: g.x.Name(), Kind: KindObservable},
		{Role: "mean", Name: g.mean.Name(), Kind: KindParameter},
		{Role: "sigma", Name: g.sigma.Name(), Kind: KindParameter},
	}
}

func (g Gaussian) Dependencies() []Object {
	return []Object{g.x, g.mean, g.sigma}
}

func (g Gaussian) Validate() error {
	return validateDistribution(g.name, KindGaussian, g.x, g.mean, g.sigma)
}

// Density evaluates the normalised Gaussian at x using the nominal mean and
// sigma. A non-positive sigma yields NaN.
func (g Gaussian) Density(x float64) float64 {
	sigma := g.sigma.Value()
	if sigma <= 0 {
		return math.NaN()
	}
	z := (x - g.mean.Value()) / sigma
	return math.Exp(-0.5*z*z) / (sigma * math.Sqrt(2*math.Pi))
}

// Exponential is the density exp(c*x) over X.
type Exponential struct {
	name  string
	title string
	x     Observable
	c     Parameter
}

// NewExponential builds an exponential density.
func NewExponential(name, title string, x Observable, c Parameter) (Exponential, error) {
	e := Exponential{name: name, title: defaultTitle(name, title), x: x, c: c}
	if err := e.Validate(); err != nil {
		return Exponential{}, err
	}
	return e, nil
}

func (e Exponential) Name() string  { return e.name }
func (e Exponential) Title() string { return e.title }
func (e Exponential) Kind() Kind    { return KindExponential }

func (e Exponential) X() Observable { return e.x }
func (e Exponential) C() Parameter  { return e.c }

func (e Exponential) References() []Reference {
	return []Reference{
		{Role: "x", Name: e.x.Name(), Kind: KindObservable},
		{Role: "c", Name: e.c.Name(), Kind: KindParameter},
	}
}

func (e Exponential) Dependencies() []Object { return []Object{e.x, e.c} }

func (e Exponential) Validate() error {
	return validateDistribution(e.name, KindExponential, e.x, e.c)
}

// Poisson is a Poisson density of X with expectation Mean.
type Poisson struct {
	name  string
	title string
	x     Observable
	mean  Parameter
}

// NewPoisson builds a Poisson density.
func NewPoisson(name, title string, x Observable, mean Parameter) (Poisson, error) {
	p := Poisson{name: name, title: defaultTitle(name, title), x: x, mean: mean}
	if err := p.Validate(); err != nil {
		return Poisson{}, err
	}
	return p, nil
}

func (p Poisson) Name() string  { return p.name }
func (p Poisson) Title() string { return p.title }
func (p Poisson) Kind() Kind    { return KindPoisson }

func (p Poisson) X() Observable   { return p.x }
func (p Poisson) Mean() Parameter { return p.mean }

func (p Poisson) References() []Reference {
	return []Reference{
		{Role: "x", Name: p.x.Name(), Kind: KindObservable},
		{Role: "mean", Name: p.mean.Name(), Kind: KindParameter},
	}
}

func (p Poisson) Dependencies() []Object { return []Object{p.x, p.mean} }

func (p Poisson) Validate() error {
	return validateDistribution(p.name, KindPoisson, p.x, p.mean)
}

func validateDistribution(name string, kind Kind, deps ...Variable) error {
	if err := validateName(name, kind); err != nil {
		return err
	}
	for _, dep := range deps {
		if err := dep.Validate(); err != nil {
			return fmt.Errorf("%s %s: %w", kind, name, err)
		}
	}
	return nil
}
