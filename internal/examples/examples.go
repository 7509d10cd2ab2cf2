// Package examples holds ready-made workspaces for demos and tests.
package examples

import (
	"fmt"
	"sort"

	"statcore/pkg/model"
)

// WorkspaceName is the workspace every example registers into.
const WorkspaceName = "ws"

// Gaussian builds the reference workspace: a Gaussian density "gauss" over
// x in [-10, 10] with mean 1 in [-10, 10] and sigma 1 in [0.1, 10].
func Gaussian() (*model.Workspace, error) {
	x, err := model.NewObservable("x", "x", -10, 10)
	if err != nil {
		return nil, err
	}
	mean, err := model.NewParameter("mean", "mean of gaussian", 1, -10, 10)
	if err != nil {
		return nil, err
	}
	sigma, err := model.NewParameter("sigma", "width of gaussian", 1, 0.1, 10)
	if err != nil {
		return nil, err
	}
	gauss, err := model.NewGaussian("gauss", "gaussian PDF", x, mean, sigma)
	if err != nil {
		return nil, err
	}
	return build(gauss)
}

// Exponential builds an exponential density exp(c*x) over x in [0, 10].
func Exponential() (*model.Workspace, error) {
	x, err := model.NewObservable("x", "x", 0, 10)
	if err != nil {
		return nil, err
	}
	c, err := model.NewParameter("c", "slope", -0.5, -5, 0)
	if err != nil {
		return nil, err
	}
	expo, err := model.NewExponential("expo", "exponential PDF", x, c)
	if err != nil {
		return nil, err
	}
	return build(expo)
}

// Poisson builds a counting density with mean 3 over n in [0, 20].
func Poisson() (*model.Workspace, error) {
	n, err := model.NewObservable("n", "event count", 0, 20)
	if err != nil {
		return nil, err
	}
	mu, err := model.NewParameter("mu", "expected count", 3, 0, 20)
	if err != nil {
		return nil, err
	}
	pois, err := model.NewPoisson("pois", "poisson PMF", n, mu)
	if err != nil {
		return nil, err
	}
	return build(pois)
}

func build(dist model.Distribution) (*model.Workspace, error) {
	ws, err := model.NewWorkspace(WorkspaceName)
	if err != nil {
		return nil, err
	}
	if err := ws.Import(dist); err != nil {
		return nil, err
	}
	return ws, nil
}

var registry = map[string]func() (*model.Workspace, error){
	"gauss": Gaussian,
	"expo":  Exponential,
	"pois":  Poisson,
}

// Names lists the registered example names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns the named example workspace.
func Build(name string) (*model.Workspace, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown example %q (available: %v)", name, Names())
	}
	return fn()
}
