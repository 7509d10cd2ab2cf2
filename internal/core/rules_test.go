package core

import (
	"context"
	"errors"
	"testing"

	"statcore/pkg/model"
)

// looseVariable bypasses constructor validation so the bounds rule can see it.
type looseVariable struct {
	name     string
	min, max float64
}

func (v looseVariable) Name() string               { return v.name }
func (v looseVariable) Title() string              { return v.name }
func (v looseVariable) Kind() model.Kind           { return model.KindObservable }
func (v looseVariable) Bounds() (float64, float64) { return v.min, v.max }
func (v looseVariable) Validate() error {
	if v.min >= v.max {
		return model.InvalidBoundsError{Name: v.name, Min: v.min, Max: v.max}
	}
	return nil
}

type staticView struct {
	name    string
	objects map[string]model.Object
	vars    []model.Variable
	dists   []model.Distribution
}

func (v staticView) Name() string                        { return v.name }
func (v staticView) Variables() []model.Variable         { return v.vars }
func (v staticView) Distributions() []model.Distribution { return v.dists }
func (v staticView) Lookup(name string) (model.Object, bool) {
	obj, ok := v.objects[name]
	return obj, ok
}
func (v staticView) Objects() []model.Object {
	out := make([]model.Object, 0, len(v.objects))
	for _, obj := range v.objects {
		out = append(out, obj)
	}
	return out
}

func TestVariableBoundsRule(t *testing.T) {
	bad := looseVariable{name: "x", min: 5, max: 1}
	good := looseVariable{name: "y", min: 0, max: 1}
	view := staticView{name: "ws", vars: []model.Variable{bad, good}}
	res, err := NewVariableBoundsRule().Evaluate(context.Background(), view)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected one violation, got %+v", res.Violations)
	}
	v := res.Violations[0]
	if v.Object != "x" || v.Severity != model.SeverityBlock || v.Rule != RuleVariableBounds {
		t.Fatalf("unexpected violation %+v", v)
	}
}

func TestVariableBoundsRuleBlocksRender(t *testing.T) {
	bad := looseVariable{name: "x", min: 5, max: 1}
	view := staticView{name: "ws", objects: map[string]model.Object{"x": bad}, vars: []model.Variable{bad}}
	_, err := NewService().Render(context.Background(), view)
	var exportErr model.ExportError
	if !errors.As(err, &exportErr) || exportErr.Rule != RuleVariableBounds || exportErr.Object != "x" {
		t.Fatalf("expected variable_bounds export error, got %v", err)
	}
}

func TestDefaultRulesOrder(t *testing.T) {
	want := []string{RuleReferentialIntegrity, RuleVariableBounds, RuleSupportedKind, RuleUnusedVariable}
	got := NewDefaultRulesEngine().Rules()
	if len(got) != len(want) {
		t.Fatalf("unexpected rules %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rule %d: expected %s got %s", i, want[i], got[i])
		}
	}
}

func TestReferentialIntegrityReportsEveryBrokenRole(t *testing.T) {
	x, _ := model.NewObservable("x", "", -1, 1)
	mean, _ := model.NewParameter("mean", "", 0, -1, 1)
	sigma, _ := model.NewParameter("sigma", "", 1, 0.1, 2)
	gauss, _ := model.NewGaussian("gauss", "", x, mean, sigma)
	view := staticView{
		name:    "ws",
		objects: map[string]model.Object{"gauss": gauss, "x": mean},
		dists:   []model.Distribution{gauss},
	}
	res, err := NewReferentialIntegrityRule().Evaluate(context.Background(), view)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 3 {
		t.Fatalf("expected wrong kind for x plus two missing, got %+v", res.Violations)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
}

func TestUnusedVariableRuleIsWarning(t *testing.T) {
	ws := mustGaussianWorkspace(t)
	res, err := NewUnusedVariableRule().Evaluate(context.Background(), ws)
	if err != nil || len(res.Violations) != 0 {
		t.Fatalf("gaussian workspace uses every variable: %v %+v", err, res.Violations)
	}
	spare, _ := model.NewObservable("spare", "", 0, 1)
	if err := ws.Register("spare", spare); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, _ = NewUnusedVariableRule().Evaluate(context.Background(), ws)
	if len(res.Violations) != 1 || res.Violations[0].Severity != model.SeverityWarn || res.HasBlocking() {
		t.Fatalf("expected a single warning, got %+v", res.Violations)
	}
}
