package core

import (
	"context"
	"fmt"

	"statcore/pkg/model"
)

// NewUnusedVariableRule warns about variables no distribution references.
// They are still exported.
func NewUnusedVariableRule() model.Rule {
	return unusedVariableRule{}
}

type unusedVariableRule struct{}

func (unusedVariableRule) Name() string { return RuleUnusedVariable }

func (unusedVariableRule) Evaluate(_ context.Context, view model.WorkspaceView) (model.Result, error) {
	used := make(map[string]struct{})
	for _, dist := range view.Distributions() {
		for _, ref := range dist.References() {
			used[ref.Name] = struct{}{}
		}
	}
	res := model.Result{}
	for _, v := range view.Variables() {
		if _, ok := used[v.Name()]; ok {
			continue
		}
		res.Violations = append(res.Violations, model.Violation{
			Rule:     RuleUnusedVariable,
			Severity: model.SeverityWarn,
			Message:  fmt.Sprintf("%s %s is not referenced by any distribution", v.Kind(), v.Name()),
			Kind:     v.Kind(),
			Object:   v.Name(),
		})
	}
	return res, nil
}
