package core

import (
	"context"

	"statcore/pkg/model"
)

// NewVariableBoundsRule re-validates every registered variable so values built
// as struct literals cannot reach the document.
func NewVariableBoundsRule() model.Rule {
	return variableBoundsRule{}
}

type variableBoundsRule struct{}

func (variableBoundsRule) Name() string { return RuleVariableBounds }

func (variableBoundsRule) Evaluate(_ context.Context, view model.WorkspaceView) (model.Result, error) {
	res := model.Result{}
	for _, v := range view.Variables() {
		if err := v.Validate(); err != nil {
			res.Violations = append(res.Violations, model.Violation{
				Rule:     RuleVariableBounds,
				Severity: model.SeverityBlock,
				Message:  err.Error(),
				Kind:     v.Kind(),
				Object:   v.Name(),
			})
		}
	}
	return res, nil
}
