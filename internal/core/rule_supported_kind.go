package core

import (
	"context"
	"fmt"

	"statcore/pkg/hs3"
	"statcore/pkg/model"
)

// NewSupportedKindRule blocks distributions the document codec cannot express.
func NewSupportedKindRule() model.Rule {
	return supportedKindRule{}
}

type supportedKindRule struct{}

func (supportedKindRule) Name() string { return RuleSupportedKind }

func (supportedKindRule) Evaluate(_ context.Context, view model.WorkspaceView) (model.Result, error) {
	res := model.Result{}
	for _, dist := range view.Distributions() {
		if hs3.Supports(dist.Kind()) {
			continue
		}
		res.Violations = append(res.Violations, model.Violation{
			Rule:     RuleSupportedKind,
			Severity: model.SeverityBlock,
			Message:  fmt.Sprintf("unsupported distribution kind %q", dist.Kind()),
			Kind:     dist.Kind(),
			Object:   dist.Name(),
		})
	}
	return res, nil
}
