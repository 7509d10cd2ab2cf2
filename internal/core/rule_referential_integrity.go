package core

import (
	"context"
	"fmt"

	"statcore/pkg/model"
)

// NewReferentialIntegrityRule blocks exports whose distributions reference
// names that are missing or registered with the wrong kind.
func NewReferentialIntegrityRule() model.Rule {
	return referentialIntegrityRule{}
}

type referentialIntegrityRule struct{}

func (referentialIntegrityRule) Name() string { return RuleReferentialIntegrity }

func (referentialIntegrityRule) Evaluate(_ context.Context, view model.WorkspaceView) (model.Result, error) {
	res := model.Result{}
	for _, dist := range view.Distributions() {
		for _, ref := range dist.References() {
			obj, ok := view.Lookup(ref.Name)
			var msg string
			switch {
			case !ok:
				msg = fmt.Sprintf("role %s references %s which is not in workspace %s", ref.Role, ref.Name, view.Name())
			case ref.Kind != "" && obj.Kind() != ref.Kind:
				msg = fmt.Sprintf("role %s expects %s %s, found %s", ref.Role, ref.Kind, ref.Name, obj.Kind())
			default:
				continue
			}
			res.Violations = append(res.Violations, model.Violation{
				Rule:     RuleReferentialIntegrity,
				Severity: model.SeverityBlock,
				Message:  msg,
				Kind:     dist.Kind(),
				Object:   dist.Name(),
			})
		}
	}
	return res, nil
}
