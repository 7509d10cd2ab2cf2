package core

import "statcore/pkg/model"

// Rule names reported in violations and export errors.
const (
	RuleReferentialIntegrity = "referential_integrity"
	RuleVariableBounds       = "variable_bounds"
	RuleSupportedKind        = "supported_kind"
	RuleUnusedVariable       = "unused_variable"
)

// NewDefaultRulesEngine builds a rules engine with the built-in export checks.
func NewDefaultRulesEngine() *model.RulesEngine {
	engine := model.NewRulesEngine()
	engine.Register(NewReferentialIntegrityRule())
	engine.Register(NewVariableBoundsRule())
	engine.Register(NewSupportedKindRule())
	engine.Register(NewUnusedVariableRule())
	return engine
}
