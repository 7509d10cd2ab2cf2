package model

import "context"

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine export behavior and logging.
const (
	// SeverityBlock aborts the export.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows the export.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// WorkspaceView provides read-only access to a workspace for rule evaluation.
type WorkspaceView interface {
	Name() string
	Objects() []Object
	Variables() []Variable
	Distributions() []Distribution
	Lookup(name string) (Object, bool)
}

var _ WorkspaceView = (*Workspace)(nil)

// Violation describes a single rule finding.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Kind     Kind
	Object   string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	_, ok := r.FirstBlocking()
	return ok
}

// FirstBlocking returns the first blocking violation in evaluation order.
func (r Result) FirstBlocking() (Violation, bool) {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return v, true
		}
	}
	return Violation{}, false
}

// Rule defines an evaluation executed before a workspace is exported.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view WorkspaceView) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rule names in evaluation order.
func (e *RulesEngine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		names = append(names, r.Name())
	}
	return names
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view WorkspaceView) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
