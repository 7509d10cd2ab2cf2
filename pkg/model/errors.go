package model

import "fmt"

// InvalidBoundsError is returned when a range is malformed or a nominal value
// falls outside its range.
type InvalidBoundsError struct {
	Name     string
	Min      float64
	Max      float64
	Value    float64
	HasValue bool
}

func (e InvalidBoundsError) Error() string {
	if e.HasValue {
		return fmt.Sprintf("%s: invalid bounds: require %g < %g and value %g within range", e.Name, e.Min, e.Max, e.Value)
	}
	return fmt.Sprintf("%s: invalid bounds: require %g < %g", e.Name, e.Min, e.Max)
}

// InvalidNameError is returned for empty or mismatched object names.
type InvalidNameError struct {
	Kind   Kind
	Name   string
	Reason string
}

func (e InvalidNameError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid %s name: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid %s name %q: %s", e.Kind, e.Name, e.Reason)
}

// DuplicateNameError is returned when a workspace already holds a name.
type DuplicateNameError struct {
	Workspace string
	Name      string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("workspace %s already contains %s", e.Workspace, e.Name)
}

// ExportError describes the first structural problem found while exporting.
type ExportError struct {
	Workspace string
	Object    string
	Rule      string
	Reason    string
	Err       error
}

func (e ExportError) Error() string {
	msg := "export " + e.Workspace
	if e.Object != "" {
		msg += ": " + e.Object
	}
	if e.Rule != "" {
		msg += " [" + e.Rule + "]"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e ExportError) Unwrap() error { return e.Err }

// IOError wraps a failure to write or read a serialized document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e IOError) Unwrap() error { return e.Err }
