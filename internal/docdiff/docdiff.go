// Package docdiff compares two HS3 documents after canonicalising them, so
// that key order, whitespace and array order do not show up as changes.
package docdiff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"statcore/pkg/hs3"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

// Stats counts changed lines in a unified diff.
type Stats struct {
	Added   int
	Removed int
}

// Diff returns a unified diff between the canonical forms of a and b. The
// result is empty when the documents are equivalent.
func Diff(aName string, a []byte, bName string, b []byte) (string, error) {
	patch, _, err := DiffContext(aName, a, bName, b, DefaultContext)
	return patch, err
}

// DiffContext is Diff with an explicit context size and line statistics.
func DiffContext(aName string, a []byte, bName string, b []byte, context int) (string, Stats, error) {
	if context <= 0 {
		context = DefaultContext
	}
	left, err := Canonical(a)
	if err != nil {
		return "", Stats{}, fmt.Errorf("%s: %w", aName, err)
	}
	right, err := Canonical(b)
	if err != nil {
		return "", Stats{}, fmt.Errorf("%s: %w", bName, err)
	}
	if string(left) == string(right) {
		return "", Stats{}, nil
	}
	patch, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(left)),
		B:        difflib.SplitLines(string(right)),
		FromFile: aName,
		ToFile:   bName,
		Context:  context,
	})
	if err != nil {
		return "", Stats{}, err
	}
	var stats Stats
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			stats.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			stats.Removed++
		}
	}
	return patch, stats, nil
}

// Canonical parses data and renders it again with every named array sorted.
func Canonical(data []byte) ([]byte, error) {
	doc, err := hs3.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(doc.Distributions, func(i, j int) bool { return doc.Distributions[i].Name < doc.Distributions[j].Name })
	sort.SliceStable(doc.Domains, func(i, j int) bool { return doc.Domains[i].Name < doc.Domains[j].Name })
	for _, dom := range doc.Domains {
		sort.SliceStable(dom.Axes, func(i, j int) bool { return dom.Axes[i].Name < dom.Axes[j].Name })
	}
	sort.SliceStable(doc.ParameterPoints, func(i, j int) bool { return doc.ParameterPoints[i].Name < doc.ParameterPoints[j].Name })
	for _, pt := range doc.ParameterPoints {
		sort.SliceStable(pt.Parameters, func(i, j int) bool { return pt.Parameters[i].Name < pt.Parameters[j].Name })
	}
	return hs3.Marshal(doc)
}
