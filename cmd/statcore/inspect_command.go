package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"statcore/internal/logging"
	"statcore/pkg/hs3"
	"statcore/pkg/model"
)

type variableSummary struct {
	Name  string   `json:"name"`
	Title string   `json:"title,omitempty"`
	Kind  string   `json:"kind"`
	Value *float64 `json:"value,omitempty"`
	Min   float64  `json:"min"`
	Max   float64  `json:"max"`
}

type distributionSummary struct {
	Name  string            `json:"name"`
	Title string            `json:"title,omitempty"`
	Type  string            `json:"type"`
	Roles map[string]string `json:"roles"`
	// PeakDensity is the density at the nominal mean, for Gaussians.
	PeakDensity *float64 `json:"peak_density,omitempty"`
}

type documentSummary struct {
	Workspace     string                `json:"workspace"`
	HS3Version    string                `json:"hs3_version"`
	Variables     []variableSummary     `json:"variables"`
	Distributions []distributionSummary `json:"distributions"`
}

func newInspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "inspect FILE",
		Short:       "Summarise an HS3 document",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := summarizeDocument(args[0])
			if err != nil {
				return err
			}
			if asJSON || !logging.IsTerminal(cmd.OutOrStdout()) {
				return writeJSON(cmd, summary)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON even on a terminal")
	return cmd
}

func summarizeDocument(path string) (documentSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return documentSummary{}, model.IOError{Op: "read", Path: path, Err: err}
	}
	doc, err := hs3.Unmarshal(data)
	if err != nil {
		return documentSummary{}, fmt.Errorf("%s: %w", path, err)
	}
	ws, err := hs3.Decode(doc)
	if err != nil {
		return documentSummary{}, fmt.Errorf("%s: %w", path, err)
	}

	summary := documentSummary{
		Workspace:     ws.Name(),
		HS3Version:    doc.Metadata.HS3Version,
		Variables:     []variableSummary{},
		Distributions: []distributionSummary{},
	}
	for _, v := range ws.Variables() {
		min, max := v.Bounds()
		vs := variableSummary{Name: v.Name(), Kind: string(v.Kind()), Min: min, Max: max}
		if v.Title() != v.Name() {
			vs.Title = v.Title()
		}
		if p, ok := v.(model.Parameter); ok {
			value := p.Value()
			vs.Value = &value
		}
		summary.Variables = append(summary.Variables, vs)
	}
	for _, d := range ws.Distributions() {
		typ, _ := hs3.TypeName(d.Kind())
		ds := distributionSummary{Name: d.Name(), Type: typ, Roles: map[string]string{}}
		if d.Title() != d.Name() {
			ds.Title = d.Title()
		}
		for _, ref := range d.References() {
			ds.Roles[ref.Role] = ref.Name
		}
		if g, ok := d.(model.Gaussian); ok {
			peak := g.Density(g.Mean().Value())
			ds.PeakDensity = &peak
		}
		summary.Distributions = append(summary.Distributions, ds)
	}
	return summary, nil
}

func renderSummary(s documentSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workspace: %s (HS3 %s)\n", s.Workspace, s.HS3Version)

	rows := make([][]string, 0, len(s.Variables))
	for _, v := range s.Variables {
		value := "-"
		if v.Value != nil {
			value = formatFloat(*v.Value)
		}
		rows = append(rows, []string{v.Name, v.Kind, value, formatFloat(v.Min), formatFloat(v.Max), v.Title})
	}
	b.WriteString(renderTable(
		[]string{"Name", "Kind", "Value", "Min", "Max", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	b.WriteString("\n")

	rows = rows[:0]
	for _, d := range s.Distributions {
		roles := make([]string, 0, len(d.Roles))
		for role, name := range d.Roles {
			roles = append(roles, role+"="+name)
		}
		sort.Strings(roles)
		peak := "-"
		if d.PeakDensity != nil {
			peak = strconv.FormatFloat(*d.PeakDensity, 'g', 6, 64)
		}
		rows = append(rows, []string{d.Name, d.Type, strings.Join(roles, " "), peak, d.Title})
	}
	b.WriteString(renderTable(
		[]string{"Distribution", "Type", "Roles", "Peak", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	b.WriteString("\n")
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
