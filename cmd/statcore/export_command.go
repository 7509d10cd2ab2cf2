package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"statcore/internal/core"
	"statcore/internal/modelspec"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var modelPath string
	var target string
	var sink string
	var withCatalog bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a model file to an HS3 document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := modelspec.Load(modelPath)
			if err != nil {
				return err
			}
			ws, err := spec.Build()
			if err != nil {
				return fmt.Errorf("%s: %w", modelPath, err)
			}
			if strings.TrimSpace(target) == "" {
				target = ws.Name() + ".json"
			}
			return ctx.withService(cmd, serviceOptions{sink: sink, catalog: withCatalog}, func(svc *core.Service) error {
				result, err := svc.Export(cmd.Context(), ws, target)
				if err != nil {
					return err
				}
				printExportResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model definition file (YAML)")
	cmd.Flags().StringVarP(&target, "out", "o", "", "Target path or key (default <workspace>.json)")
	cmd.Flags().StringVar(&sink, "sink", "", "Override the configured sink (file or blob)")
	cmd.Flags().BoolVar(&withCatalog, "catalog", false, "Record the export in the catalog")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func printExportResult(out io.Writer, result core.ExportResult) {
	fmt.Fprintf(out, "Exported workspace %s to %s (%d bytes)\n", result.Workspace, result.Location, result.Bytes)
	fmt.Fprintf(out, "sha256: %s\n", result.Checksum)
	if result.Revision != "" {
		fmt.Fprintf(out, "Catalog revision: %s\n", result.Revision)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning [%s] %s: %s\n", w.Rule, w.Object, w.Message)
	}
}
