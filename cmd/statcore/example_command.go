package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"statcore/internal/core"
	"statcore/internal/examples"
)

func newExampleCommand(ctx *commandContext) *cobra.Command {
	var target string
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "example [NAME]",
		Short: "Export a built-in example workspace, or list the examples",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range examples.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			ws, err := examples.Build(args[0])
			if err != nil {
				return err
			}
			if toStdout {
				rendering, err := core.NewService().Render(cmd.Context(), ws)
				if err != nil {
					return err
				}
				_, err = out.Write(rendering.Payload)
				return err
			}
			if target == "" {
				target = args[0] + ".json"
			}
			return ctx.withService(cmd, serviceOptions{}, func(svc *core.Service) error {
				result, err := svc.Export(cmd.Context(), ws, target)
				if err != nil {
					return err
				}
				printExportResult(out, result)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&target, "out", "o", "", "Target path or key (default NAME.json)")
	cmd.Flags().BoolVar(&toStdout, "print", false, "Write the document to stdout instead of the sink")
	return cmd
}
