package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"statcore/internal/docdiff"
	"statcore/pkg/model"
)

// errDocumentsDiffer makes the process exit 1 without printing anything more.
var errDocumentsDiffer = errors.New("documents differ")

func newDiffCommand() *cobra.Command {
	var exitCode bool
	var contextLines int

	cmd := &cobra.Command{
		Use:         "diff A B",
		Short:       "Compare two HS3 documents ignoring layout and ordering",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := os.ReadFile(args[0])
			if err != nil {
				return model.IOError{Op: "read", Path: args[0], Err: err}
			}
			b, err := os.ReadFile(args[1])
			if err != nil {
				return model.IOError{Op: "read", Path: args[1], Err: err}
			}
			patch, stats, err := docdiff.DiffContext(args[0], a, args[1], b, contextLines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if patch == "" {
				fmt.Fprintln(out, "Documents are equivalent")
				return nil
			}
			fmt.Fprint(out, patch)
			fmt.Fprintf(out, "%d insertion(s), %d deletion(s)\n", stats.Added, stats.Removed)
			if exitCode {
				return errDocumentsDiffer
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with status 1 when the documents differ")
	cmd.Flags().IntVarP(&contextLines, "unified", "U", docdiff.DefaultContext, "Lines of context")
	return cmd
}
