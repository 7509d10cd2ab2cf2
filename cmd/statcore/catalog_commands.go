package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"statcore/internal/catalog"
	"statcore/pkg/hs3"
	"statcore/pkg/model"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage exported documents kept in the catalog",
	}

	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogGetCommand(ctx))
	catalogCmd.AddCommand(newCatalogPutCommand(ctx))
	catalogCmd.AddCommand(newCatalogDeleteCommand(ctx))

	return catalogCmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd, func(store catalog.Store) error {
				records, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					if records == nil {
						records = []catalog.Record{}
					}
					return writeJSON(cmd, records)
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "Catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.Name,
						rec.Revision,
						shortChecksum(rec.Checksum),
						fmt.Sprintf("%d", len(rec.Payload)),
						rec.UpdatedAt.Format(time.RFC3339),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Revision", "Checksum", "Bytes", "Updated"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newCatalogGetCommand(ctx *commandContext) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print or save the document stored for a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd, func(store catalog.Store) error {
				rec, ok, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("workspace %s not found in catalog", args[0])
				}
				if err := catalog.Verify(rec); err != nil {
					return err
				}
				if target == "" {
					_, err := cmd.OutOrStdout().Write(rec.Payload)
					return err
				}
				if err := os.WriteFile(target, rec.Payload, 0o644); err != nil {
					return model.IOError{Op: "write", Path: target, Err: err}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s revision %s to %s\n", rec.Name, rec.Revision, target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&target, "out", "o", "", "Write the document to a file instead of stdout")
	return cmd
}

func newCatalogPutCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "put FILE",
		Short: "Store an existing HS3 document in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			payload, err := os.ReadFile(path)
			if err != nil {
				return model.IOError{Op: "read", Path: path, Err: err}
			}
			doc, err := hs3.Unmarshal(payload)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if name == "" {
				name = documentName(doc, path)
			}
			return ctx.withCatalog(cmd, func(store catalog.Store) error {
				rec, err := catalog.Save(cmd.Context(), store, name, payload)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s revision %s (sha256 %s)\n", rec.Name, rec.Revision, shortChecksum(rec.Checksum))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Catalog name (default: workspace recorded in the document)")
	return cmd
}

func newCatalogDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a workspace from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(cmd, func(store catalog.Store) error {
				removed, err := store.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("workspace %s not found in catalog", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

// documentName prefers the workspace recorded in the document and falls back
// to the file name without extension.
func documentName(doc hs3.Document, path string) string {
	if doc.Misc != nil && doc.Misc.Statcore != nil && doc.Misc.Statcore.Workspace != "" {
		return doc.Misc.Statcore.Workspace
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
