package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"statcore/internal/docsconfig"
)

func newDocsCommand() *cobra.Command {
	var configPath string

	docsCmd := &cobra.Command{
		Use:         "docs",
		Short:       "Documentation build settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	docsCmd.PersistentFlags().StringVar(&configPath, "docs-config", "", "Documentation settings file (TOML)")

	load := func() (*docsconfig.Config, error) {
		if strings.TrimSpace(configPath) == "" {
			cfg := docsconfig.Default()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return docsconfig.Load(configPath)
	}

	docsCmd.AddCommand(&cobra.Command{
		Use:   "check [PATH...]",
		Short: "Show the settings and whether each path is excluded",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project: %s\n", cfg.Project)
			fmt.Fprintf(out, "Title: %s\n", cfg.HTMLTitle)
			fmt.Fprintf(out, "Theme: %s\n", cfg.HTMLTheme)
			fmt.Fprintf(out, "Nitpicky: %s\n", yesNo(cfg.Nitpicky))
			fmt.Fprintf(out, "Extensions: %s\n", strings.Join(cfg.Extensions, ", "))
			fmt.Fprintf(out, "MyST extensions: %s\n", strings.Join(cfg.MystEnableExtensions, ", "))
			fmt.Fprintf(out, "Exclude patterns: %s\n", strings.Join(cfg.ExcludePatterns, ", "))
			for _, p := range args {
				state := "included"
				if cfg.Excluded(p) {
					state = "excluded"
				}
				fmt.Fprintf(out, "%s: %s\n", p, state)
			}
			return nil
		},
	})

	docsCmd.AddCommand(&cobra.Command{
		Use:   "files ROOT",
		Short: "List documentation sources that are not excluded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			files, err := cfg.Walk(args[0])
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	})

	return docsCmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
