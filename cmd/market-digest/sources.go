// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Show the configured news sources",
	Long: `Sources prints the active source table as YAML: sites with their URLs
and selectors, fallback selectors, country scoping and topic queries. The
table is the built-in one unless providers.sources_file is set.

--validate compiles every CSS selector and fails if any does not parse.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().Bool("validate", false, "check that every selector compiles")

	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	if validate, _ := cmd.Flags().GetBool("validate"); validate {
		errs := catalog.CheckSelectors()
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "invalid selector:", e)
		}
		if len(errs) > 0 {
			return fmt.Errorf("%d selector(s) failed to compile", len(errs))
		}
		fmt.Printf("%d sites, all selectors valid\n", len(catalog.Sites))
		return nil
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(catalog); err != nil {
		return fmt.Errorf("encoding sources: %w", err)
	}
	return enc.Close()
}
