package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/schemata"
	"github.com/aretw0/schemata/pkg/openapi"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Inspect the schema catalog",
}

var schemasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the collections that have a schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := buildCatalog(settings.cfg)
		if err != nil {
			return err
		}
		for _, name := range cat.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var schemasShowCmd = &cobra.Command{
	Use:   "show <collection>",
	Short: "Print the schema of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := buildCatalog(settings.cfg)
		if err != nil {
			return err
		}
		node, err := cat.Get(args[0])
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		return encode(cmd, node, asJSON)
	},
}

var schemasExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as an OpenAPI document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := buildCatalog(settings.cfg)
		if err != nil {
			return err
		}
		doc := openapi.Document(cat, strings.TrimSpace(schemata.Version))
		if err := doc.Validate(cmd.Context()); err != nil {
			return fmt.Errorf("generated document is invalid: %w", err)
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		return encode(cmd, doc, asJSON)
	},
}

func encode(cmd *cobra.Command, v any, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(schemasCmd)
	schemasCmd.AddCommand(schemasListCmd, schemasShowCmd, schemasExportCmd)

	schemasShowCmd.Flags().Bool("json", false, "Print JSON instead of YAML")
	schemasExportCmd.Flags().Bool("json", false, "Print JSON instead of YAML")
}
