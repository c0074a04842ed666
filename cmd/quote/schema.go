package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/davidbz/tarifa/internal/document"
)

func newSchemaCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:       "schema [document]",
		Short:     "Print the JSON schema of the pricing documents",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: document.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := document.Schemas()
			if err != nil {
				return err
			}

			names := document.Names()
			if len(args) == 1 {
				if _, ok := schemas[args[0]]; !ok {
					return fmt.Errorf("unknown document %q", args[0])
				}
				names = args
			}

			if outDir == "" {
				if len(names) == 1 {
					return writeSchema(cmd, schemas[names[0]])
				}
				return writeSchema(cmd, schemas)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			slices.Sort(names)
			for _, name := range names {
				data, err := json.MarshalIndent(schemas[name], "", "  ")
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, schemaFileName(name))
				if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "write one schema file per document into this directory")

	return cmd
}

func writeSchema(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// schemaFileName turns pricing-config.json into pricing-config.schema.json.
func schemaFileName(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)] + ".schema" + ext
}
