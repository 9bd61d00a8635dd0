// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papercrawl/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write every stored paper to a YAML or JSON file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	path := "papers." + format
	if len(args) == 1 {
		path = args[0]
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	switch format {
	case "yaml":
		err = store.ExportYAML(cmd.Context(), s, path)
	case "json":
		err = store.ExportJSON(cmd.Context(), s, path)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "exported to %s\n", path)
	return nil
}
