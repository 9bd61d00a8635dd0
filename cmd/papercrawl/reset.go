// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every stored paper",
	Long: `Reset drops all records and recreates an empty store. Downloaded PDFs
are left in place. Pass --yes to confirm.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("reset deletes every record in %s; rerun with --yes", cfg.Store.Path)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Reset(cmd.Context()); err != nil {
			return err
		}
		logger.WithField("path", cfg.Store.Path).Info("store reset")
		fmt.Fprintln(os.Stdout, "store reset")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "confirm deletion")

	rootCmd.AddCommand(resetCmd)
}
