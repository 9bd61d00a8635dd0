// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papercrawl/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over stored papers",
	Long: `Search ranks stored papers by relevance to the query over title,
abstract, and authors. Requires the bleve store backend.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 10, "maximum number of results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("max-results")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	hits, err := store.Search(cmd.Context(), s, strings.Join(args, " "), n)
	if errors.Is(err, store.ErrUnsupported) {
		return fmt.Errorf("search needs --store bleve (current backend: %s)", cfg.Store.Backend)
	}
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, hits)
	}
	for _, h := range hits {
		fmt.Fprintf(os.Stdout, "[%.3f] ", h.Score)
		printPaper(os.Stdout, h.Paper)
	}
	if len(hits) == 0 {
		fmt.Fprintln(os.Stdout, "no matches")
	}
	return nil
}
