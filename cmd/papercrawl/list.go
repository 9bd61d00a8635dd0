// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papercrawl/internal/filter"
	"github.com/pdiddy/papercrawl/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored papers, optionally filtered",
	Long: `List prints stored papers that match every given criterion. Keywords
match the title or abstract and authors match the author list, both
ignoring case; any one keyword or author is enough. The date range is
inclusive and uses the source date when known, else the date saved.`,
	RunE: runList,
}

func init() {
	f := listCmd.Flags()
	f.StringSlice("keywords", nil, "comma-separated keywords")
	f.StringSlice("authors", nil, "comma-separated author names")
	f.String("from", "", "earliest date, YYYY-MM-DD")
	f.String("to", "", "latest date, YYYY-MM-DD")
	f.Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	fc, err := filterConfig(cmd)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	papers, err := s.List(cmd.Context())
	if err != nil {
		return err
	}
	papers = filter.New(fc).Apply(papers)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, papers)
	}
	for _, p := range papers {
		printPaper(os.Stdout, p)
	}
	fmt.Fprintf(os.Stdout, "\n%d paper(s)\n", len(papers))
	return nil
}

func filterConfig(cmd *cobra.Command) (types.FilterConfig, error) {
	var fc types.FilterConfig
	fc.Keywords, _ = cmd.Flags().GetStringSlice("keywords")
	fc.Authors, _ = cmd.Flags().GetStringSlice("authors")

	var err error
	from, _ := cmd.Flags().GetString("from")
	if fc.StartDate, err = parseDateFlag("from", from); err != nil {
		return fc, err
	}
	to, _ := cmd.Flags().GetString("to")
	if fc.EndDate, err = parseDateFlag("to", to); err != nil {
		return fc, err
	}
	return fc, nil
}

func parseDateFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(types.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, v)
	}
	return t, nil
}

func printPaper(w io.Writer, p types.Paper) {
	fmt.Fprintf(w, "%s  %s\n", p.ID, p.Title)
	fmt.Fprintf(w, "    %s (%s)\n", p.AuthorList(), p.FilterDate())
	if p.ExcitementScore != nil && p.RelevanceScore != nil {
		fmt.Fprintf(w, "    relevance %d, excitement %d\n", *p.RelevanceScore, *p.ExcitementScore)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
