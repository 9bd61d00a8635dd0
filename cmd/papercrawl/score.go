// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/papercrawl/internal/score"
	"github.com/pdiddy/papercrawl/internal/secrets"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rate recent papers for relevance and excitement",
	Long: `Score sends the most recently saved papers to a chat model, which rates
each from 1 to 10 for relevance and excitement. Ratings are saved with the
papers. Papers at or above the excitement threshold are written to --out.

The API key comes from .secrets/openai-api-key or OPENAI_API_KEY.`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.Int("top-n", 0, "number of recent papers to score (default 30)")
	f.Int("min-excitement", 0, "excitement threshold for --out (default 7)")
	f.String("model", "", "chat model (default gpt-4o-mini)")
	f.String("out", "final_papers.json", "file for the exciting papers")

	bindFlag("score.top_n", f.Lookup("top-n"))
	bindFlag("score.min_excitement", f.Lookup("min-excitement"))
	bindFlag("score.model", f.Lookup("model"))

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	sc := cfg.Score
	if sc.APIKey == "" {
		keys, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		sc.APIKey = keys.Get(secrets.OpenAIKey, "OPENAI_API_KEY")
	}

	scorer, err := score.NewOpenAIScorer(sc)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	scores, err := score.Run(cmd.Context(), s, scorer, sc.TopN, logger, os.Stdout)
	if err != nil {
		return err
	}

	threshold := sc.MinExcitement
	if threshold <= 0 {
		threshold = score.DefaultMinExcitement
	}
	exciting := score.Exciting(scores, threshold)

	out, _ := cmd.Flags().GetString("out")
	if err := score.WriteJSON(out, exciting); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%d paper(s) with excitement >= %d written to %s\n", len(exciting), threshold, out)
	return nil
}
