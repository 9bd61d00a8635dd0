// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/papercrawl/internal/crawl"
	"github.com/pdiddy/papercrawl/internal/extract"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [urls...]",
	Short: "Ingest papers from listing pages",
	Long: `Crawl fetches each listing page, parses its paper entries, and for every
paper not yet stored downloads the PDF and recovers the abstract before
saving the record. Papers already in the store are skipped.

Supported pages: arXiv listings, Semantic Scholar search results, and Google
Scholar result pages. With no arguments the crawl.urls config list is used.`,
	RunE: runCrawl,
}

func init() {
	f := crawlCmd.Flags()
	f.Bool("parallel", false, "process input URLs concurrently")
	f.Duration("timeout", 0, "HTTP request timeout (default 60s)")
	f.Int("max-retries", 0, "retries on HTTP 429 (default 0: no retry)")
	f.String("extractor", "", "PDF text backend: native, pdftotext, or container")
	f.Int("max-pages", 0, "PDF pages searched for the abstract (default 5)")
	f.String("metrics-file", "", "write crawl counters in Prometheus text format to this file")

	bindFlag("crawl.parallel", f.Lookup("parallel"))
	bindFlag("crawl.timeout", f.Lookup("timeout"))
	bindFlag("crawl.max_retries", f.Lookup("max-retries"))
	bindFlag("crawl.extractor", f.Lookup("extractor"))
	bindFlag("crawl.max_pages", f.Lookup("max-pages"))

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	urls := args
	if len(urls) == 0 {
		urls = cfg.Crawl.URLs
	}
	if len(urls) == 0 {
		return fmt.Errorf("provide one or more listing URLs or set crawl.urls")
	}

	ext, err := extract.New(cmd.Context(), cfg.Crawl)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	reg := prometheus.NewRegistry()
	c := crawl.New(s, ext, cfg.Crawl,
		crawl.WithLogger(logger),
		crawl.WithMetrics(crawl.NewMetrics(reg)),
		crawl.WithOutput(os.Stdout),
	)

	result, err := c.Crawl(cmd.Context(), urls)

	if path, _ := cmd.Flags().GetString("metrics-file"); path != "" {
		if werr := crawl.WriteMetrics(path, reg); werr != nil {
			logger.WithError(werr).Warn("writing metrics failed")
		}
	}
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d URL(s) failed", len(result.FailedURLs))
	}
	return nil
}
