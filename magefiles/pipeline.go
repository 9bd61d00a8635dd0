//go:build mage

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups targets that run the built CLI end to end.
type Pipeline mg.Namespace

func cli() string {
	return filepath.Join(binDir, binName)
}

// Crawl ingests the configured listing pages. Extra URLs come from
// $PAPERCRAWL_URLS (space separated) when set.
func (Pipeline) Crawl() error {
	mg.Deps(Build, Init)
	args := []string{"crawl"}
	if urls := os.Getenv("PAPERCRAWL_URLS"); urls != "" {
		args = append(args, strings.Fields(urls)...)
	}
	return sh.RunV(cli(), args...)
}

// Score rates the most recent papers and writes final_papers.json.
func (Pipeline) Score() error {
	mg.Deps(Build)
	return sh.RunV(cli(), "score")
}

// Export writes every stored paper to papers/papers.yaml.
func (Pipeline) Export() error {
	mg.Deps(Build)
	return sh.RunV(cli(), "export", filepath.Join(papersDir, "papers.yaml"))
}

// Daily runs crawl, score, and export in order.
func (p Pipeline) Daily() {
	mg.SerialDeps(p.Crawl, p.Score, p.Export)
}
