// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the papercrawl CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	applog "github.com/pdiddy/papercrawl/internal/log"
	"github.com/pdiddy/papercrawl/internal/store"
	"github.com/pdiddy/papercrawl/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "papercrawl/0.1"
	defaultListing   = "https://arxiv.org/list/cs.AI/new"
)

var (
	// cfg is populated from viper before any subcommand runs.
	cfg types.PipelineConfig

	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "papercrawl",
	Short: "Crawl research listings into a local paper store",
	Long: `papercrawl fetches listing pages from arXiv, Semantic Scholar, and Google
Scholar, downloads each new paper's PDF, recovers its abstract, and records
it in a local store. Papers already stored are skipped, so repeated runs
only pick up what is new.

Stored papers can be listed with filters, searched, scored by a chat model,
exported, or reset.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		logger, err = applog.New(cfg.Log)
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.WithField("file", used).Debug("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./papercrawl.yaml or ~/.config/papercrawl/papercrawl.yaml)")
	pf.String("papers-dir", "", "base directory for downloaded papers (default papers)")
	pf.String("store", "", "store backend: sqlite, bleve, or bolt (default sqlite)")
	pf.String("store-path", "", "store file or index directory (default <papers-dir>/papers.db)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: text or json")

	bindFlag("crawl.papers_dir", pf.Lookup("papers-dir"))
	bindFlag("store.backend", pf.Lookup("store"))
	bindFlag("store.path", pf.Lookup("store-path"))
	bindFlag("log.level", pf.Lookup("log-level"))
	bindFlag("log.format", pf.Lookup("log-format"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("crawl.papers_dir", "papers")
	viper.SetDefault("crawl.timeout", defaultTimeout)
	viper.SetDefault("crawl.user_agent", defaultUserAgent)
	viper.SetDefault("crawl.max_retries", 0)
	viper.SetDefault("crawl.parallel", false)
	viper.SetDefault("crawl.extractor", string(types.ExtractorNative))
	viper.SetDefault("crawl.extractor_image", "")
	viper.SetDefault("crawl.max_pages", 5)
	viper.SetDefault("crawl.urls", []string{defaultListing})
	viper.SetDefault("store.backend", string(types.StoreSQLite))
	viper.SetDefault("store.path", "")
	viper.SetDefault("score.model", "gpt-4o-mini")
	viper.SetDefault("score.api_key", "")
	viper.SetDefault("score.base_url", "")
	viper.SetDefault("score.top_n", 30)
	viper.SetDefault("score.min_excitement", 7)
	viper.SetDefault("score.temperature", 0.7)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("papercrawl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "papercrawl"))
		}
	}

	viper.SetEnvPrefix("PAPERCRAWL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and flags still apply.
	_ = viper.ReadInConfig()
}

// loadConfig decodes viper's merged view and fills derived defaults.
func loadConfig() (types.PipelineConfig, error) {
	var c types.PipelineConfig
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath(c.Crawl.PapersDir, c.Store.Backend)
	}
	return c, nil
}

func defaultStorePath(papersDir string, backend types.StoreBackend) string {
	switch backend {
	case types.StoreBleve:
		return filepath.Join(papersDir, "papers.bleve")
	case types.StoreBolt:
		return filepath.Join(papersDir, "papers.bolt")
	default:
		return filepath.Join(papersDir, "papers.db")
	}
}

// bindFlag ties a viper key to a flag so flag > env > file > default.
func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding %s: %v", key, err))
	}
}

// openStore opens the configured record store. Callers close it.
func openStore() (store.Store, error) {
	s, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s store at %s: %w", cfg.Store.Backend, cfg.Store.Path, err)
	}
	return s, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
