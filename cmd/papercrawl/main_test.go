// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papercrawl/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "papers", c.Crawl.PapersDir)
	assert.Equal(t, defaultTimeout, c.Crawl.Timeout)
	assert.Equal(t, 0, c.Crawl.MaxRetries)
	assert.Equal(t, 5, c.Crawl.MaxPages)
	assert.Equal(t, []string{defaultListing}, c.Crawl.URLs)
	assert.Equal(t, types.StoreSQLite, c.Store.Backend)
	assert.Equal(t, filepath.Join("papers", "papers.db"), c.Store.Path)
	assert.Equal(t, 30, c.Score.TopN)
	assert.Equal(t, 7, c.Score.MinExcitement)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PAPERCRAWL_CRAWL_PAPERS_DIR", "/tmp/pc")
	t.Setenv("PAPERCRAWL_STORE_BACKEND", "bolt")
	t.Setenv("PAPERCRAWL_CRAWL_TIMEOUT", "5s")
	initConfig()

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pc", c.Crawl.PapersDir)
	assert.Equal(t, types.StoreBolt, c.Store.Backend)
	assert.Equal(t, filepath.Join("/tmp/pc", "papers.bolt"), c.Store.Path)
	assert.Equal(t, 5*time.Second, c.Crawl.Timeout)
}

func TestDefaultStorePath(t *testing.T) {
	assert.Equal(t, filepath.Join("d", "papers.db"), defaultStorePath("d", ""))
	assert.Equal(t, filepath.Join("d", "papers.bleve"), defaultStorePath("d", types.StoreBleve))
	assert.Equal(t, filepath.Join("d", "papers.bolt"), defaultStorePath("d", types.StoreBolt))
}

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("from", "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDateFlag("from", "")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseDateFlag("to", "03/05/2024")
	assert.ErrorContains(t, err, "--to")
}

func TestBoundFlagWins(t *testing.T) {
	t.Setenv("PAPERCRAWL_CRAWL_MAX_PAGES", "9")
	initConfig()
	require.NoError(t, crawlCmd.Flags().Set("max-pages", "2"))
	t.Cleanup(func() {
		crawlCmd.Flags().Set("max-pages", "0")
		crawlCmd.Flags().Lookup("max-pages").Changed = false
	})

	assert.Equal(t, 2, viper.GetInt("crawl.max_pages"))
}
