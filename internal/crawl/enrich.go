// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/papercrawl/internal/extract"
	"github.com/pdiddy/papercrawl/internal/httputil"
	"github.com/pdiddy/papercrawl/internal/source"
	"github.com/pdiddy/papercrawl/pkg/types"
)

// enrich adds the PDF path and abstract to an unseen stub. Every failure
// here degrades to an absent field.
func (c *Crawler) enrich(ctx context.Context, log logrus.FieldLogger, p types.Paper) types.Paper {
	if p.PDFURL != "" {
		data, err := httputil.Get(ctx, c.client, c.cfg.HTTPConfig, p.PDFURL)
		if err != nil {
			log.WithError(err).Warn("downloading PDF failed")
			c.metrics.failure(StagePDF)
		} else {
			if path, err := c.savePDF(p, data); err != nil {
				log.WithError(err).Warn("saving PDF failed")
			} else {
				p.PDFPath = path
			}
			p.Abstract = c.abstractFromPDF(ctx, log, data)
			if p.Abstract != "" {
				c.metrics.abstract(MethodPDF)
				return p
			}
		}
	}

	p.Abstract = c.abstractFromPage(ctx, log, p.ID)
	if p.Abstract != "" {
		c.metrics.abstract(MethodPage)
	} else {
		log.Warn("no abstract found")
		c.metrics.abstract(MethodNone)
	}
	return p
}

func (c *Crawler) abstractFromPDF(ctx context.Context, log logrus.FieldLogger, data []byte) string {
	if c.extractor == nil {
		return ""
	}
	text, err := c.extractor.Extract(ctx, data)
	if err != nil {
		log.WithError(err).Warn("extracting PDF text failed")
		c.metrics.failure(StageExtract)
		return ""
	}
	return extract.LocateAbstract(text)
}

func (c *Crawler) abstractFromPage(ctx context.Context, log logrus.FieldLogger, id string) string {
	body, err := httputil.Get(ctx, c.client, c.cfg.HTTPConfig, source.AbstractURL(id))
	if err != nil {
		log.WithError(err).Warn("fetching abstract page failed")
		c.metrics.failure(StageAbstractPage)
		return ""
	}
	doc, err := source.ParseHTML(body)
	if err != nil {
		log.WithError(err).Warn("parsing abstract page failed")
		c.metrics.failure(StageAbstractPage)
		return ""
	}
	return source.AbstractFromPage(doc)
}

// savePDF writes data to <papers_dir>/<date_saved>/<id>.pdf through a
// temporary file so a partial download never appears under the final name.
func (c *Crawler) savePDF(p types.Paper, data []byte) (string, error) {
	if c.cfg.PapersDir == "" {
		return "", fmt.Errorf("no papers directory configured")
	}
	dir := filepath.Join(c.cfg.PapersDir, p.DateSaved.Format(types.DateLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	destPath := filepath.Join(dir, pdfFileName(p.ID))

	tmpFile, err := os.CreateTemp(dir, ".crawl-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing PDF: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}

// pdfFileName flattens old-style ids such as "hep-th/9901001".
func pdfFileName(id string) string {
	return strings.ReplaceAll(id, "/", "_") + ".pdf"
}
