// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl runs ingestion: it fetches source pages, turns them into
// paper stubs, enriches unseen papers with a PDF and abstract, and
// persists each one exactly once.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/papercrawl/internal/extract"
	"github.com/pdiddy/papercrawl/internal/httputil"
	"github.com/pdiddy/papercrawl/internal/log"
	"github.com/pdiddy/papercrawl/internal/source"
	"github.com/pdiddy/papercrawl/internal/store"
	"github.com/pdiddy/papercrawl/pkg/types"
)

// BatchResult holds the outcome of an ingestion run.
type BatchResult struct {
	// RunID identifies the run in logs.
	RunID string

	// Papers holds every stub produced in this run that was not skipped,
	// in input URL order and then page order.
	Papers []types.Paper

	// New counts persisted papers; Skipped counts papers already stored;
	// Invalid counts malformed listing entries; Unkeyed counts stubs
	// without an identifier, which are returned but never persisted.
	New     int
	Skipped int
	Invalid int
	Unkeyed int

	// FailedURLs lists inputs whose page could not be fetched or parsed.
	FailedURLs []string

	// UnknownURLs lists inputs that match no supported site.
	UnknownURLs []string
}

// Total returns the number of stubs seen.
func (r BatchResult) Total() int {
	return r.New + r.Skipped + r.Invalid + r.Unkeyed
}

// HasFailures reports whether any input URL failed.
func (r BatchResult) HasFailures() bool {
	return len(r.FailedURLs) > 0
}

// Crawler is the ingestion orchestrator. It holds the store handle for
// its lifetime; the caller opens and closes the store.
type Crawler struct {
	store     store.Store
	extractor extract.Extractor
	cfg       types.CrawlConfig
	client    *http.Client
	log       logrus.FieldLogger
	metrics   *Metrics
	out       io.Writer
	now       func() time.Time
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithHTTPClient replaces the client built from the crawl config.
func WithHTTPClient(c *http.Client) Option {
	return func(cr *Crawler) { cr.client = c }
}

// WithLogger sets the logger; the default discards.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cr *Crawler) { cr.log = l }
}

// WithMetrics records counters in m.
func WithMetrics(m *Metrics) Option {
	return func(cr *Crawler) { cr.metrics = m }
}

// WithOutput prints per-paper progress lines and the batch summary to w.
// Writes are serialized, so w need not be safe for concurrent use.
func WithOutput(w io.Writer) Option {
	return func(cr *Crawler) { cr.out = &lockedWriter{w: w} }
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// WithClock overrides the clock used for date_saved.
func WithClock(now func() time.Time) Option {
	return func(cr *Crawler) { cr.now = now }
}

// New returns a Crawler that persists into s.
func New(s store.Store, ext extract.Extractor, cfg types.CrawlConfig, opts ...Option) *Crawler {
	c := &Crawler{
		store:     s,
		extractor: ext,
		cfg:       cfg,
		client:    httputil.NewClient(cfg.HTTPConfig),
		log:       log.Discard(),
		out:       io.Discard,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// urlResult is the outcome of one input URL.
type urlResult struct {
	papers  []types.Paper
	new     int
	skipped int
	invalid int
	unkeyed int
	failed  bool
	unknown bool
}

// Crawl ingests every URL. Page-level and enrichment failures are logged
// and recorded in the result; only store errors and cancellation abort the
// run, in which case the partial result is returned with the error.
func (c *Crawler) Crawl(ctx context.Context, urls []string) (BatchResult, error) {
	runID := uuid.NewString()
	logger := c.log.WithField("run_id", runID)
	today := dateOnly(c.now())
	claims := newClaimSet()

	logger.WithField("urls", len(urls)).Info("starting crawl")

	results := make([]urlResult, len(urls))
	var err error
	if c.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, u := range urls {
			i, u := i, u
			g.Go(func() error {
				var uerr error
				results[i], uerr = c.crawlURL(gctx, logger, u, today, claims)
				return uerr
			})
		}
		err = g.Wait()
	} else {
		for i, u := range urls {
			results[i], err = c.crawlURL(ctx, logger, u, today, claims)
			if err != nil {
				break
			}
		}
	}

	batch := BatchResult{RunID: runID}
	for i, r := range results {
		batch.Papers = append(batch.Papers, r.papers...)
		batch.New += r.new
		batch.Skipped += r.skipped
		batch.Invalid += r.invalid
		batch.Unkeyed += r.unkeyed
		if r.failed {
			batch.FailedURLs = append(batch.FailedURLs, urls[i])
		}
		if r.unknown {
			batch.UnknownURLs = append(batch.UnknownURLs, urls[i])
		}
	}

	fmt.Fprintf(c.out, "\nBatch summary: %d new, %d skipped, %d invalid, %d unkeyed, %d failed URLs (total: %d)\n",
		batch.New, batch.Skipped, batch.Invalid, batch.Unkeyed, len(batch.FailedURLs), batch.Total())
	logger.WithFields(logrus.Fields{
		"new":         batch.New,
		"skipped":     batch.Skipped,
		"invalid":     batch.Invalid,
		"unkeyed":     batch.Unkeyed,
		"failed_urls": len(batch.FailedURLs),
	}).Info("crawl finished")

	if err != nil {
		return batch, fmt.Errorf("crawl %s aborted: %w", runID, err)
	}
	return batch, nil
}

// crawlURL fetches one page and processes its stubs. The returned error is
// fatal to the run.
func (c *Crawler) crawlURL(ctx context.Context, runLog logrus.FieldLogger, rawURL string, today time.Time, claims *claimSet) (urlResult, error) {
	var res urlResult
	logger := runLog.WithField("url", rawURL)

	parser, ok := source.Dispatch(rawURL)
	if !ok {
		logger.Warn("no parser for URL")
		fmt.Fprintf(c.out, "skipped: %s (unknown source)\n", rawURL)
		res.unknown = true
		return res, nil
	}

	page, err := url.Parse(rawURL)
	if err != nil {
		logger.WithError(err).Error("invalid URL")
		fmt.Fprintf(c.out, "failed:  %s (%v)\n", rawURL, err)
		res.failed = true
		return res, nil
	}

	body, err := httputil.Get(ctx, c.client, c.cfg.HTTPConfig, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		logger.WithError(err).Error("fetching page failed")
		c.metrics.failure(StagePage)
		fmt.Fprintf(c.out, "failed:  %s (%v)\n", rawURL, err)
		res.failed = true
		return res, nil
	}
	c.metrics.page(string(parser.Source()))

	doc, err := source.ParseHTML(body)
	if err != nil {
		logger.WithError(err).Error("parsing page failed")
		fmt.Fprintf(c.out, "failed:  %s (%v)\n", rawURL, err)
		res.failed = true
		return res, nil
	}

	parsed := parser.Parse(page, doc, logger)
	res.invalid = parsed.Malformed
	c.metrics.paper(OutcomeInvalid, parsed.Malformed)
	logger.WithField("papers", len(parsed.Papers)).Info("parsed page")

	for _, stub := range parsed.Papers {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		stub.DateSaved = today
		if stub.ID == "" {
			res.unkeyed++
			c.metrics.paper(OutcomeUnkeyed, 1)
			res.papers = append(res.papers, stub)
			continue
		}

		plog := logger.WithField("id", stub.ID)
		seen, err := c.seen(ctx, claims, stub.ID)
		if err != nil {
			return res, err
		}
		if seen {
			plog.Info("already stored, skipping")
			fmt.Fprintf(c.out, "skipped: %s (already stored)\n", stub.ID)
			res.skipped++
			c.metrics.paper(OutcomeSkipped, 1)
			continue
		}

		p := c.enrich(ctx, plog, stub)
		if err := c.store.Upsert(ctx, p); err != nil {
			if errors.Is(err, store.ErrInvalid) {
				plog.WithError(err).Warn("not persisting invalid paper")
				res.invalid++
				c.metrics.paper(OutcomeInvalid, 1)
				continue
			}
			plog.WithError(err).Error("persisting paper failed")
			return res, fmt.Errorf("persisting %s: %w", p.ID, err)
		}

		fmt.Fprintf(c.out, "new:     %s\n", p.ID)
		res.new++
		c.metrics.paper(OutcomeNew, 1)
		res.papers = append(res.papers, p)
	}
	return res, nil
}

// seen reports whether id was stored before or already claimed in this run.
func (c *Crawler) seen(ctx context.Context, claims *claimSet, id string) (bool, error) {
	if !claims.claim(id) {
		return true, nil
	}
	exists, err := c.store.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", id, err)
	}
	return exists, nil
}

// claimSet hands each id to at most one worker per run.
type claimSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newClaimSet() *claimSet {
	return &claimSet{ids: make(map[string]struct{})}
}

// claim returns false when id was already claimed.
func (s *claimSet) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
