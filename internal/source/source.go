// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source parses the three supported listing and search page shapes
// into paper stubs. A stub carries whatever the page shows; enrichment and
// persistence belong to the crawl orchestrator.
package source

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/papercrawl/pkg/types"
)

// Result is the outcome of parsing one page.
type Result struct {
	// Papers holds stubs in document order.
	Papers []types.Paper

	// Malformed counts entries skipped because a required element was missing.
	Malformed int
}

// Parser turns one fetched page into stubs.
type Parser interface {
	// Source names the site shape the parser understands.
	Source() types.Source

	// Parse reads doc, which was fetched from page. Missing elements are
	// logged on log and never returned as errors.
	Parse(page *url.URL, doc *goquery.Document, log logrus.FieldLogger) Result
}

// route maps a URL substring to its parser. The first match wins.
type route struct {
	host   string
	parser Parser
}

var routes = []route{
	{"arxiv.org", ArxivParser{}},
	{"semanticscholar.org", SemanticScholarParser{}},
	{"scholar.google.com", GoogleScholarParser{}},
}

// Dispatch returns the parser for rawURL by plain substring match. The
// boolean is false when no known site matches.
func Dispatch(rawURL string) (Parser, bool) {
	for _, r := range routes {
		if strings.Contains(rawURL, r.host) {
			return r.parser, true
		}
	}
	return nil, false
}

// ParseHTML builds a goquery document from a response body.
func ParseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// text returns the collapsed text of s.
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// stripLabel removes the first occurrence of label, as in "Title:" on
// listing pages, and trims the result.
func stripLabel(s, label string) string {
	return strings.TrimSpace(strings.Replace(s, label, "", 1))
}
