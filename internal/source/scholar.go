// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/papercrawl/pkg/types"
)

// SemanticScholarParser reads Semantic Scholar search results. Results
// carry no identifier and no PDF link.
type SemanticScholarParser struct{}

// Source implements Parser.
func (SemanticScholarParser) Source() types.Source { return types.SourceSemanticScholar }

// Parse implements Parser. Missing child elements leave the field empty.
func (SemanticScholarParser) Parse(page *url.URL, doc *goquery.Document, log logrus.FieldLogger) Result {
	var res Result
	doc.Find("div.search-result-item").Each(func(_ int, item *goquery.Selection) {
		p := types.Paper{
			Title:     text(item.Find("a.search-result-title").First()),
			Authors:   types.SplitAuthors(text(item.Find("span.author-list").First())),
			Abstract:  text(item.Find("span.abstract").First()),
			Date:      text(item.Find("span.year").First()),
			Source:    types.SourceSemanticScholar,
			SourceURL: page.String(),
		}
		if p.Title == "" {
			log.Warn("search result has no title")
		}
		res.Papers = append(res.Papers, p)
	})
	return res
}

// GoogleScholarParser reads Google Scholar result snippets. Snippets carry
// no identifier, no PDF link, and no date.
type GoogleScholarParser struct{}

// Source implements Parser.
func (GoogleScholarParser) Source() types.Source { return types.SourceGoogleScholar }

// Parse implements Parser.
func (GoogleScholarParser) Parse(page *url.URL, doc *goquery.Document, log logrus.FieldLogger) Result {
	var res Result
	doc.Find("div.gs_r").Each(func(_ int, item *goquery.Selection) {
		p := types.Paper{
			Title:     text(item.Find("h3.gs_rt").First()),
			Authors:   scholarAuthors(text(item.Find("div.gs_a").First())),
			Abstract:  text(item.Find("div.gs_rs").First()),
			Source:    types.SourceGoogleScholar,
			SourceURL: page.String(),
		}
		if p.Title == "" {
			log.Warn("scholar snippet has no title")
		}
		res.Papers = append(res.Papers, p)
	})
	return res
}

// scholarAuthors keeps the author part of a byline such as
// "A Smith, B Jones - Journal of X, 2020 - publisher.com".
func scholarAuthors(byline string) []string {
	if i := strings.Index(byline, " - "); i >= 0 {
		byline = byline[:i]
	}
	byline = strings.TrimSuffix(strings.TrimSpace(byline), "…")
	return types.SplitAuthors(byline)
}
