// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/papercrawl/pkg/types"
)

// AbstractBaseURL is where the per-paper abstract pages live. Tests
// override this to point at a local server.
var AbstractBaseURL = "https://arxiv.org/abs/"

// ArxivParser reads arXiv listing pages: a div#content holding dl lists of
// dt (identifier and links) and dd (title and authors) pairs.
type ArxivParser struct{}

// Source implements Parser.
func (ArxivParser) Source() types.Source { return types.SourceArxiv }

// Parse implements Parser. Entries without an identifier anchor or a
// title element are skipped.
func (ArxivParser) Parse(page *url.URL, doc *goquery.Document, log logrus.FieldLogger) Result {
	var res Result

	content := doc.Find("div#content").First()
	if content.Length() == 0 {
		log.Warn("listing page has no content div")
		return res
	}

	content.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dts := dl.Find("dt")
		dds := dl.Find("dd")
		n := dts.Length()
		if dds.Length() < n {
			n = dds.Length()
		}

		for i := 0; i < n; i++ {
			p, ok := parseEntry(page, dts.Eq(i), dds.Eq(i), log)
			if !ok {
				res.Malformed++
				continue
			}
			res.Papers = append(res.Papers, p)
		}
	})
	return res
}

func parseEntry(page *url.URL, dt, dd *goquery.Selection, log logrus.FieldLogger) (types.Paper, bool) {
	idLink := dt.Find(`a[title="Abstract"]`).First()
	if idLink.Length() == 0 {
		log.Warn("listing entry has no identifier link")
		return types.Paper{}, false
	}
	id := normalizeID(text(idLink))
	if id == "" {
		log.Warn("listing entry has an empty identifier")
		return types.Paper{}, false
	}

	titleEl := dd.Find("div.list-title").First()
	if titleEl.Length() == 0 {
		log.WithField("id", id).Warn("listing entry has no title")
		return types.Paper{}, false
	}

	title := stripLabel(text(titleEl), "Title:")
	if title == "" {
		log.WithField("id", id).Warn("listing entry has an empty title")
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:        id,
		Title:     title,
		Source:    types.SourceArxiv,
		SourceURL: page.String(),
	}

	if authorsEl := dd.Find("div.list-authors").First(); authorsEl.Length() > 0 {
		p.Authors = types.SplitAuthors(stripLabel(text(authorsEl), "Authors:"))
	}
	if len(p.Authors) == 0 {
		p.Authors = []string{types.AuthorsNotFound}
	}

	if href, ok := dt.Find(`a[title="Download PDF"]`).First().Attr("href"); ok && href != "" {
		if u, err := pdfURL(page, href); err == nil {
			p.PDFURL = u
		} else {
			log.WithField("id", id).WithError(err).Warn("unusable PDF link")
		}
	} else {
		log.WithField("id", id).Warn("listing entry has no PDF link")
	}

	return p, true
}

// normalizeID drops the "arXiv:" label listing pages print before the id.
func normalizeID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len("arxiv:") && strings.EqualFold(s[:len("arxiv:")], "arxiv:") {
		s = s[len("arxiv:"):]
	}
	return strings.TrimSpace(s)
}

// pdfURL resolves href against the page and rewrites an abstract-view path
// segment to the PDF view.
func pdfURL(page *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	u := page.ResolveReference(ref)
	if strings.HasPrefix(u.Path, "/abs/") {
		u.Path = "/pdf/" + strings.TrimPrefix(u.Path, "/abs/")
	}
	return u.String(), nil
}

// AbstractURL returns the abstract page for an arXiv identifier.
func AbstractURL(id string) string {
	return AbstractBaseURL + id
}

// AbstractFromPage returns the text of the abstract blockquote with its
// "Abstract:" descriptor removed, or "" when the page has none.
func AbstractFromPage(doc *goquery.Document) string {
	bq := doc.Find("blockquote.abstract").First()
	if bq.Length() == 0 {
		return ""
	}
	bq.Find(".descriptor").Remove()
	return stripLabel(text(bq), "Abstract:")
}
