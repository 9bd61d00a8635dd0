// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the papercrawl pipeline:
// the paper record produced by source parsers and persisted by the record
// store, scoring results, and per-stage configuration.
package types

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for date_saved and for
// filter date ranges.
const DateLayout = "2006-01-02"

// AuthorsNotFound is recorded when a listing entry carries no authors element.
const AuthorsNotFound = "Authors not found"

// Source identifies which site shape a paper was parsed from.
type Source string

const (
	SourceArxiv           Source = "arxiv"
	SourceSemanticScholar Source = "semantic_scholar"
	SourceGoogleScholar   Source = "google_scholar"
)

// Paper is a paper record. Source parsers produce it as a stub; the crawl
// orchestrator enriches it (abstract, PDF) and persists it once.
type Paper struct {
	// ID is the source-assigned identifier (e.g. "2403.01234"). Empty for
	// sources that cannot supply one; such papers are never persisted.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract, empty when neither the PDF nor the
	// abstract page yielded one.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Date is the publication date as reported by the source page, verbatim
	// (a year for Semantic Scholar, empty for Google Scholar and arXiv listings).
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	// DateSaved is the calendar date of ingestion.
	DateSaved time.Time `json:"date_saved" yaml:"date_saved"`

	// PDFPath is the local path of the downloaded PDF.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	// PDFURL is the absolute URL of the PDF, when the source links one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Source identifies the parser that produced the paper.
	Source Source `json:"source,omitempty" yaml:"source,omitempty"`

	// SourceURL is the page the paper was discovered on.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// RelevanceScore and ExcitementScore are written by the scoring stage
	// after ingestion; nil until scored.
	RelevanceScore  *int `json:"relevance_score,omitempty" yaml:"relevance_score,omitempty"`
	ExcitementScore *int `json:"excitement_score,omitempty" yaml:"excitement_score,omitempty"`
}

// AuthorList returns the authors joined the way the source pages print them.
func (p Paper) AuthorList() string {
	return strings.Join(p.Authors, ", ")
}

// FilterDate returns the date the paper filter compares against: the
// source-reported date when present, otherwise the ingestion date of a
// stored record. An unkeyed stub without a source date yields "".
func (p Paper) FilterDate() string {
	if p.Date != "" {
		return p.Date
	}
	if p.ID == "" || p.DateSaved.IsZero() {
		return ""
	}
	return p.DateSaved.Format(DateLayout)
}

// SplitAuthors turns a freeform "Author A, Author B" string into a list,
// dropping empty entries. A blank input yields nil.
func SplitAuthors(s string) []string {
	var authors []string
	for _, a := range strings.Split(s, ",") {
		a = strings.Join(strings.Fields(a), " ")
		if a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

// Score is the scoring stage's judgement of one paper.
type Score struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	RelevanceScore  int    `json:"relevance_score" yaml:"relevance_score"`
	ExcitementScore int    `json:"excitement_score" yaml:"excitement_score"`
	Explanation     string `json:"explanation" yaml:"explanation"`
}
