// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter selects paper records by keyword, author, and date.
package filter

import (
	"strings"
	"time"

	"github.com/pdiddy/papercrawl/pkg/types"
)

// Filter is a pure predicate over paper records. The zero value matches
// every record.
type Filter struct {
	cfg types.FilterConfig
}

// New returns a filter for cfg.
func New(cfg types.FilterConfig) Filter {
	return Filter{cfg: cfg}
}

// Match reports whether p passes all three criteria.
func (f Filter) Match(p types.Paper) bool {
	return f.matchKeywords(p) && f.matchAuthors(p) && f.matchDate(p)
}

// Apply returns the records that pass, in input order.
func (f Filter) Apply(papers []types.Paper) []types.Paper {
	var out []types.Paper
	for _, p := range papers {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// matchKeywords passes when any keyword occurs in the title or abstract,
// ignoring case.
func (f Filter) matchKeywords(p types.Paper) bool {
	if len(f.cfg.Keywords) == 0 {
		return true
	}
	title := strings.ToLower(p.Title)
	abstract := strings.ToLower(p.Abstract)
	for _, k := range f.cfg.Keywords {
		k = strings.ToLower(k)
		if strings.Contains(title, k) || strings.Contains(abstract, k) {
			return true
		}
	}
	return false
}

// matchAuthors passes when any author term occurs in the author list,
// ignoring case.
func (f Filter) matchAuthors(p types.Paper) bool {
	if len(f.cfg.Authors) == 0 {
		return true
	}
	authors := strings.ToLower(p.AuthorList())
	for _, a := range f.cfg.Authors {
		if strings.Contains(authors, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

// matchDate passes when the paper's date lies within the inclusive range.
// A date that does not parse as YYYY-MM-DD passes.
func (f Filter) matchDate(p types.Paper) bool {
	if f.cfg.StartDate.IsZero() && f.cfg.EndDate.IsZero() {
		return true
	}
	d, err := time.Parse(types.DateLayout, p.FilterDate())
	if err != nil {
		return true
	}
	if !f.cfg.StartDate.IsZero() && d.Before(f.cfg.StartDate) {
		return false
	}
	if !f.cfg.EndDate.IsZero() && d.After(f.cfg.EndDate) {
		return false
	}
	return true
}
