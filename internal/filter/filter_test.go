// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/papercrawl/pkg/types"
)

func date(s string) time.Time {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func gnnPaper() types.Paper {
	return types.Paper{
		ID:      "2403.00001",
		Title:   "Graph Neural Networks",
		Authors: []string{"Alice Smith"},
		Date:    "2024-03-01",
	}
}

func TestFilterComposition(t *testing.T) {
	cfg := types.FilterConfig{
		Keywords:  []string{"graph"},
		Authors:   []string{"smith"},
		StartDate: date("2024-01-01"),
		EndDate:   date("2024-06-01"),
	}
	assert.True(t, New(cfg).Match(gnnPaper()))

	cfg.Keywords = []string{"robotics"}
	assert.False(t, New(cfg).Match(gnnPaper()))
}

func TestFilterCriteria(t *testing.T) {
	p := gnnPaper()
	p.Abstract = "We apply message passing to molecules."

	tests := []struct {
		name string
		cfg  types.FilterConfig
		want bool
	}{
		{"zero value matches", types.FilterConfig{}, true},
		{"keyword in abstract", types.FilterConfig{Keywords: []string{"MOLECULES"}}, true},
		{"any keyword", types.FilterConfig{Keywords: []string{"robotics", "message"}}, true},
		{"keyword miss", types.FilterConfig{Keywords: []string{"vision"}}, false},
		{"author miss", types.FilterConfig{Authors: []string{"jones"}}, false},
		{"any author", types.FilterConfig{Authors: []string{"jones", "ALICE"}}, true},
		{"before range", types.FilterConfig{StartDate: date("2024-03-02")}, false},
		{"after range", types.FilterConfig{EndDate: date("2024-02-29")}, false},
		{"start inclusive", types.FilterConfig{StartDate: date("2024-03-01")}, true},
		{"end inclusive", types.FilterConfig{EndDate: date("2024-03-01")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.cfg).Match(p))
		})
	}
}

func TestFilterUnparsableDatePasses(t *testing.T) {
	p := gnnPaper()
	p.Date = "2017"
	cfg := types.FilterConfig{StartDate: date("2024-01-01")}
	assert.True(t, New(cfg).Match(p))
}

func TestFilterFallsBackToDateSaved(t *testing.T) {
	p := gnnPaper()
	p.Date = ""
	p.DateSaved = date("2023-12-31")
	cfg := types.FilterConfig{StartDate: date("2024-01-01")}
	assert.False(t, New(cfg).Match(p))
}

func TestFilterUndatedUnkeyedStubPasses(t *testing.T) {
	stub := types.Paper{
		Title:     "Graph Neural Networks",
		Authors:   []string{"Alice Smith"},
		Source:    types.SourceGoogleScholar,
		DateSaved: date("2026-10-19"),
	}
	cfg := types.FilterConfig{StartDate: date("2024-01-01"), EndDate: date("2024-06-01")}
	assert.True(t, New(cfg).Match(stub))
	assert.Empty(t, stub.FilterDate())
}

func TestApplyKeepsOrder(t *testing.T) {
	a := gnnPaper()
	b := gnnPaper()
	b.ID, b.Title = "2403.00002", "Robot Arms"
	c := gnnPaper()
	c.ID, c.Title = "2403.00003", "Graph Transformers"

	got := New(types.FilterConfig{Keywords: []string{"graph"}}).Apply([]types.Paper{a, b, c})
	assert.Len(t, got, 2)
	assert.Equal(t, "2403.00001", got[0].ID)
	assert.Equal(t, "2403.00003", got[1].ID)
}
