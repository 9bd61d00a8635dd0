// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch stages reported in papercrawl_fetch_failures_total.
const (
	StagePage         = "page"
	StagePDF          = "pdf"
	StageExtract      = "extract"
	StageAbstractPage = "abstract_page"
)

// Paper outcomes reported in papercrawl_papers_total.
const (
	OutcomeNew     = "new"
	OutcomeSkipped = "skipped"
	OutcomeInvalid = "invalid"
	OutcomeUnkeyed = "unkeyed"
)

// Abstract sources reported in papercrawl_abstracts_total.
const (
	MethodPDF  = "pdf"
	MethodPage = "page"
	MethodNone = "none"
)

// Metrics counts crawl activity. A nil *Metrics records nothing.
type Metrics struct {
	PagesFetched  *prometheus.CounterVec
	FetchFailures *prometheus.CounterVec
	Papers        *prometheus.CounterVec
	Abstracts     *prometheus.CounterVec
}

// NewMetrics creates the crawl counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papercrawl_pages_fetched_total",
			Help: "Source pages fetched, by source.",
		}, []string{"source"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papercrawl_fetch_failures_total",
			Help: "Failed fetch or extraction steps, by stage.",
		}, []string{"stage"}),
		Papers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papercrawl_papers_total",
			Help: "Paper stubs seen, by outcome.",
		}, []string{"outcome"}),
		Abstracts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papercrawl_abstracts_total",
			Help: "Persisted papers, by where the abstract came from.",
		}, []string{"method"}),
	}
	reg.MustRegister(m.PagesFetched, m.FetchFailures, m.Papers, m.Abstracts)
	return m
}

func (m *Metrics) page(source string) {
	if m != nil {
		m.PagesFetched.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) failure(stage string) {
	if m != nil {
		m.FetchFailures.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) paper(outcome string, n int) {
	if m != nil && n > 0 {
		m.Papers.WithLabelValues(outcome).Add(float64(n))
	}
}

func (m *Metrics) abstract(method string) {
	if m != nil {
		m.Abstracts.WithLabelValues(method).Inc()
	}
}

// WriteMetrics writes everything gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteMetrics(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
