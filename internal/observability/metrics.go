// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Paper outcomes recorded by ObservePaper.
const (
	OutcomeStored    = "stored"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Metrics holds the Prometheus collectors for ingestion runs. All methods are
// safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	// RunsTotal counts pipeline runs by trigger ("cli", "admin").
	RunsTotal *prometheus.CounterVec

	// RunDuration observes the wall-clock duration of runs in seconds.
	RunDuration prometheus.Histogram

	// CandidatesFetched counts feed candidates selected for processing.
	CandidatesFetched prometheus.Counter

	// Papers counts processed candidates by outcome.
	Papers *prometheus.CounterVec

	// DraftsCreated counts blog drafts generated.
	DraftsCreated prometheus.Counter

	// LLMFailures counts failed text-generation calls by stage ("summarize", "draft").
	LLMFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "content_engine",
			Name:      "runs_total",
			Help:      "Total number of ingestion runs.",
		}, []string{"trigger"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "content_engine",
			Name:      "run_duration_seconds",
			Help:      "Duration of ingestion runs in seconds.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		CandidatesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "content_engine",
			Name:      "candidates_fetched_total",
			Help:      "Total number of feed candidates selected for processing.",
		}),
		Papers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "content_engine",
			Name:      "papers_total",
			Help:      "Total number of candidates handled, by outcome.",
		}, []string{"outcome"}),
		DraftsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "content_engine",
			Name:      "drafts_created_total",
			Help:      "Total number of blog drafts generated.",
		}),
		LLMFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "content_engine",
			Name:      "llm_failures_total",
			Help:      "Total number of failed text-generation calls, by stage.",
		}, []string{"stage"}),
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(trigger string, started time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(trigger).Inc()
	m.RunDuration.Observe(time.Since(started).Seconds())
}

// ObserveCandidates records the number of candidates a run selected.
func (m *Metrics) ObserveCandidates(n int) {
	if m == nil {
		return
	}
	m.CandidatesFetched.Add(float64(n))
}

// ObservePaper records the outcome of one candidate.
func (m *Metrics) ObservePaper(outcome string) {
	if m == nil {
		return
	}
	m.Papers.WithLabelValues(outcome).Inc()
}

// ObserveDraft records a generated blog draft.
func (m *Metrics) ObserveDraft() {
	if m == nil {
		return
	}
	m.DraftsCreated.Inc()
}

// ObserveLLMFailure records a failed text-generation call.
func (m *Metrics) ObserveLLMFailure(stage string) {
	if m == nil {
		return
	}
	m.LLMFailures.WithLabelValues(stage).Inc()
}
