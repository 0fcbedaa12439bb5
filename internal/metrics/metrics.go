// Package metrics registers the Prometheus collectors for the lead pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchDuration observes end-to-end orchestrator fetches by lead source used.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealscout_fetch_duration_seconds",
			Help:    "Duration of lead fetches including enrichment",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// SourceFailures counts lead-source errors by source name.
	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscout_source_failures_total",
			Help: "Total number of lead source failures",
		},
		[]string{"source"},
	)

	// FallbackInvocations counts fallback-source searches by trigger reason.
	FallbackInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscout_fallback_invocations_total",
			Help: "Total number of fallback lead source invocations",
		},
		[]string{"reason"},
	)

	// LeadsEnriched counts profiles produced by the signal fan-out.
	LeadsEnriched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dealscout_leads_enriched_total",
			Help: "Total number of leads enriched with signals and scores",
		},
	)

	// SignalFailures counts soft signal failures by signal kind.
	SignalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscout_signal_failures_total",
			Help: "Total number of signal provider failures degraded to absent signals",
		},
		[]string{"signal"},
	)

	// DemographicLookups counts demographic cache lookups by outcome
	// (hit, store_hit, provider, synthetic).
	DemographicLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscout_demographic_lookups_total",
			Help: "Total number of demographic signal lookups by outcome",
		},
		[]string{"outcome"},
	)

	// CircuitTransitions counts circuit breaker state changes by collaborator
	// and target state.
	CircuitTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealscout_circuit_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"collaborator", "to"},
	)

	// CircuitOpen is 1 while a collaborator's circuit is open.
	CircuitOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dealscout_circuit_open",
			Help: "Whether a collaborator's circuit breaker is open (1) or not (0)",
		},
		[]string{"collaborator"},
	)

	// DemographicCacheEntries tracks the in-process demographic cache size.
	DemographicCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dealscout_demographic_cache_entries",
			Help: "Number of entries in the in-process demographic cache",
		},
	)
)

// Fallback trigger reasons.
const (
	ReasonPrimaryEmpty = "primary_empty"
	ReasonPrimaryError = "primary_error"
	ReasonNoPrimary    = "no_primary"
)

// ObserveCircuit records a breaker transition for collaborator.
func ObserveCircuit(collaborator, to string) {
	CircuitTransitions.WithLabelValues(collaborator, to).Inc()
	open := 0.0
	if to == "open" {
		open = 1
	}
	CircuitOpen.WithLabelValues(collaborator).Set(open)
}
