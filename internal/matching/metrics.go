// internal/matching/metrics.go
// Prometheus metrics for the matching pipeline

package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks matching activity
type Metrics struct {
	DiscoveriesTotal  prometheus.Counter
	CandidatesScored  prometheus.Counter
	MatchScores       prometheus.Histogram
	MatchesCreated    prometheus.Counter
	MatchesByOutcome  *prometheus.CounterVec
	SessionsScheduled prometheus.Counter
	DiscoveryDuration prometheus.Histogram
}

// NewMetrics registers matching metrics with the default registry
func NewMetrics() *Metrics {
	return &Metrics{
		DiscoveriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillbarter_match_discoveries_total",
			Help: "Total number of match discovery requests",
		}),
		CandidatesScored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillbarter_match_candidates_scored_total",
			Help: "Total number of candidates scored during discovery",
		}),
		MatchScores: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillbarter_match_scores",
			Help:    "Distribution of computed match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		MatchesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillbarter_matches_created_total",
			Help: "Total number of match requests created",
		}),
		MatchesByOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbarter_match_outcomes_total",
			Help: "Match transitions by outcome",
		}, []string{"outcome"}),
		SessionsScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "skillbarter_sessions_scheduled_total",
			Help: "Total number of sessions scheduled",
		}),
		DiscoveryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillbarter_match_discovery_duration_seconds",
			Help:    "Time spent running match discovery",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
