// Package observability exposes the Prometheus collectors for the progression engine.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wyr"

// Metrics groups every collector the services report to.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	energySpent         prometheus.Counter
	energyRefills       prometheus.Counter
	writeFailures       *prometheus.CounterVec
	xpAwarded           *prometheus.CounterVec
	levelUps            prometheus.Counter
	dailyLogins         *prometheus.CounterVec
	streakMilestones    *prometheus.CounterVec
	plays               *prometheus.CounterVec
	leaderboardQueries  *prometheus.CounterVec
	leaderboardDuration *prometheus.HistogramVec
	enrichmentLookups   *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers the collectors with reg. Passing a fresh registry per test
// avoids duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		energySpent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "energy",
			Name:      "spent_total",
			Help:      "Energy points consumed by players.",
		}),
		energyRefills: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "energy",
			Name:      "refills_total",
			Help:      "Number of energy refills.",
		}),
		writeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progression",
			Name:      "write_failures_total",
			Help:      "Best-effort progression writes that failed, by step.",
		}, []string{"step"}),
		xpAwarded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "experience",
			Name:      "awarded_total",
			Help:      "Experience points awarded, by reason.",
		}, []string{"reason"}),
		levelUps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "experience",
			Name:      "level_ups_total",
			Help:      "Number of awards that crossed a level threshold.",
		}),
		dailyLogins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "streak",
			Name:      "daily_logins_total",
			Help:      "Daily login checks, by outcome.",
		}, []string{"outcome"}),
		streakMilestones: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "streak",
			Name:      "milestones_total",
			Help:      "Streak milestones reached, by streak length.",
		}, []string{"days"}),
		plays: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "plays_total",
			Help:      "Play attempts, by result.",
		}, []string{"result"}),
		leaderboardQueries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "queries_total",
			Help:      "Leaderboard queries, by period.",
		}, []string{"period"}),
		leaderboardDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "query_duration_seconds",
			Help:      "Time spent resolving a leaderboard.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"period"}),
		enrichmentLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "enrichment_lookups_total",
			Help:      "Identity enrichment lookups, by cache result.",
		}, []string{"result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// NewNop returns metrics bound to a private registry
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) AddEnergySpent(amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.energySpent.Add(float64(amount))
}

func (m *Metrics) IncEnergyRefill() {
	if m == nil {
		return
	}
	m.energyRefills.Inc()
}

// IncWriteFailure counts a failed best-effort write at the given step
func (m *Metrics) IncWriteFailure(step string) {
	if m == nil {
		return
	}
	m.writeFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) AddXPAwarded(reason string, amount int) {
	if m == nil || amount <= 0 {
		return
	}
	m.xpAwarded.WithLabelValues(reason).Add(float64(amount))
}

func (m *Metrics) IncLevelUp() {
	if m == nil {
		return
	}
	m.levelUps.Inc()
}

// IncDailyLogin counts a login check; outcome is "first" or "repeat"
func (m *Metrics) IncDailyLogin(outcome string) {
	if m == nil {
		return
	}
	m.dailyLogins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncStreakMilestone(days int) {
	if m == nil {
		return
	}
	m.streakMilestones.WithLabelValues(strconv.Itoa(days)).Inc()
}

func (m *Metrics) IncPlay(result string) {
	if m == nil {
		return
	}
	m.plays.WithLabelValues(result).Inc()
}

// ObserveLeaderboard records one leaderboard query
func (m *Metrics) ObserveLeaderboard(period string, d time.Duration) {
	if m == nil {
		return
	}
	m.leaderboardQueries.WithLabelValues(period).Inc()
	m.leaderboardDuration.WithLabelValues(period).Observe(d.Seconds())
}

// IncEnrichment counts an identity lookup; result is "hit", "miss" or "error"
func (m *Metrics) IncEnrichment(result string) {
	if m == nil {
		return
	}
	m.enrichmentLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
