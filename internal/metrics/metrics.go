package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "miniapp"

// Point sources.
const (
	SourceMining   = "mining"
	SourceTask     = "task"
	SourceReferral = "referral"
)

// Purchase outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient_funds"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_time_seconds",
			Help:      "Histogram of response times",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PointsCreditedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_credited_total",
			Help:      "Points credited to user balances",
		},
		[]string{"source"},
	)

	PointsDebitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_debited_total",
			Help:      "Points spent on boosts",
		},
	)

	BoostPurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boost_purchases_total",
			Help:      "Boost purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	TaskCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_completions_total",
			Help:      "Tasks completed by task type",
		},
		[]string{"type"},
	)

	ReferralsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "referrals_recorded_total",
			Help:      "Referrals that credited a bonus",
		},
	)

	SweepRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_rows_total",
			Help:      "Rows changed by maintenance sweeps",
		},
		[]string{"job"},
	)

	SweepFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_failures_total",
			Help:      "Failed maintenance sweeps",
		},
		[]string{"job"},
	)
)
