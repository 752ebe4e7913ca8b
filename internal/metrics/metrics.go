package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolver Metrics
var (
	ChainHead = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stats_chain_head",
		Help: "The latest block number reported by the network's RPC",
	}, []string{"network"})

	ResolvedFromBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stats_resolved_from_block",
		Help: "The block number at the start of the lookback window",
	}, []string{"network"})
)

// Fetcher Metrics
var (
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_pages_fetched_total",
		Help: "The total number of user pages fetched from the indexing service",
	}, []string{"strategy"})

	PageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_page_failures_total",
		Help: "The total number of user pages skipped after a failure",
	}, []string{"strategy"})

	PageRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_page_retries_total",
		Help: "The total number of page request retries",
	}, []string{"strategy"})
)

// Runner Metrics
var (
	StrategyRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_strategy_runs_total",
		Help: "The total number of strategy runs by outcome",
	}, []string{"strategy", "status"})

	StrategyRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stats_strategy_run_duration_seconds",
		Help:    "Time taken to resolve, fetch and aggregate one strategy",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	StrategyTransactions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stats_strategy_transactions",
		Help: "The number of transactions in the last report of a strategy",
	}, []string{"strategy"})

	StrategyUsers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stats_strategy_users",
		Help: "The number of users with at least one transaction in the last report of a strategy",
	}, []string{"strategy"})
)

// Publisher Metrics
var (
	ReportsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_reports_published_total",
		Help: "The number of reports delivered to a sink",
	}, []string{"sink"})

	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stats_report_publish_failures_total",
		Help: "The number of reports a sink failed to deliver",
	}, []string{"sink"})
)

// API Metrics
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stats_api_request_duration_seconds",
		Help:    "Time taken to serve an API request",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
