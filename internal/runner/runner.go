package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/aggregator"
	"github.com/dollet000/dollet-stats/internal/common"
	"github.com/dollet000/dollet-stats/internal/fetcher"
	"github.com/dollet000/dollet-stats/internal/metrics"
)

type RangeResolver interface {
	ResolveRange(ctx context.Context, lookback time.Duration) (common.BlockRange, error)
}

type ReportPublisher interface {
	Publish(ctx context.Context, report *common.AggregateReport) error
}

// SourceFactory returns the indexing service client for a strategy. An error
// fails only that strategy.
type SourceFactory func(strategy common.Strategy) (fetcher.PageSource, error)

type unavailableResolver struct {
	err error
}

func (u unavailableResolver) ResolveRange(context.Context, time.Duration) (common.BlockRange, error) {
	return common.BlockRange{}, u.err
}

// UnavailableResolver stands in for a network whose chain provider could not be
// set up. Every strategy on that network fails with err.
func UnavailableResolver(err error) RangeResolver {
	return unavailableResolver{err: err}
}

type Options struct {
	Lookback time.Duration
	Fetcher  fetcher.Config
}

type RunOption func(*Options)

func WithLookback(lookback time.Duration) RunOption {
	return func(o *Options) {
		if lookback > 0 {
			o.Lookback = lookback
		}
	}
}

func WithPageSize(pageSize int) RunOption {
	return func(o *Options) {
		if pageSize > 0 {
			o.Fetcher.PageSize = pageSize
		}
	}
}

type Runner struct {
	resolvers map[common.Network]RangeResolver
	sources   SourceFactory
	publisher ReportPublisher
	opts      Options
}

func New(resolvers map[common.Network]RangeResolver, sources SourceFactory, publisher ReportPublisher, opts Options) *Runner {
	return &Runner{
		resolvers: resolvers,
		sources:   sources,
		publisher: publisher,
		opts:      opts,
	}
}

// Result is the outcome of one strategy: a report or an error, never both.
type Result struct {
	Strategy common.Strategy
	Report   *common.AggregateReport
	Err      error
	Duration time.Duration
}

func (r Result) Failed() bool {
	return r.Err != nil
}

type Results []Result

func (rs Results) Failures() Results {
	var failed Results
	for _, r := range rs {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

func (rs Results) HasFailures() bool {
	return len(rs.Failures()) > 0
}

// ResolveRange resolves the block range of a strategy's network without fetching pages.
func (r *Runner) ResolveRange(ctx context.Context, network common.Network, opts ...RunOption) (common.BlockRange, error) {
	o := r.options(opts)
	resolver, ok := r.resolvers[network]
	if !ok {
		return common.BlockRange{}, errors.Errorf("no resolver configured for network %s", network)
	}
	return resolver.ResolveRange(ctx, o.Lookback)
}

// Run executes resolve, fetch and aggregate for one strategy.
func (r *Runner) Run(ctx context.Context, strategy common.Strategy, opts ...RunOption) (*common.AggregateReport, error) {
	o := r.options(opts)

	blockRange, err := r.ResolveRange(ctx, strategy.Network, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "strategy %s", strategy.Name)
	}

	source, err := r.sources(strategy)
	if err != nil {
		return nil, errors.Wrapf(err, "strategy %s", strategy.Name)
	}

	f := fetcher.NewFetcher(strategy.Name, source, o.Fetcher)
	header := common.ReportHeader{Name: strategy.Name, Network: strategy.Network, Range: blockRange}
	report, err := aggregator.Aggregate(header, f.Pages(ctx, blockRange))
	if err != nil {
		return nil, errors.Wrapf(err, "strategy %s", strategy.Name)
	}
	return report, nil
}

// RunAll runs strategies one after another. A failing strategy is recorded in
// its Result and the next one still runs; a cancelled context marks the
// remaining strategies as failed without running them.
func (r *Runner) RunAll(ctx context.Context, strategies []common.Strategy) Results {
	results := make(Results, 0, len(strategies))
	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Strategy: strategy, Err: errors.Wrapf(err, "strategy %s not started", strategy.Name)})
			continue
		}

		result := r.runIsolated(ctx, strategy)
		results = append(results, result)

		logger := log.With().Str("strategy", strategy.Name).Dur("duration", result.Duration).Logger()
		if result.Failed() {
			metrics.StrategyRuns.WithLabelValues(strategy.Name, "failed").Inc()
			logger.Error().Err(result.Err).Msg("Strategy run failed")
			continue
		}

		metrics.StrategyRuns.WithLabelValues(strategy.Name, "succeeded").Inc()
		metrics.StrategyTransactions.WithLabelValues(strategy.Name).Set(float64(result.Report.AmountTransactions))
		metrics.StrategyUsers.WithLabelValues(strategy.Name).Set(float64(result.Report.AmountUsers))
		logger.Info().
			Int("amountTransactions", result.Report.AmountTransactions).
			Int("amountUsers", result.Report.AmountUsers).
			Str("sumTxCost", result.Report.SumTxCost.String()).
			Msg("Strategy run finished")

		if r.publisher != nil {
			if err := r.publisher.Publish(ctx, result.Report); err != nil {
				logger.Error().Err(err).Msg("Report was not delivered to every sink")
			}
		}
	}
	return results
}

func (r *Runner) runIsolated(ctx context.Context, strategy common.Strategy) (result Result) {
	start := time.Now()
	result.Strategy = strategy
	defer func() {
		if rec := recover(); rec != nil {
			result.Report = nil
			result.Err = errors.Errorf("strategy %s panicked: %v", strategy.Name, rec)
		}
		result.Duration = time.Since(start)
		metrics.StrategyRunDuration.WithLabelValues(strategy.Name).Observe(result.Duration.Seconds())
	}()

	result.Report, result.Err = r.Run(ctx, strategy)
	return result
}

func (r *Runner) options(opts []RunOption) Options {
	o := r.opts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (r Result) String() string {
	if r.Failed() {
		return fmt.Sprintf("%s: failed: %v", r.Strategy.Name, r.Err)
	}
	return fmt.Sprintf("%s: %d transactions from %d users", r.Strategy.Name, r.Report.AmountTransactions, r.Report.AmountUsers)
}
