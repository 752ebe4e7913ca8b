package handlers

import (
	"context"
	"sync"

	"github.com/dollet000/dollet-stats/internal/common"
	"github.com/dollet000/dollet-stats/internal/runner"
)

// StrategyRunner runs the statistics pipeline on demand.
type StrategyRunner interface {
	Run(ctx context.Context, strategy common.Strategy, opts ...runner.RunOption) (*common.AggregateReport, error)
	ResolveRange(ctx context.Context, network common.Network, opts ...runner.RunOption) (common.BlockRange, error)
}

// package-level state shared by all handlers
var (
	statsRunner StrategyRunner
	strategies  []common.Strategy
	initOnce    sync.Once
)

// Init sets the runner and the configured strategies served by the handlers.
func Init(r StrategyRunner, configured []common.Strategy) {
	initOnce.Do(func() {
		statsRunner = r
		strategies = configured
	})
}

func findStrategy(name string) (common.Strategy, bool) {
	for _, s := range strategies {
		if s.Name == name {
			return s, true
		}
	}
	return common.Strategy{}, false
}
