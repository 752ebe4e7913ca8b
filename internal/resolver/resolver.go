package resolver

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/common"
	"github.com/dollet000/dollet-stats/internal/metrics"
)

type ChainProvider interface {
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
}

type BlockExplorer interface {
	GetBlockNumberByTime(ctx context.Context, timestamp int64) (uint64, error)
}

// Resolver turns a lookback window into a block range on one network.
type Resolver struct {
	network  common.Network
	chain    ChainProvider
	explorer BlockExplorer
	now      func() time.Time
}

type ResolverOption func(*Resolver)

func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func NewResolver(network common.Network, chain ChainProvider, explorer BlockExplorer, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		network:  network,
		chain:    chain,
		explorer: explorer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Network() common.Network {
	return r.network
}

// ResolveRange returns [block at or before now-lookback, current head].
// Nothing is retried: any failure is fatal for the caller's run.
func (r *Resolver) ResolveRange(ctx context.Context, lookback time.Duration) (common.BlockRange, error) {
	if lookback < time.Second {
		return common.BlockRange{}, errors.Errorf("lookback must be at least one second, got %s", lookback)
	}
	timestamp := r.now().Unix() - int64(lookback/time.Second)

	head, err := r.chain.GetLatestBlockNumber(ctx)
	if err != nil {
		return common.BlockRange{}, errors.Wrapf(err, "failed to get current block on %s", r.network)
	}

	fromBlock, err := r.explorer.GetBlockNumberByTime(ctx, timestamp)
	if err != nil {
		return common.BlockRange{}, errors.Wrapf(err, "failed to resolve block at timestamp %d on %s", timestamp, r.network)
	}

	blockRange, err := common.NewBlockRange(fromBlock, head)
	if err != nil {
		return common.BlockRange{}, errors.Wrapf(err, "explorer and RPC disagree on %s", r.network)
	}

	metrics.ResolvedFromBlock.WithLabelValues(r.network.String()).Set(float64(fromBlock))
	log.Info().
		Str("network", r.network.String()).
		Int64("timestamp", timestamp).
		Uint64("blockInThePast", fromBlock).
		Uint64("currentBlock", head).
		Msg("Resolved block range")
	return blockRange, nil
}
