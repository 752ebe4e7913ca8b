package cmd

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/common"
	"github.com/dollet000/dollet-stats/internal/explorer"
	"github.com/dollet000/dollet-stats/internal/fetcher"
	"github.com/dollet000/dollet-stats/internal/graph"
	"github.com/dollet000/dollet-stats/internal/resolver"
	"github.com/dollet000/dollet-stats/internal/rpc"
	"github.com/dollet000/dollet-stats/internal/runner"
)

// configuredStrategies returns the configured strategies, optionally filtered by name.
func configuredStrategies(names []string) ([]common.Strategy, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var strategies []common.Strategy
	for _, s := range config.Cfg.Strategies {
		if len(wanted) > 0 && !wanted[s.Name] {
			continue
		}
		network, err := common.ParseNetwork(s.Network)
		if err != nil {
			return nil, errors.Wrapf(err, "strategy %s", s.Name)
		}
		strategies = append(strategies, common.Strategy{Name: s.Name, Network: network, GraphURL: s.GraphURL})
		delete(wanted, s.Name)
	}
	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for n := range wanted {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, errors.Errorf("strategies not configured: %s", strings.Join(missing, ", "))
	}
	return strategies, nil
}

func networksOf(strategies []common.Strategy) []common.Network {
	seen := make(map[common.Network]bool)
	var networks []common.Network
	for _, s := range strategies {
		if !seen[s.Network] {
			seen[s.Network] = true
			networks = append(networks, s.Network)
		}
	}
	return networks
}

// newResolver dials the network's RPC and pairs it with the network's block explorer.
func newResolver(ctx context.Context, network common.Network) (*resolver.Resolver, rpc.IRPCClient, error) {
	netCfg := config.Cfg.Networks[network.String()]

	var expectedChainID *big.Int
	if netCfg.ChainID != "" {
		id, ok := new(big.Int).SetString(netCfg.ChainID, 10)
		if !ok {
			return nil, nil, errors.Errorf("networks.%s.chainId %q is not a number", network, netCfg.ChainID)
		}
		expectedChainID = id
	}

	client, err := rpc.Initialize(ctx, rpc.Options{
		Network:         network,
		URL:             netCfg.RPCURL,
		ExpectedChainID: expectedChainID,
		RequestTimeout:  config.Cfg.Stats.RequestTimeout,
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to initialize RPC for %s", network)
	}

	exp := explorer.NewClient(network, netCfg.ExplorerURL, netCfg.ExplorerAPIKey, config.Cfg.Stats.RequestTimeout)
	return resolver.NewResolver(network, client, exp), client, nil
}

// graphSources returns a SourceFactory of indexer clients. A strategy without
// a graph URL fails on its own.
func graphSources(timeout time.Duration) runner.SourceFactory {
	return func(s common.Strategy) (fetcher.PageSource, error) {
		if s.GraphURL == "" {
			return nil, errors.Errorf("graphUrl of strategy %s is not set", s.Name)
		}
		return graph.NewClient(s.GraphURL, timeout), nil
	}
}

// newRunner builds a runner with resolvers for the given networks. A network
// whose RPC cannot be set up gets a resolver that fails its strategies. The
// returned func closes the RPC connections.
func newRunner(ctx context.Context, networks []common.Network, publisher runner.ReportPublisher) (*runner.Runner, func()) {
	resolvers := make(map[common.Network]runner.RangeResolver, len(networks))
	var clients []rpc.IRPCClient
	closeAll := func() {
		for _, c := range clients {
			c.Close()
		}
	}

	for _, network := range networks {
		r, client, err := newResolver(ctx, network)
		if err != nil {
			log.Error().Err(err).Str("network", network.String()).Msg("Resolver unavailable, strategies on this network will fail")
			resolvers[network] = runner.UnavailableResolver(err)
			continue
		}
		resolvers[network] = r
		clients = append(clients, client)
		log.Debug().Str("network", network.String()).Str("chainId", client.GetChainID().String()).Msg("Resolver ready")
	}

	opts := runner.Options{
		Lookback: config.Cfg.Stats.Lookback,
		Fetcher: fetcher.Config{
			PageSize:               config.Cfg.Stats.PageSize,
			MaxConsecutiveFailures: config.Cfg.Stats.MaxConsecutivePageFailures,
			Retries:                config.Cfg.Stats.PageRetries,
			RetryDelay:             config.Cfg.Stats.PageRetryDelay,
		},
	}
	return runner.New(resolvers, graphSources(config.Cfg.Stats.RequestTimeout), publisher, opts), closeAll
}
