package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/common"
)

var (
	resolveCmd = &cobra.Command{
		Use:   "resolve [network...]",
		Short: "Print the block range of the lookback window",
		Long:  "Resolves the block range covered by the lookback window for each network without querying any indexer. Defaults to the networks of the configured strategies.",
		Run: func(cmd *cobra.Command, args []string) {
			RunResolve(cmd, args)
		},
	}
)

func RunResolve(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	networks, err := resolveNetworks(args)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid network")
	}

	failed := false
	for _, network := range networks {
		r, client, err := newResolver(ctx, network)
		if err != nil {
			log.Error().Err(err).Str("network", network.String()).Msg("Failed to initialize resolver")
			failed = true
			continue
		}
		blockRange, err := r.ResolveRange(ctx, config.Cfg.Stats.Lookback)
		client.Close()
		if err != nil {
			log.Error().Err(err).Str("network", network.String()).Msg("Failed to resolve block range")
			failed = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tlookback %s\tblocks %s\n", network, config.Cfg.Stats.Lookback, blockRange)
	}
	if failed {
		stop()
		os.Exit(1)
	}
}

func resolveNetworks(args []string) ([]common.Network, error) {
	if len(args) == 0 {
		strategies, err := configuredStrategies(nil)
		if err != nil {
			return nil, err
		}
		return networksOf(strategies), nil
	}
	networks := make([]common.Network, 0, len(args))
	for _, arg := range args {
		network, err := common.ParseNetwork(arg)
		if err != nil {
			return nil, err
		}
		networks = append(networks, network)
	}
	return networks, nil
}
