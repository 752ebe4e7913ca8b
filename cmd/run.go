package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/publisher"
)

var (
	strategyNames []string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Compute reports for the configured strategies",
		Long:  "Resolves the block range of each strategy's network, pages through its indexer and prints an exact transaction cost report. Exits with status 1 if any strategy failed.",
		Run: func(cmd *cobra.Command, args []string) {
			RunStats(cmd, args)
		},
	}
)

func init() {
	runCmd.Flags().StringSliceVar(&strategyNames, "strategy", nil, "Only run the named strategies (repeatable)")
}

func RunStats(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !runStats(ctx) {
		stop()
		os.Exit(1)
	}
}

func runStats(ctx context.Context) bool {
	strategies, err := configuredStrategies(strategyNames)
	if err != nil {
		log.Error().Err(err).Msg("Invalid strategy selection")
		return false
	}
	if len(strategies) == 0 {
		log.Warn().Msg("No strategies configured")
		return true
	}

	pub, err := publisher.FromConfig(ctx, config.Cfg, os.Stdout)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize publisher")
		return false
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing publisher")
		}
	}()

	r, closeClients := newRunner(ctx, networksOf(strategies), pub)
	defer closeClients()

	results := r.RunAll(ctx, strategies)
	for _, failed := range results.Failures() {
		log.Error().Err(failed.Err).Str("strategy", failed.Strategy.Name).Msg("Strategy failed")
	}
	return !results.HasFailures()
}
