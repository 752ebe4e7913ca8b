package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configs "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/env"
	customLogger "github.com/dollet000/dollet-stats/internal/log"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "dollet-stats",
		Short: "Transaction cost statistics for Dollet strategies",
		Long:  "Computes per-strategy transaction counts and exact transaction cost totals over a lookback window of blocks.",
		Run: func(cmd *cobra.Command, args []string) {
			RunStats(cmd, args)
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level to use for the application")
	rootCmd.PersistentFlags().Bool("log-prettify", false, "Whether to prettify the log output")
	rootCmd.PersistentFlags().Duration("lookback", 0, "How far back from now the block range starts, e.g. 168h")
	rootCmd.PersistentFlags().Int("page-size", 0, "How many users to request per page")
	rootCmd.PersistentFlags().Int("max-consecutive-page-failures", 0, "Abort a strategy after this many failed pages in a row")
	rootCmd.PersistentFlags().Int("page-retries", 0, "How many times to retry a failed page before skipping it")
	rootCmd.PersistentFlags().Duration("page-retry-delay", 0, "Initial delay between page retries")
	rootCmd.PersistentFlags().Duration("request-timeout", 0, "Timeout of a single RPC, explorer or indexer request")
	rootCmd.PersistentFlags().String("output-format", "", "Report output format: text or json")
	rootCmd.PersistentFlags().String("ethereum-rpc-url", "", "RPC Url of the Ethereum network")
	rootCmd.PersistentFlags().String("arbitrum-rpc-url", "", "RPC Url of the Arbitrum network")
	rootCmd.PersistentFlags().String("api-host", "", "Address the API server listens on")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.prettify", rootCmd.PersistentFlags().Lookup("log-prettify"))
	viper.BindPFlag("stats.lookback", rootCmd.PersistentFlags().Lookup("lookback"))
	viper.BindPFlag("stats.pageSize", rootCmd.PersistentFlags().Lookup("page-size"))
	viper.BindPFlag("stats.maxConsecutivePageFailures", rootCmd.PersistentFlags().Lookup("max-consecutive-page-failures"))
	viper.BindPFlag("stats.pageRetries", rootCmd.PersistentFlags().Lookup("page-retries"))
	viper.BindPFlag("stats.pageRetryDelay", rootCmd.PersistentFlags().Lookup("page-retry-delay"))
	viper.BindPFlag("stats.requestTimeout", rootCmd.PersistentFlags().Lookup("request-timeout"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output-format"))
	viper.BindPFlag("networks.ethereum.rpcUrl", rootCmd.PersistentFlags().Lookup("ethereum-rpc-url"))
	viper.BindPFlag("networks.arbitrum.rpcUrl", rootCmd.PersistentFlags().Lookup("arbitrum-rpc-url"))
	viper.BindPFlag("api.host", rootCmd.PersistentFlags().Lookup("api-host"))
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	env.Load()
	if err := configs.LoadConfig(cfgFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	customLogger.InitLogger()
}
