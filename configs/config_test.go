package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	Cfg = Config{}
	t.Cleanup(func() {
		viper.Reset()
		Cfg = Config{}
	})
}

func TestLoadConfig_DefaultsAndEnvExpansion(t *testing.T) {
	resetConfig(t)
	t.Setenv("GRAPH_URL_STRATEGY_1", "https://graph.example/strategy1")
	t.Setenv("ETHERSCAN_API_KEY", "etherscan-key")
	t.Setenv("ARBITRUM_MAINNET_RPC", "https://arb.example")

	path := writeConfig(t, `
strategies:
  - name: Strategy1
    network: arbitrum
    graphUrl: ${GRAPH_URL_STRATEGY_1}
`)

	require.NoError(t, LoadConfig(path))

	assert.Equal(t, DEFAULT_LOOKBACK, Cfg.Stats.Lookback)
	assert.Equal(t, DEFAULT_PAGE_SIZE, Cfg.Stats.PageSize)
	assert.Equal(t, DEFAULT_MAX_CONSECUTIVE_PAGE_FAILURES, Cfg.Stats.MaxConsecutivePageFailures)
	assert.Equal(t, 0, Cfg.Stats.PageRetries)
	assert.Equal(t, DEFAULT_REQUEST_TIMEOUT, Cfg.Stats.RequestTimeout)
	assert.Equal(t, "text", Cfg.Output.Format)

	require.Len(t, Cfg.Strategies, 1)
	assert.Equal(t, "https://graph.example/strategy1", Cfg.Strategies[0].GraphURL)

	assert.Equal(t, "etherscan-key", Cfg.Networks["ethereum"].ExplorerAPIKey)
	assert.Equal(t, "https://api.etherscan.io", Cfg.Networks["ethereum"].ExplorerURL)
	assert.Equal(t, "https://arb.example", Cfg.Networks["arbitrum"].RPCURL)
	assert.Equal(t, "42161", Cfg.Networks["arbitrum"].ChainID)
}

func TestLoadConfig_OverridesFromFile(t *testing.T) {
	resetConfig(t)
	path := writeConfig(t, `
stats:
  lookback: 1h
  pageSize: 25
  pageRetries: 2
  pageRetryDelay: 10ms
output:
  format: json
strategies:
  - name: A
    network: ethereum
    graphUrl: https://graph.example/a
`)

	require.NoError(t, LoadConfig(path))
	assert.Equal(t, time.Hour, Cfg.Stats.Lookback)
	assert.Equal(t, 25, Cfg.Stats.PageSize)
	assert.Equal(t, 2, Cfg.Stats.PageRetries)
	assert.Equal(t, 10*time.Millisecond, Cfg.Stats.PageRetryDelay)
	assert.Equal(t, "json", Cfg.Output.Format)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Stats: StatsConfig{Lookback: time.Hour, PageSize: 100},
			Networks: map[string]NetworkConfig{
				"ethereum": {},
			},
			Strategies: []StrategyConfig{
				{Name: "A", Network: "ethereum", GraphURL: "https://graph.example/a"},
			},
			Output: OutputConfig{Format: "text"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Stats.PageSize = 0
	assert.ErrorContains(t, cfg.Validate(), "pageSize")

	cfg = base()
	cfg.Strategies = append(cfg.Strategies, cfg.Strategies[0])
	assert.ErrorContains(t, cfg.Validate(), "duplicate")

	cfg = base()
	cfg.Strategies[0].Network = "polygon"
	assert.ErrorContains(t, cfg.Validate(), "unknown network")

	// an unset graph URL fails only that strategy at run time
	cfg = base()
	cfg.Strategies[0].GraphURL = ""
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Stats.MaxConsecutivePageFailures = -1
	assert.ErrorContains(t, cfg.Validate(), "maxConsecutivePageFailures")

	cfg = base()
	cfg.Stats.PageRetries = -1
	assert.ErrorContains(t, cfg.Validate(), "pageRetries")

	cfg = base()
	cfg.Output.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "output.format")
}

func TestLoadConfig_UnsetGraphURL(t *testing.T) {
	resetConfig(t)
	path := writeConfig(t, `
strategies:
  - name: Strategy1
    network: arbitrum
    graphUrl: ${GRAPH_URL_STRATEGY_UNSET}
  - name: Strategy2
    network: ethereum
    graphUrl: https://graph.example/2
`)

	require.NoError(t, LoadConfig(path))
	require.Len(t, Cfg.Strategies, 2)
	assert.Empty(t, Cfg.Strategies[0].GraphURL)
	assert.Equal(t, "https://graph.example/2", Cfg.Strategies[1].GraphURL)
}
