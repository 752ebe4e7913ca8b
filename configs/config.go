package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Prettify bool   `mapstructure:"prettify"`
}

type StatsConfig struct {
	Lookback                   time.Duration `mapstructure:"lookback"`
	PageSize                   int           `mapstructure:"pageSize"`
	MaxConsecutivePageFailures int           `mapstructure:"maxConsecutivePageFailures"`
	PageRetries                int           `mapstructure:"pageRetries"`
	PageRetryDelay             time.Duration `mapstructure:"pageRetryDelay"`
	RequestTimeout             time.Duration `mapstructure:"requestTimeout"`
}

type NetworkConfig struct {
	RPCURL         string `mapstructure:"rpcUrl"`
	ExplorerURL    string `mapstructure:"explorerUrl"`
	ExplorerAPIKey string `mapstructure:"explorerApiKey"`
	ChainID        string `mapstructure:"chainId"`
}

type StrategyConfig struct {
	Name     string `mapstructure:"name"`
	Network  string `mapstructure:"network"`
	GraphURL string `mapstructure:"graphUrl"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type KafkaConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Brokers  string `mapstructure:"brokers"`
	Topic    string `mapstructure:"topic"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
	Key      string `mapstructure:"key"`
}

type S3Config struct {
	Enabled         bool   `mapstructure:"enabled"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
}

type PublisherConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
	Redis RedisConfig `mapstructure:"redis"`
	S3    S3Config    `mapstructure:"s3"`
}

type BasicAuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type APIConfig struct {
	Host      string          `mapstructure:"host"`
	BasicAuth BasicAuthConfig `mapstructure:"basicAuth"`
}

type Config struct {
	Log        LogConfig                `mapstructure:"log"`
	Stats      StatsConfig              `mapstructure:"stats"`
	Networks   map[string]NetworkConfig `mapstructure:"networks"`
	Strategies []StrategyConfig         `mapstructure:"strategies"`
	Output     OutputConfig             `mapstructure:"output"`
	Publisher  PublisherConfig          `mapstructure:"publisher"`
	API        APIConfig                `mapstructure:"api"`
}

var Cfg Config

const (
	DEFAULT_LOOKBACK                      = 7 * 24 * time.Hour
	DEFAULT_PAGE_SIZE                     = 100
	DEFAULT_MAX_CONSECUTIVE_PAGE_FAILURES = 5
	DEFAULT_PAGE_RETRY_DELAY              = 500 * time.Millisecond
	DEFAULT_REQUEST_TIMEOUT               = 30 * time.Second
)

// legacy variable names used by the original deployment's .env files
var envBindings = map[string]string{
	"networks.ethereum.rpcUrl":         "ETHEREUM_MAINNET_RPC",
	"networks.ethereum.explorerApiKey": "ETHERSCAN_API_KEY",
	"networks.arbitrum.rpcUrl":         "ARBITRUM_MAINNET_RPC",
	"networks.arbitrum.explorerApiKey": "ARBISCAN_API_KEY",
}

func setDefaults() {
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("stats.lookback", DEFAULT_LOOKBACK)
	viper.SetDefault("stats.pageSize", DEFAULT_PAGE_SIZE)
	viper.SetDefault("stats.maxConsecutivePageFailures", DEFAULT_MAX_CONSECUTIVE_PAGE_FAILURES)
	viper.SetDefault("stats.pageRetries", 0)
	viper.SetDefault("stats.pageRetryDelay", DEFAULT_PAGE_RETRY_DELAY)
	viper.SetDefault("stats.requestTimeout", DEFAULT_REQUEST_TIMEOUT)
	viper.SetDefault("networks.ethereum.explorerUrl", "https://api.etherscan.io")
	viper.SetDefault("networks.ethereum.chainId", "1")
	viper.SetDefault("networks.arbitrum.explorerUrl", "https://api.arbiscan.io")
	viper.SetDefault("networks.arbitrum.chainId", "42161")
	viper.SetDefault("output.format", "text")
	viper.SetDefault("publisher.redis.key", "strategy_reports")
	viper.SetDefault("publisher.s3.prefix", "reports")
	viper.SetDefault("api.host", ":3000")
}

func LoadConfig(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file, %s", err)
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./configs")

		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file, %s", err)
		}

		// secrets are optional
		viper.SetConfigName("secrets")
		if err := viper.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error loading secrets file: %v", err)
			}
		}
	}

	// sets e.g. STATS_PAGESIZE to stats.pageSize
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("error binding env %s: %v", env, err)
		}
	}

	err := viper.Unmarshal(&Cfg)
	if err != nil {
		return fmt.Errorf("error unmarshalling config: %v", err)
	}

	for i := range Cfg.Strategies {
		Cfg.Strategies[i].GraphURL = os.ExpandEnv(Cfg.Strategies[i].GraphURL)
	}

	return Cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Stats.PageSize <= 0 {
		return fmt.Errorf("stats.pageSize must be positive, got %d", c.Stats.PageSize)
	}
	if c.Stats.Lookback <= 0 {
		return fmt.Errorf("stats.lookback must be positive, got %s", c.Stats.Lookback)
	}
	if c.Stats.MaxConsecutivePageFailures < 0 {
		return fmt.Errorf("stats.maxConsecutivePageFailures must not be negative, got %d", c.Stats.MaxConsecutivePageFailures)
	}
	if c.Stats.PageRetries < 0 {
		return fmt.Errorf("stats.pageRetries must not be negative, got %d", c.Stats.PageRetries)
	}

	seen := make(map[string]struct{}, len(c.Strategies))
	for i, s := range c.Strategies {
		if s.Name == "" {
			return fmt.Errorf("strategies[%d]: name is required", i)
		}
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("strategies[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = struct{}{}
		if _, ok := c.Networks[strings.ToLower(s.Network)]; !ok {
			return fmt.Errorf("strategy %s: unknown network %q", s.Name, s.Network)
		}
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	return nil
}
