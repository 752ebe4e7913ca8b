package publisher

import (
	"context"
	"crypto/tls"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/common"
)

type hashSetter interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// RedisSink keeps the latest report of every strategy in one hash, keyed by strategy name.
type RedisSink struct {
	client hashSetter
	key    string
}

func NewRedisSink(ctx context.Context, cfg config.RedisConfig) (*RedisSink, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}
	log.Debug().Str("key", cfg.Key).Msg("Redis report sink initialized")
	return newRedisSink(client, cfg.Key), nil
}

func newRedisSink(client hashSetter, key string) *RedisSink {
	if key == "" {
		key = "strategy_reports"
	}
	return &RedisSink{client: client, key: key}
}

func (s *RedisSink) Name() string {
	return "redis"
}

func (s *RedisSink) Publish(ctx context.Context, report *common.AggregateReport) error {
	value, err := report.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}
	if err := s.client.HSet(ctx, s.key, report.Name, value).Err(); err != nil {
		return errors.Wrapf(err, "failed to store report for %s", report.Name)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
