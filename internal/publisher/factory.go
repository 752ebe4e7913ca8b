package publisher

import (
	"context"
	"io"

	"github.com/pkg/errors"

	config "github.com/dollet000/dollet-stats/configs"
)

// FromConfig builds a publisher with the console sink plus every enabled external sink.
func FromConfig(ctx context.Context, cfg config.Config, out io.Writer) (*Publisher, error) {
	p := New(NewConsoleSink(out, cfg.Output.Format))

	if cfg.Publisher.Kafka.Enabled {
		sink, err := NewKafkaSink(ctx, cfg.Publisher.Kafka)
		if err != nil {
			p.Close()
			return nil, errors.Wrap(err, "kafka sink")
		}
		p.Add(sink)
	}
	if cfg.Publisher.Redis.Enabled {
		sink, err := NewRedisSink(ctx, cfg.Publisher.Redis)
		if err != nil {
			p.Close()
			return nil, errors.Wrap(err, "redis sink")
		}
		p.Add(sink)
	}
	if cfg.Publisher.S3.Enabled {
		sink, err := NewS3Sink(ctx, cfg.Publisher.S3)
		if err != nil {
			p.Close()
			return nil, errors.Wrap(err, "s3 sink")
		}
		p.Add(sink)
	}
	return p, nil
}
