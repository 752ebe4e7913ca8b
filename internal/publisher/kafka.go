package publisher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/common"
)

type kafkaProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type PublishableReport struct {
	Data   common.ReportModel `json:"data"`
	Status string             `json:"status"`
}

// KafkaSink produces one record per report, keyed by strategy name.
type KafkaSink struct {
	client kafkaProducer
	topic  string
}

func NewKafkaSink(ctx context.Context, cfg config.KafkaConfig) (*KafkaSink, error) {
	if cfg.Brokers == "" {
		return nil, errors.New("no Kafka brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("no Kafka topic configured")
	}

	brokers := strings.Split(cfg.Brokers, ",")
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID("strategy-stats"),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.DialTimeout(10 * time.Second),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: cfg.Username,
			Pass: cfg.Password,
		}.AsMechanism()))
		tlsDialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}}
		opts = append(opts, kgo.Dialer(tlsDialer.DialContext))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Kafka client")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to connect to Kafka")
	}
	log.Debug().Str("topic", cfg.Topic).Msg("Kafka report sink initialized")
	return newKafkaSink(client, cfg.Topic), nil
}

func newKafkaSink(client kafkaProducer, topic string) *KafkaSink {
	return &KafkaSink{client: client, topic: topic}
}

func (s *KafkaSink) Name() string {
	return "kafka"
}

func (s *KafkaSink) Publish(ctx context.Context, report *common.AggregateReport) error {
	status := "complete"
	if !report.Complete() {
		status = "partial"
	}
	value, err := json.Marshal(PublishableReport{Data: report.Serialize(), Status: status})
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(report.Name),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return errors.Wrapf(err, "failed to produce report for %s", report.Name)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	s.client.Close()
	return nil
}
