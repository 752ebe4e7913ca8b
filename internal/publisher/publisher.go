package publisher

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/common"
	"github.com/dollet000/dollet-stats/internal/metrics"
)

// Sink delivers finished reports somewhere outside the process.
type Sink interface {
	Name() string
	Publish(ctx context.Context, report *common.AggregateReport) error
	Close() error
}

// Publisher fans a report out to every configured sink. A failing sink is
// logged and counted; it does not stop delivery to the others.
type Publisher struct {
	mu    sync.RWMutex
	sinks []Sink
}

func New(sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks}
}

func (p *Publisher) Add(sink Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, sink)
}

// Publish returns the first sink error, after every sink has been tried.
func (p *Publisher) Publish(ctx context.Context, report *common.AggregateReport) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var firstErr error
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, report); err != nil {
			metrics.PublishFailures.WithLabelValues(sink.Name()).Inc()
			log.Error().Err(err).Str("sink", sink.Name()).Str("strategy", report.Name).Msg("Failed to publish report")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.ReportsPublished.WithLabelValues(sink.Name()).Inc()
	}
	return firstErr
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, sink := range p.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.sinks = nil
	return firstErr
}
