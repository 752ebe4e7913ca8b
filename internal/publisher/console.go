package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/common"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ConsoleSink writes reports to a writer, as text lines or one JSON document per report.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	format string
}

func NewConsoleSink(out io.Writer, format string) *ConsoleSink {
	if format != FormatJSON {
		format = FormatText
	}
	return &ConsoleSink{out: out, format: format}
}

func (s *ConsoleSink) Name() string {
	return "console"
}

func (s *ConsoleSink) Publish(_ context.Context, report *common.AggregateReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.AmountTransactions == 0 {
		log.Info().Str("strategy", report.Name).Msg("No results found")
	}
	if !report.Complete() {
		log.Warn().
			Str("strategy", report.Name).
			Ints("skippedOffsets", report.SkippedOffsets).
			Msg("Report is an under-count, some pages were skipped")
	}

	if s.format == FormatJSON {
		enc := json.NewEncoder(s.out)
		return errors.Wrap(enc.Encode(report), "failed to write report")
	}
	return s.writeText(report)
}

func (s *ConsoleSink) writeText(report *common.AggregateReport) error {
	model := report.Serialize()
	perUser, err := json.MarshalIndent(model.TxPerUser, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode per user detail")
	}

	_, err = fmt.Fprintf(s.out,
		"name: %s\nnetwork: %s\nblocks: %d-%d\nAmountTransactions: %d\nAverageTxCost: %s\nAmountUsers: %d\nSumTxCost: %s\n",
		model.Name, model.Network, model.FromBlock, model.ToBlock,
		model.AmountTransactions, model.AverageTxCost, model.AmountUsers, model.SumTxCost)
	if err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	if len(model.SkippedOffsets) > 0 {
		if _, err := fmt.Fprintf(s.out, "SkippedOffsets: %v\n", model.SkippedOffsets); err != nil {
			return errors.Wrap(err, "failed to write report")
		}
	}
	_, err = fmt.Fprintf(s.out, "Transactions per user %s\n", perUser)
	return errors.Wrap(err, "failed to write report")
}

func (s *ConsoleSink) Close() error {
	return nil
}
