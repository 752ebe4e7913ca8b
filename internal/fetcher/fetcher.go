package fetcher

import (
	"context"
	"iter"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/common"
	"github.com/dollet000/dollet-stats/internal/metrics"
)

const (
	DEFAULT_PAGE_SIZE        = 100
	DEFAULT_PAGE_RETRY_DELAY = 500 * time.Millisecond
)

// PageSource returns up to first users starting at skip, restricted to blockRange.
type PageSource interface {
	GetUsers(ctx context.Context, blockRange common.BlockRange, first, skip int) ([]common.UserRecord, error)
}

type Config struct {
	PageSize int
	// 0 disables the cap
	MaxConsecutiveFailures int
	// 0 keeps the skip-on-first-failure behaviour
	Retries    int
	RetryDelay time.Duration
}

type Fetcher struct {
	name   string
	source PageSource
	cfg    Config
}

func NewFetcher(name string, source PageSource, cfg Config) *Fetcher {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DEFAULT_PAGE_SIZE
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DEFAULT_PAGE_RETRY_DELAY
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Fetcher{name: name, source: source, cfg: cfg}
}

func (f *Fetcher) PageSize() int {
	return f.cfg.PageSize
}

// Pages lazily walks the source from offset 0 in steps of the page size.
//
// A page that fails yields a *common.PageError and the offset still advances,
// so its users are skipped for this run. Iteration ends after the first
// successful page shorter than the page size. Any other error yielded is
// fatal and is the last element of the sequence.
func (f *Fetcher) Pages(ctx context.Context, blockRange common.BlockRange) iter.Seq2[common.Page, error] {
	return func(yield func(common.Page, error) bool) {
		consecutiveFailures := 0
		for offset := 0; ; offset += f.cfg.PageSize {
			if err := ctx.Err(); err != nil {
				yield(common.Page{Offset: offset}, errors.Wrapf(err, "pagination of %s stopped at offset %d", f.name, offset))
				return
			}

			users, err := f.fetchPage(ctx, blockRange, offset)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					yield(common.Page{Offset: offset}, errors.Wrapf(ctxErr, "pagination of %s stopped at offset %d", f.name, offset))
					return
				}
				consecutiveFailures++
				metrics.PageFailures.WithLabelValues(f.name).Inc()
				log.Error().Err(err).
					Str("strategy", f.name).
					Int("offset", offset).
					Int("page", offset/f.cfg.PageSize).
					Msg("Error fetching page, skipping")

				if !yield(common.Page{Offset: offset}, &common.PageError{Offset: offset, Err: err}) {
					return
				}
				if f.cfg.MaxConsecutiveFailures > 0 && consecutiveFailures >= f.cfg.MaxConsecutiveFailures {
					yield(common.Page{Offset: offset}, errors.Wrapf(common.ErrTooManyPageFailures,
						"%s: %d pages failed in a row, last at offset %d", f.name, consecutiveFailures, offset))
					return
				}
				continue
			}

			consecutiveFailures = 0
			metrics.PagesFetched.WithLabelValues(f.name).Inc()
			if !yield(common.Page{Offset: offset, Users: users}, nil) {
				return
			}
			if len(users) < f.cfg.PageSize {
				return
			}
		}
	}
}

func (f *Fetcher) fetchPage(ctx context.Context, blockRange common.BlockRange, offset int) ([]common.UserRecord, error) {
	var users []common.UserRecord
	operation := func() error {
		var err error
		users, err = f.source.GetUsers(ctx, blockRange, f.cfg.PageSize, offset)
		return err
	}
	if f.cfg.Retries == 0 {
		return users, operation()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.cfg.RetryDelay
	policy.MaxElapsedTime = 0
	policy.Reset()

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(f.cfg.Retries)), ctx),
		func(err error, wait time.Duration) {
			metrics.PageRetries.WithLabelValues(f.name).Inc()
			log.Warn().Err(err).
				Str("strategy", f.name).
				Int("offset", offset).
				Dur("wait", wait).
				Msg("Retrying page")
		})
	return users, err
}
