package api

import (
	"context"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/common"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ReportQueryParams are the optional overrides of an on-demand report.
type ReportQueryParams struct {
	Lookback time.Duration `schema:"lookback"`
	PageSize int           `schema:"page_size"`
}

type StrategyModel struct {
	Name    string `json:"name"`
	Network string `json:"network"`
}

type RangeResponse struct {
	Network   string `json:"network"`
	Lookback  string `json:"lookback"`
	FromBlock uint64 `json:"fromBlock"`
	ToBlock   uint64 `json:"toBlock"`
}

func writeError(c *gin.Context, message string, code int) {
	c.AbortWithStatusJSON(code, Error{
		Code:    code,
		Message: message,
	})
}

var (
	BadRequestErrorHandler = func(c *gin.Context, err error) {
		writeError(c, err.Error(), http.StatusBadRequest)
	}
	NotFoundErrorHandler = func(c *gin.Context, err error) {
		writeError(c, err.Error(), http.StatusNotFound)
	}
	InternalErrorHandler = func(c *gin.Context) {
		writeError(c, "An unexpected error occurred.", http.StatusInternalServerError)
	}
	UnauthorizedErrorHandler = func(c *gin.Context, err error) {
		writeError(c, err.Error(), http.StatusUnauthorized)
	}
)

// UpstreamErrorHandler maps a failed pipeline run to a status code.
// Failures of the chain, explorer or indexer are reported as gateway errors.
func UpstreamErrorHandler(c *gin.Context, err error) {
	writeError(c, err.Error(), StatusForError(err))
}

func StatusForError(err error) int {
	var netErr *common.NetworkError
	var malformedErr *common.MalformedResponseError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, common.ErrAuthentication),
		errors.Is(err, common.ErrTooManyPageFailures),
		errors.As(err, &netErr),
		errors.As(err, &malformedErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Duration(0), func(value string) reflect.Value {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(dur)
	})
	return d
}

func ParseReportQueryParams(r *http.Request) (ReportQueryParams, error) {
	var params ReportQueryParams
	if err := decoder.Decode(&params, r.URL.Query()); err != nil {
		log.Debug().Err(err).Msg("Error parsing query params")
		return ReportQueryParams{}, errors.Wrap(err, "invalid query params")
	}
	if params.Lookback < 0 {
		return ReportQueryParams{}, errors.Errorf("lookback must be positive, got %s", params.Lookback)
	}
	if params.Lookback > 0 && params.Lookback < time.Second {
		return ReportQueryParams{}, errors.Errorf("lookback must be at least 1s, got %s", params.Lookback)
	}
	if params.PageSize < 0 {
		return ReportQueryParams{}, errors.Errorf("page_size must be positive, got %d", params.PageSize)
	}
	return params, nil
}
