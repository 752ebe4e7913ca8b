package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/api"
	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/common"
	"github.com/dollet000/dollet-stats/internal/runner"
)

// GetStrategies lists the configured strategies. Indexer URLs are not exposed.
func GetStrategies(c *gin.Context) {
	models := make([]api.StrategyModel, 0, len(strategies))
	for _, s := range strategies {
		models = append(models, api.StrategyModel{Name: s.Name, Network: s.Network.String()})
	}
	sendJSONResponse(c, models)
}

// GetStrategyReport runs one strategy and returns its report.
// Query params lookback and page_size override the configured values.
func GetStrategyReport(c *gin.Context) {
	strategy, params, ok := parseStrategyRequest(c)
	if !ok {
		return
	}

	report, err := statsRunner.Run(c.Request.Context(), strategy, runOptions(params)...)
	if err != nil {
		log.Error().Err(err).Str("strategy", strategy.Name).Msg("Error running strategy")
		api.UpstreamErrorHandler(c, err)
		return
	}
	sendJSONResponse(c, report.Serialize())
}

// GetStrategyRange resolves the block range a report would cover.
func GetStrategyRange(c *gin.Context) {
	strategy, params, ok := parseStrategyRequest(c)
	if !ok {
		return
	}

	blockRange, err := statsRunner.ResolveRange(c.Request.Context(), strategy.Network, runOptions(params)...)
	if err != nil {
		log.Error().Err(err).Str("strategy", strategy.Name).Msg("Error resolving block range")
		api.UpstreamErrorHandler(c, err)
		return
	}

	lookback := params.Lookback
	if lookback == 0 {
		lookback = config.Cfg.Stats.Lookback
	}
	sendJSONResponse(c, api.RangeResponse{
		Network:   strategy.Network.String(),
		Lookback:  lookback.String(),
		FromBlock: blockRange.FromBlock,
		ToBlock:   blockRange.ToBlock,
	})
}

func parseStrategyRequest(c *gin.Context) (common.Strategy, api.ReportQueryParams, bool) {
	name := c.Param("name")
	strategy, found := findStrategy(name)
	if !found {
		api.NotFoundErrorHandler(c, errors.Errorf("unknown strategy %q", name))
		return common.Strategy{}, api.ReportQueryParams{}, false
	}

	params, err := api.ParseReportQueryParams(c.Request)
	if err != nil {
		api.BadRequestErrorHandler(c, err)
		return common.Strategy{}, api.ReportQueryParams{}, false
	}
	return strategy, params, true
}

func runOptions(params api.ReportQueryParams) []runner.RunOption {
	return []runner.RunOption{
		runner.WithLookback(params.Lookback),
		runner.WithPageSize(params.PageSize),
	}
}

func sendJSONResponse(c *gin.Context, response interface{}) {
	c.JSON(http.StatusOK, response)
}
