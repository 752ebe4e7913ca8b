package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/middleware"
)

func Handler(r *gin.Engine, auth config.BasicAuthConfig) {
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	root := r.Group("/strategies")
	{
		root.Use(middleware.Authorization(auth))
		root.GET("", GetStrategies)
		root.GET("/:name/report", GetStrategyReport)
		root.GET("/:name/range", GetStrategyRange)
	}
}
