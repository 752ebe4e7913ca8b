package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/handlers"
)

const shutdownTimeout = 10 * time.Second

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve strategy reports over HTTP",
		Long:  "Starts an HTTP API that computes strategy reports on demand and exposes Prometheus metrics.",
		Run: func(cmd *cobra.Command, args []string) {
			RunServe(cmd, args)
		},
	}
)

func RunServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strategies, err := configuredStrategies(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid strategy configuration")
	}

	// on-demand reports are returned to the caller, not published
	r, closeClients := newRunner(ctx, networksOf(strategies), nil)
	defer closeClients()

	handlers.Init(r, strategies)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	handlers.Handler(router, config.Cfg.API.BasicAuth)

	srv := &http.Server{
		Addr:    config.Cfg.API.Host,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("API server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}
}
